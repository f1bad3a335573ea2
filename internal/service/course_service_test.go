package service

import (
	"bytes"
	"context"
	"io/fs"
	"mime/multipart"
	"path/filepath"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/testutil"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseSlugs(t *testing.T) {
	s := newServices(t)
	prof := testutil.CreateInstructor(t, s.db, "prof")

	first, err := s.courses.CreateCourse(prof, CourseInput{Title: "Intro to Go"})
	require.NoError(t, err)
	second, err := s.courses.CreateCourse(prof, CourseInput{Title: "Intro to Go"})
	require.NoError(t, err)
	third, err := s.courses.CreateCourse(prof, CourseInput{Title: "intro to go!"})
	require.NoError(t, err)
	blank, err := s.courses.CreateCourse(prof, CourseInput{Title: "???"})
	require.NoError(t, err)

	assert.Equal(t, "intro-to-go", first.Slug)
	assert.Equal(t, "intro-to-go-1", second.Slug)
	assert.Equal(t, "intro-to-go-2", third.Slug)
	assert.Equal(t, "course", blank.Slug)

	updated, err := s.courses.UpdateCourse(prof, first.Slug, CourseInput{Title: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "intro-to-go", updated.Slug)

	student := testutil.CreateStudent(t, s.db, "student")
	_, err = s.courses.CreateCourse(student, CourseInput{Title: "Nope"})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestCourseEditingRequiresOwnership(t *testing.T) {
	s := newServices(t)
	owner := testutil.CreateInstructor(t, s.db, "owner")
	other := testutil.CreateInstructor(t, s.db, "other")
	course := testutil.CreateCourse(t, s.db, owner, "mine", false)

	_, err := s.courses.CreateModule(other, course.Slug, NodeInput{Title: "M", Order: 1})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	m, err := s.courses.CreateModule(owner, course.Slug, NodeInput{Title: "M", Order: 1})
	require.NoError(t, err)
	_, err = s.courses.CreateModule(owner, course.Slug, NodeInput{Title: "M2", Order: 1})
	assert.ErrorIs(t, err, util.ErrDuplicateOrder)

	_, err = s.courses.DeleteModule(other, course.Slug, m.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
}

func TestContentTypeRules(t *testing.T) {
	s := newServices(t)
	owner := testutil.CreateInstructor(t, s.db, "owner")
	course := testutil.CreateCourse(t, s.db, owner, "c", false)
	module := testutil.CreateModule(t, s.db, course, 1)
	lesson := testutil.CreateLesson(t, s.db, module, 1)
	ctx := context.Background()
	create := func(in ContentInput) (*model.Content, error) {
		return s.courses.CreateContent(ctx, owner, course.Slug, module.ID, lesson.ID, in)
	}

	_, err := create(ContentInput{Title: "v", ContentType: model.ContentVideo, Order: 1})
	assert.ErrorIs(t, err, util.ErrInvalidContent)

	_, err = create(ContentInput{Title: "p", ContentType: model.ContentPDF, Order: 1})
	assert.ErrorIs(t, err, util.ErrInvalidContent)

	_, err = create(ContentInput{Title: "t", ContentType: model.ContentText, TextContent: "   ", Order: 1})
	assert.ErrorIs(t, err, util.ErrInvalidContent)

	_, err = create(ContentInput{Title: "x", ContentType: "podcast", Order: 1})
	assert.ErrorIs(t, err, util.ErrInvalidContent)

	video, err := create(ContentInput{
		Title: "v", ContentType: model.ContentVideo, Order: 1,
		VideoURL: "https://example.com/v", TextContent: "dropped",
	})
	require.NoError(t, err)
	assert.Empty(t, video.TextContent)

	text, err := create(ContentInput{
		Title: "t", ContentType: model.ContentText, Order: 2,
		TextContent: "notes", VideoURL: "https://example.com/ignored",
	})
	require.NoError(t, err)
	assert.Empty(t, text.VideoURL)

	quiz, err := create(ContentInput{
		Title: "q", ContentType: model.ContentQuiz, Order: 3,
		TextContent: "x", VideoURL: "https://example.com/x",
	})
	require.NoError(t, err)
	assert.Empty(t, quiz.TextContent)
	assert.Empty(t, quiz.VideoURL)
	assert.Empty(t, quiz.FileURL)
}

func TestCourseDetailVisibility(t *testing.T) {
	s := newServices(t)
	owner := testutil.CreateInstructor(t, s.db, "owner")
	other := testutil.CreateInstructor(t, s.db, "other")
	student := testutil.CreateStudent(t, s.db, "student")
	draft := testutil.CreateCourse(t, s.db, owner, "draft", false)
	live := testutil.CreateCourse(t, s.db, owner, "live", true)
	module := testutil.CreateModule(t, s.db, live, 2)
	testutil.CreateModule(t, s.db, live, 1)
	lesson := testutil.CreateLesson(t, s.db, module, 1)
	content := testutil.CreateContent(t, s.db, lesson, 1)

	_, err := s.courses.CourseDetail(student, draft.Slug)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = s.courses.CourseDetail(other, draft.Slug)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)
	_, err = s.courses.CourseDetail(owner, draft.Slug)
	assert.NoError(t, err)

	detail, err := s.courses.CourseDetail(student, live.Slug)
	require.NoError(t, err)
	assert.False(t, detail.Enrolled)
	require.Len(t, detail.Course.Modules, 2)
	assert.Equal(t, 1, detail.Course.Modules[0].Order)

	_, err = s.courses.ContentDetail(student, live.Slug, module.ID, lesson.ID, content.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	testutil.Enroll(t, s.db, student, live)
	_, err = s.enrollment.MarkContent(student, content.ID, ptr(true))
	require.NoError(t, err)

	cd, err := s.courses.ContentDetail(student, live.Slug, module.ID, lesson.ID, content.ID)
	require.NoError(t, err)
	assert.True(t, cd.Completed)

	detail, err = s.courses.CourseDetail(student, live.Slug)
	require.NoError(t, err)
	assert.True(t, detail.Enrolled)
	assert.Equal(t, []uint{content.ID}, detail.CompletedContentIDs)
	assert.Equal(t, 100.0, detail.ProgressPercentage)
}

func pdfUpload(t *testing.T, name string) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4\n" + name))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestContentFilesFollowContentLifecycle(t *testing.T) {
	s := newServices(t)
	root := t.TempDir()
	storage := &StorageService{Provider: &LocalStorageProvider{Root: root}}
	courses := NewCourseService(
		repository.NewCourseRepository(s.db),
		repository.NewModuleRepository(s.db),
		repository.NewEnrollmentRepository(s.db),
		repository.NewProgressRepository(s.db),
		storage,
	)

	owner := testutil.CreateInstructor(t, s.db, "owner")
	course := testutil.CreateCourse(t, s.db, owner, "c", false)
	module := testutil.CreateModule(t, s.db, course, 1)
	lesson := testutil.CreateLesson(t, s.db, module, 1)
	testutil.CreateContent(t, s.db, lesson, 1)
	ctx := context.Background()

	_, err := courses.CreateContent(ctx, owner, course.Slug, module.ID, lesson.ID, ContentInput{
		Title: "slides", ContentType: model.ContentPDF, Order: 1, File: pdfUpload(t, "a.pdf"),
	})
	assert.ErrorIs(t, err, util.ErrDuplicateOrder)
	assert.Equal(t, 0, countFiles(t, root))

	pdf, err := courses.CreateContent(ctx, owner, course.Slug, module.ID, lesson.ID, ContentInput{
		Title: "slides", ContentType: model.ContentPDF, Order: 2, File: pdfUpload(t, "b.pdf"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countFiles(t, root))
	first := pdf.FileURL
	assert.Contains(t, first, "/uploads/lms_content/")

	pdf, err = courses.UpdateContent(ctx, owner, course.Slug, module.ID, lesson.ID, pdf.ID, ContentInput{
		Title: "slides v2", ContentType: model.ContentPDF, Order: 2, File: pdfUpload(t, "c.pdf"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first, pdf.FileURL)
	assert.Equal(t, 1, countFiles(t, root))
	assert.NoFileExists(t, filepath.Join(root, filepath.FromSlash(ObjectNameFromURL(first))))

	_, err = courses.DeleteContent(ctx, owner, course.Slug, module.ID, lesson.ID, pdf.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, countFiles(t, root))
}

func TestObjectNameFromURL(t *testing.T) {
	assert.Equal(t, "lms_content/2026/10/x.pdf", ObjectNameFromURL("/uploads/lms_content/2026/10/x.pdf"))
	assert.Equal(t, "lms_content/2026/10/x.pdf", ObjectNameFromURL("https://b.oss-cn-hangzhou.aliyuncs.com/lms_content/2026/10/x.pdf"))
	assert.Empty(t, ObjectNameFromURL("https://example.com/video.mp4"))
}
