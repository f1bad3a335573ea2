package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"go.uber.org/zap"
)

type CourseInput struct {
	Title       string
	Description string
	Price       *float64
	IsPublished bool
	Thumbnail   string
}

// NodeInput 章节与课时共用
type NodeInput struct {
	Title       string
	Description string
	Order       int
}

type ContentInput struct {
	Title       string
	ContentType model.ContentType
	TextContent string
	VideoURL    string
	Order       int
	File        *multipart.FileHeader
}

// CourseDetail 课程树及当前学生的学习状态
type CourseDetail struct {
	Course              *model.Course `json:"course"`
	Enrolled            bool          `json:"enrolled"`
	CompletedContentIDs []uint        `json:"completedContentIds,omitempty"`
	ProgressPercentage  float64       `json:"progressPercentage"`
}

type ContentDetail struct {
	Course    *model.Course  `json:"course"`
	Module    *model.Module  `json:"module"`
	Lesson    *model.Lesson  `json:"lesson"`
	Content   *model.Content `json:"content"`
	Completed bool           `json:"completed"`
}

type CourseService struct {
	CourseRepo     *repository.CourseRepository
	ModuleRepo     *repository.ModuleRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	Storage        *StorageService
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	moduleRepo *repository.ModuleRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	storage *StorageService,
) *CourseService {
	return &CourseService{
		CourseRepo:     courseRepo,
		ModuleRepo:     moduleRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		Storage:        storage,
	}
}

func canEditCourse(u *model.User, course *model.Course) bool {
	return IsAdmin(u) || OwnsCourse(u, course)
}

// editableCourse 按 slug 加载课程并校验编辑权限
func (s *CourseService) editableCourse(actor *model.User, slug string) (*model.Course, error) {
	course, err := s.CourseRepo.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !canEditCourse(actor, course) {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

func (s *CourseService) editableModule(actor *model.User, slug string, moduleID uint) (*model.Course, *model.Module, error) {
	course, err := s.editableCourse(actor, slug)
	if err != nil {
		return nil, nil, err
	}
	module, err := s.ModuleRepo.FindModule(course.ID, moduleID)
	if err != nil {
		return nil, nil, err
	}
	return course, module, nil
}

func (s *CourseService) editableLesson(actor *model.User, slug string, moduleID, lessonID uint) (*model.Lesson, error) {
	_, module, err := s.editableModule(actor, slug, moduleID)
	if err != nil {
		return nil, err
	}
	return s.ModuleRepo.FindLesson(module.ID, lessonID)
}

func (s *CourseService) ListOwnCourses(actor *model.User) ([]model.Course, error) {
	return s.CourseRepo.ListByInstructor(actor.ID)
}

func (s *CourseService) CreateCourse(actor *model.User, in CourseInput) (*model.Course, error) {
	if !IsInstructor(actor) {
		return nil, util.ErrPermissionDenied
	}
	base := Slugify(in.Title)
	if base == "" {
		base = defaultSlug
	}
	taken, err := s.CourseRepo.SlugsWithPrefix(base)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		InstructorID: actor.ID,
		Price:        in.Price,
		IsPublished:  in.IsPublished,
		Thumbnail:    in.Thumbnail,
		Slug:         UniqueSlug(base, taken),
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	logger.Log.Info("Course created", zap.Uint("courseId", course.ID), zap.String("slug", course.Slug))
	return course, nil
}

// UpdateCourse slug 创建后保持不变
func (s *CourseService) UpdateCourse(actor *model.User, slug string, in CourseInput) (*model.Course, error) {
	course, err := s.editableCourse(actor, slug)
	if err != nil {
		return nil, err
	}
	course.Title = strings.TrimSpace(in.Title)
	course.Description = in.Description
	course.Price = in.Price
	course.IsPublished = in.IsPublished
	course.Thumbnail = in.Thumbnail
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) DeleteCourse(actor *model.User, slug string) (*model.Course, error) {
	course, err := s.editableCourse(actor, slug)
	if err != nil {
		return nil, err
	}
	if err := s.CourseRepo.Delete(course.ID); err != nil {
		return nil, err
	}
	logger.Log.Info("Course deleted", zap.Uint("courseId", course.ID), zap.Uint("by", actor.ID))
	return course, nil
}

func contentIDs(course *model.Course) []uint {
	var ids []uint
	for _, m := range course.Modules {
		for _, l := range m.Lessons {
			for _, c := range l.Contents {
				ids = append(ids, c.ID)
			}
		}
	}
	return ids
}

// CourseDetail 学生额外返回选课状态与已完成内容
func (s *CourseService) CourseDetail(actor *model.User, slug string) (*CourseDetail, error) {
	course, err := s.CourseRepo.FindTreeBySlug(slug)
	if err != nil {
		return nil, err
	}
	if !CanViewCourse(actor, course) {
		return nil, util.ErrPermissionDenied
	}

	detail := &CourseDetail{Course: course}
	if !IsStudent(actor) {
		return detail, nil
	}
	detail.Enrolled, err = s.EnrollmentRepo.Exists(actor.ID, course.ID)
	if err != nil || !detail.Enrolled {
		return detail, err
	}

	ids := contentIDs(course)
	done, err := s.ProgressRepo.CompletedContentIDs(actor.ID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if done[id] {
			detail.CompletedContentIDs = append(detail.CompletedContentIDs, id)
		}
	}
	detail.ProgressPercentage = progressPercentage(int64(len(detail.CompletedContentIDs)), int64(len(ids)))
	return detail, nil
}

func (s *CourseService) ContentDetail(actor *model.User, slug string, moduleID, lessonID, contentID uint) (*ContentDetail, error) {
	course, err := s.CourseRepo.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	module, err := s.ModuleRepo.FindModule(course.ID, moduleID)
	if err != nil {
		return nil, err
	}
	lesson, err := s.ModuleRepo.FindLesson(module.ID, lessonID)
	if err != nil {
		return nil, err
	}
	content, err := s.ModuleRepo.FindContent(lesson.ID, contentID)
	if err != nil {
		return nil, err
	}

	enrolled := false
	if IsStudent(actor) {
		if enrolled, err = s.EnrollmentRepo.Exists(actor.ID, course.ID); err != nil {
			return nil, err
		}
	}
	if !CanAccessContent(actor, course, enrolled) {
		return nil, util.ErrPermissionDenied
	}

	detail := &ContentDetail{Course: course, Module: module, Lesson: lesson, Content: content}
	if enrolled {
		p, err := s.ProgressRepo.Find(actor.ID, content.ID)
		if err != nil {
			return nil, err
		}
		detail.Completed = p != nil && p.Completed
	}
	return detail, nil
}

func (s *CourseService) CreateModule(actor *model.User, slug string, in NodeInput) (*model.Module, error) {
	course, err := s.editableCourse(actor, slug)
	if err != nil {
		return nil, err
	}
	module := &model.Module{
		CourseID:    course.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Order:       in.Order,
	}
	if err := s.ModuleRepo.CreateModule(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *CourseService) UpdateModule(actor *model.User, slug string, moduleID uint, in NodeInput) (*model.Module, error) {
	_, module, err := s.editableModule(actor, slug, moduleID)
	if err != nil {
		return nil, err
	}
	module.Title = strings.TrimSpace(in.Title)
	module.Description = in.Description
	module.Order = in.Order
	if err := s.ModuleRepo.UpdateModule(module); err != nil {
		return nil, err
	}
	return module, nil
}

func (s *CourseService) DeleteModule(actor *model.User, slug string, moduleID uint) (*model.Module, error) {
	_, module, err := s.editableModule(actor, slug, moduleID)
	if err != nil {
		return nil, err
	}
	return module, s.ModuleRepo.DeleteModule(module.ID)
}

func (s *CourseService) CreateLesson(actor *model.User, slug string, moduleID uint, in NodeInput) (*model.Lesson, error) {
	_, module, err := s.editableModule(actor, slug, moduleID)
	if err != nil {
		return nil, err
	}
	lesson := &model.Lesson{
		ModuleID:    module.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Order:       in.Order,
	}
	if err := s.ModuleRepo.CreateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) UpdateLesson(actor *model.User, slug string, moduleID, lessonID uint, in NodeInput) (*model.Lesson, error) {
	lesson, err := s.editableLesson(actor, slug, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	lesson.Title = strings.TrimSpace(in.Title)
	lesson.Description = in.Description
	lesson.Order = in.Order
	if err := s.ModuleRepo.UpdateLesson(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *CourseService) DeleteLesson(actor *model.User, slug string, moduleID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.editableLesson(actor, slug, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	return lesson, s.ModuleRepo.DeleteLesson(lesson.ID)
}

// cleanContent 按内容类型校验必填项并清空无关字段
func cleanContent(c *model.Content, hasNewFile bool) error {
	if !c.ContentType.Valid() {
		return fmt.Errorf("%w: unknown content type %q", util.ErrInvalidContent, c.ContentType)
	}
	hasFile := hasNewFile || c.FileURL != ""

	switch c.ContentType {
	case model.ContentVideo:
		if c.VideoURL == "" && !hasFile {
			return fmt.Errorf("%w: for video content, either a video URL or a file upload is required", util.ErrInvalidContent)
		}
		c.TextContent = ""
	case model.ContentPDF, model.ContentSlide:
		if !hasFile {
			return fmt.Errorf("%w: for %s content, a file upload is required", util.ErrInvalidContent, c.ContentType)
		}
		c.TextContent = ""
		c.VideoURL = ""
	case model.ContentText:
		if strings.TrimSpace(c.TextContent) == "" {
			return fmt.Errorf("%w: for text content, the text field cannot be empty", util.ErrInvalidContent)
		}
		c.FileURL = ""
		c.VideoURL = ""
		c.DurationSeconds = 0
	case model.ContentQuiz, model.ContentAssignment:
		c.FileURL = ""
		c.TextContent = ""
		c.VideoURL = ""
		c.DurationSeconds = 0
	}
	return nil
}

// saveContent 写库失败时删除本次上传的对象，写库成功后清理被替换或被清空的旧文件
func (s *CourseService) saveContent(ctx context.Context, c *model.Content, in ContentInput, write func(*model.Content) error) error {
	previousFile := c.FileURL
	c.Title = strings.TrimSpace(in.Title)
	c.ContentType = in.ContentType
	c.TextContent = in.TextContent
	c.VideoURL = strings.TrimSpace(in.VideoURL)
	c.Order = in.Order

	keepsFile := c.ContentType == model.ContentVideo || c.ContentType == model.ContentPDF || c.ContentType == model.ContentSlide
	if err := cleanContent(c, in.File != nil && keepsFile); err != nil {
		return err
	}

	var stored *StoredFile
	if in.File != nil && keepsFile {
		if s.Storage == nil {
			return fmt.Errorf("%w: file storage is not configured", util.ErrInvalidContent)
		}
		var err error
		stored, err = s.Storage.StoreContentFile(ctx, in.File)
		if err != nil {
			return err
		}
		c.FileURL = stored.URL
		c.DurationSeconds = stored.DurationSeconds
	}

	if err := write(c); err != nil {
		if stored != nil {
			s.Storage.Remove(ctx, stored.ObjectName)
		}
		return err
	}
	if previousFile != "" && previousFile != c.FileURL {
		s.removeFile(ctx, previousFile)
	}
	return nil
}

func (s *CourseService) removeFile(ctx context.Context, fileURL string) {
	if s.Storage == nil {
		return
	}
	s.Storage.Remove(ctx, ObjectNameFromURL(fileURL))
}

func (s *CourseService) CreateContent(ctx context.Context, actor *model.User, slug string, moduleID, lessonID uint, in ContentInput) (*model.Content, error) {
	lesson, err := s.editableLesson(actor, slug, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	content := &model.Content{LessonID: lesson.ID}
	if err := s.saveContent(ctx, content, in, s.ModuleRepo.CreateContent); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *CourseService) UpdateContent(ctx context.Context, actor *model.User, slug string, moduleID, lessonID, contentID uint, in ContentInput) (*model.Content, error) {
	lesson, err := s.editableLesson(actor, slug, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	content, err := s.ModuleRepo.FindContent(lesson.ID, contentID)
	if err != nil {
		return nil, err
	}
	if err := s.saveContent(ctx, content, in, s.ModuleRepo.UpdateContent); err != nil {
		return nil, err
	}
	return content, nil
}

func (s *CourseService) DeleteContent(ctx context.Context, actor *model.User, slug string, moduleID, lessonID, contentID uint) (*model.Content, error) {
	lesson, err := s.editableLesson(actor, slug, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	content, err := s.ModuleRepo.FindContent(lesson.ID, contentID)
	if err != nil {
		return nil, err
	}
	if err := s.ModuleRepo.DeleteContent(content.ID); err != nil {
		return nil, err
	}
	s.removeFile(ctx, content.FileURL)
	return content, nil
}
