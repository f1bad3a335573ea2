package repository

import (
	"lms_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Omit("Modules", "Instructor").Save(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.First(&course, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

func (r *CourseRepository) FindBySlug(slug string) (*model.Course, error) {
	var course model.Course
	if err := r.DB.Where("slug = ?", slug).First(&course).Error; err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

// FindTreeBySlug 加载完整课程树，各层按 order 升序
func (r *CourseRepository) FindTreeBySlug(slug string) (*model.Course, error) {
	var course model.Course
	err := r.DB.
		Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Preload("Modules.Lessons.Contents", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order asc")
		}).
		Where("slug = ?", slug).
		First(&course).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

// SlugsWithPrefix 返回 base 本身及 base-* 形式的已占用 slug
func (r *CourseRepository) SlugsWithPrefix(base string) ([]string, error) {
	var slugs []string
	err := r.DB.Model(&model.Course{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &slugs).Error
	return slugs, err
}

func (r *CourseRepository) ListByInstructor(instructorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("instructor_id = ?", instructorID).
		Order("created_at desc, id desc").
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListPublished(limit int) ([]model.Course, error) {
	var courses []model.Course
	q := r.DB.Preload("Instructor").Where("is_published = ?", true).Order("created_at desc, id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Course{}).Count(&count).Error
	return count, err
}

// Delete 删除课程及其章节、课时、内容、测验和选课记录
func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return deleteCourse(tx, id)
	})
}

// FindByLessonID 反查课时所属课程
func (r *CourseRepository) FindByLessonID(lessonID uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Model(&model.Course{}).
		Joins("JOIN course_modules ON course_modules.course_id = courses.id").
		Joins("JOIN lessons ON lessons.module_id = course_modules.id").
		Where("lessons.id = ?", lessonID).
		First(&course).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

// FindByContentID 反查内容所属课程
func (r *CourseRepository) FindByContentID(contentID uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.Model(&model.Course{}).
		Joins("JOIN course_modules ON course_modules.course_id = courses.id").
		Joins("JOIN lessons ON lessons.module_id = course_modules.id").
		Joins("JOIN contents ON contents.lesson_id = lessons.id").
		Where("contents.id = ?", contentID).
		First(&course).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &course, nil
}

// CountContents 课程下全部内容数
func (r *CourseRepository) CountContents(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Content{}).
		Joins("JOIN lessons ON lessons.id = contents.lesson_id").
		Joins("JOIN course_modules ON course_modules.id = lessons.module_id").
		Where("course_modules.course_id = ?", courseID).
		Count(&count).Error
	return count, err
}
