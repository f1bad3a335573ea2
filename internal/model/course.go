package model

type ContentType string

const (
	ContentVideo      ContentType = "video"
	ContentPDF        ContentType = "pdf"
	ContentText       ContentType = "text"
	ContentSlide      ContentType = "slide"
	ContentQuiz       ContentType = "quiz"
	ContentAssignment ContentType = "assignment"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentVideo, ContentPDF, ContentText, ContentSlide, ContentQuiz, ContentAssignment:
		return true
	}
	return false
}

// swagger:model Course
type Course struct {
	BaseModel
	Title        string   `gorm:"size:200;not null" json:"title"`
	Description  string   `gorm:"type:text" json:"description"`
	InstructorID uint     `gorm:"index;not null" json:"instructorId"`
	Instructor   *User    `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Price        *float64 `gorm:"type:decimal(10,2)" json:"price"`
	IsPublished  bool     `gorm:"not null" json:"isPublished"`
	Thumbnail    string   `gorm:"size:500" json:"thumbnail"`
	Slug         string   `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Modules      []Module `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// Module 课程下的章节，Order 在同一课程内唯一
type Module struct {
	BaseModel
	CourseID    uint     `gorm:"not null;uniqueIndex:idx_module_course_order" json:"courseId"`
	Title       string   `gorm:"size:200;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Order       int      `gorm:"column:sort_order;not null;uniqueIndex:idx_module_course_order" json:"order"`
	Lessons     []Lesson `gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

func (Module) TableName() string {
	return "course_modules"
}

type Lesson struct {
	BaseModel
	ModuleID    uint      `gorm:"not null;uniqueIndex:idx_lesson_module_order" json:"moduleId"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Order       int       `gorm:"column:sort_order;not null;uniqueIndex:idx_lesson_module_order" json:"order"`
	Contents    []Content `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"contents,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// Content 课时内容，按 ContentType 决定哪些字段有值
type Content struct {
	BaseModel
	LessonID        uint        `gorm:"not null;uniqueIndex:idx_content_lesson_order" json:"lessonId"`
	Title           string      `gorm:"size:200;not null" json:"title"`
	ContentType     ContentType `gorm:"size:20;not null" json:"contentType"`
	FileURL         string      `gorm:"size:500" json:"fileUrl,omitempty"`
	TextContent     string      `gorm:"type:text" json:"textContent,omitempty"`
	VideoURL        string      `gorm:"size:500" json:"videoUrl,omitempty"`
	DurationSeconds float64     `gorm:"not null;default:0" json:"durationSeconds,omitempty"`
	Order           int         `gorm:"column:sort_order;not null;uniqueIndex:idx_content_lesson_order" json:"order"`
}

func (Content) TableName() string {
	return "contents"
}
