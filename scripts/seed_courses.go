// 导入示例课程（讲师、章节、课时、内容）
//
// 用法: go run scripts/seed_courses.go -file scripts/seed/devops.yaml

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/service"
	"lms_backend/internal/util"
	"lms_backend/pkg/database"
	"lms_backend/pkg/logger"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

type seedContent struct {
	Title    string `yaml:"title"`
	Type     string `yaml:"type"`
	VideoURL string `yaml:"video_url"`
	File     string `yaml:"file"`
	Text     string `yaml:"text"`
	Order    int    `yaml:"order"`
}

type seedLesson struct {
	Title       string        `yaml:"title"`
	Description string        `yaml:"description"`
	Order       int           `yaml:"order"`
	Contents    []seedContent `yaml:"contents"`
}

type seedModule struct {
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Order       int          `yaml:"order"`
	Lessons     []seedLesson `yaml:"lessons"`
}

type seedFile struct {
	Instructor struct {
		Username string `yaml:"username"`
		Email    string `yaml:"email"`
		Password string `yaml:"password"`
	} `yaml:"instructor"`
	Course struct {
		Title       string       `yaml:"title"`
		Description string       `yaml:"description"`
		Published   bool         `yaml:"published"`
		Modules     []seedModule `yaml:"modules"`
	} `yaml:"course"`
}

func main() {
	file := flag.String("file", "scripts/seed/devops.yaml", "课程数据文件")
	flag.Parse()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("无法读取数据文件: %v", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		log.Fatalf("解析数据文件失败: %v", err)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	users := repository.NewUserRepository(db)
	modules := repository.NewModuleRepository(db)
	courses := service.NewCourseService(
		repository.NewCourseRepository(db),
		modules,
		repository.NewEnrollmentRepository(db),
		repository.NewProgressRepository(db),
		nil,
	)

	instructor, err := users.FindByUsername(seed.Instructor.Username)
	if errors.Is(err, util.ErrNotFound) {
		hashed, herr := bcrypt.GenerateFromPassword([]byte(seed.Instructor.Password), bcrypt.DefaultCost)
		if herr != nil {
			log.Fatalf("密码加密失败: %v", herr)
		}
		instructor = &model.User{
			Username:     seed.Instructor.Username,
			Email:        seed.Instructor.Email,
			Password:     string(hashed),
			IsInstructor: true,
			IsActive:     true,
		}
		err = users.Create(instructor)
	}
	if err != nil {
		log.Fatalf("创建讲师失败: %v", err)
	}

	course, err := courses.CreateCourse(instructor, service.CourseInput{
		Title:       seed.Course.Title,
		Description: seed.Course.Description,
		IsPublished: seed.Course.Published,
	})
	if err != nil {
		log.Fatalf("创建课程失败: %v", err)
	}

	// 文件路径直接写入，不经过上传
	for _, sm := range seed.Course.Modules {
		module := &model.Module{CourseID: course.ID, Title: sm.Title, Description: sm.Description, Order: sm.Order}
		if err := modules.CreateModule(module); err != nil {
			log.Fatalf("创建章节失败: %v", err)
		}
		for _, sl := range sm.Lessons {
			lesson := &model.Lesson{ModuleID: module.ID, Title: sl.Title, Description: sl.Description, Order: sl.Order}
			if err := modules.CreateLesson(lesson); err != nil {
				log.Fatalf("创建课时失败: %v", err)
			}
			for _, sc := range sl.Contents {
				content := &model.Content{
					LessonID:    lesson.ID,
					Title:       sc.Title,
					ContentType: model.ContentType(sc.Type),
					VideoURL:    sc.VideoURL,
					FileURL:     sc.File,
					TextContent: sc.Text,
					Order:       sc.Order,
				}
				if err := modules.CreateContent(content); err != nil {
					log.Fatalf("创建内容失败: %v", err)
				}
			}
		}
	}

	log.Printf("课程 %q 导入完成 (slug: %s)", course.Title, course.Slug)
}
