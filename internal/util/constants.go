package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MimeVideo = "video/"
	MimeImage = "image/"
	MimePDF   = "application/pdf"
)

// 课件允许的 MIME 类型（幻灯片常见为 pdf 或 office 格式）
var AllowedContentMimeTypes = []string{
	MimeVideo,
	MimePDF,
	MimeImage,
	"application/zip",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"text/plain",
}

const (
	// DashboardAvailableCourses 学生仪表盘展示的最新公开课程数量
	DashboardAvailableCourses = 5
)
