package storage

// 对象键布局：
//
//	resumes/<resumeID>/resume.pdf   打印结果
//	avatars/<resumeID>/<uuid>.<ext> 头像
const (
	resumesRoot = "resumes/"
	avatarsRoot = "avatars/"
)

// ResumePrefix 返回某份简历打印产物所在目录。
func ResumePrefix(resumeID string) string {
	return resumesRoot + resumeID + "/"
}

// PDFKey 返回简历 PDF 的对象键。
func PDFKey(resumeID string) string {
	return ResumePrefix(resumeID) + "resume.pdf"
}

// AvatarPrefix 返回简历头像目录。
func AvatarPrefix(resumeID string) string {
	return avatarsRoot + resumeID + "/"
}
