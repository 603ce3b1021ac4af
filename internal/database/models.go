package database

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Resume 表示一份持久化的简历文档。
type Resume struct {
	gorm.Model
	ResumeID    string         `gorm:"uniqueIndex;size:64"`
	Title       string         `gorm:"size:255"`
	Description string         `gorm:"size:1024"`
	Content     datatypes.JSON `gorm:"type:jsonb"` // 完整的 resume.Resume 文档
	PdfKey      string         `gorm:"size:512"`
	Status      string         `gorm:"size:32"`
}

// WorkspaceState 记录工作区级别的状态，目前只有当前简历。
type WorkspaceState struct {
	ID              uint   `gorm:"primaryKey"`
	CurrentResumeID string `gorm:"size:64"`
}

// 打印状态
const (
	StatusIdle      = ""
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// AutoMigrate 创建或更新表结构。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Resume{}, &WorkspaceState{})
}
