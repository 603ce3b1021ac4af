package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumaker/internal/database"
	"resumaker/internal/resume"
)

// ErrResumeNotFound 表示简历不存在。
var ErrResumeNotFound = errors.New("resume not found")

// Record 是一份简历及其持久化信息。
type Record struct {
	Resume   resume.Resume
	Metadata resume.Metadata
	PdfKey   string
	Status   string
}

// Repository 抽象简历的持久化。
type Repository interface {
	Get(ctx context.Context, resumeID string) (Record, error)
	Put(ctx context.Context, r resume.Resume) (Record, error)
	Delete(ctx context.Context, resumeID string) error
	List(ctx context.Context) ([]resume.Metadata, error)
	Count(ctx context.Context) (int64, error)
	CurrentID(ctx context.Context) (string, error)
	SetCurrentID(ctx context.Context, resumeID string) error
	SetPrintState(ctx context.Context, resumeID, status, pdfKey string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGormRepository 基于 database.Resume 与 database.WorkspaceState 实现 Repository。
func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

const workspaceRowID = 1

func (r *gormRepository) Get(ctx context.Context, resumeID string) (Record, error) {
	var row database.Resume
	err := r.db.WithContext(ctx).Where("resume_id = ?", resumeID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrResumeNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load resume %s: %w", resumeID, err)
	}
	return toRecord(row)
}

func (r *gormRepository) Put(ctx context.Context, doc resume.Resume) (Record, error) {
	content, err := json.Marshal(doc)
	if err != nil {
		return Record{}, fmt.Errorf("encode resume %s: %w", doc.ID, err)
	}

	var row database.Resume
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("resume_id = ?", doc.ID).First(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = database.Resume{ResumeID: doc.ID, Title: doc.Title, Content: datatypes.JSON(content)}
			return tx.Create(&row).Error
		case err != nil:
			return err
		}
		row.Title = doc.Title
		row.Content = datatypes.JSON(content)
		return tx.Save(&row).Error
	})
	if err != nil {
		return Record{}, fmt.Errorf("save resume %s: %w", doc.ID, err)
	}
	return toRecord(row)
}

func (r *gormRepository) Delete(ctx context.Context, resumeID string) error {
	res := r.db.WithContext(ctx).Unscoped().Where("resume_id = ?", resumeID).Delete(&database.Resume{})
	if res.Error != nil {
		return fmt.Errorf("delete resume %s: %w", resumeID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrResumeNotFound
	}
	return nil
}

// List 按最近更新排序。
func (r *gormRepository) List(ctx context.Context) ([]resume.Metadata, error) {
	var rows []database.Resume
	if err := r.db.WithContext(ctx).
		Select("resume_id", "title", "description", "created_at", "updated_at").
		Order("updated_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	out := make([]resume.Metadata, 0, len(rows))
	for _, row := range rows {
		out = append(out, metadataOf(row))
	}
	return out, nil
}

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&database.Resume{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count resumes: %w", err)
	}
	return n, nil
}

func (r *gormRepository) CurrentID(ctx context.Context) (string, error) {
	var state database.WorkspaceState
	err := r.db.WithContext(ctx).First(&state, workspaceRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load workspace state: %w", err)
	}
	return state.CurrentResumeID, nil
}

func (r *gormRepository) SetCurrentID(ctx context.Context, resumeID string) error {
	state := database.WorkspaceState{ID: workspaceRowID, CurrentResumeID: resumeID}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_resume_id"}),
	}).Create(&state).Error
	if err != nil {
		return fmt.Errorf("save workspace state: %w", err)
	}
	return nil
}

func (r *gormRepository) SetPrintState(ctx context.Context, resumeID, status, pdfKey string) error {
	updates := map[string]any{"status": status}
	if pdfKey != "" {
		updates["pdf_key"] = pdfKey
	}
	res := r.db.WithContext(ctx).Model(&database.Resume{}).Where("resume_id = ?", resumeID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("update print state %s: %w", resumeID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrResumeNotFound
	}
	return nil
}

func toRecord(row database.Resume) (Record, error) {
	var doc resume.Resume
	if err := json.Unmarshal(row.Content, &doc); err != nil {
		return Record{}, fmt.Errorf("decode resume %s: %w", row.ResumeID, err)
	}
	return Record{
		Resume:   doc,
		Metadata: metadataOf(row),
		PdfKey:   row.PdfKey,
		Status:   row.Status,
	}, nil
}

func metadataOf(row database.Resume) resume.Metadata {
	return resume.Metadata{
		ID:          row.ResumeID,
		Title:       row.Title,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Description: row.Description,
	}
}
