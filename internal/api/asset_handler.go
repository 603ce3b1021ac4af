package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dutchcoders/go-clamd"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resumaker/internal/api/middleware"
	"resumaker/internal/editor"
	"resumaker/internal/resume"
	"resumaker/internal/storage"
	"resumaker/internal/store"
)

const (
	maxAvatarSize     = 5 << 20
	avatarURLTTL      = 15 * time.Minute
	avatarUploadLimit = 20
)

var avatarTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// AssetHandler 负责头像上传与访问。
type AssetHandler struct {
	store     *store.Service
	objects   storage.ObjectStore
	limiter   *rateLimiter
	logger    *slog.Logger
	clamdAddr string
}

// NewAssetHandler 返回 AssetHandler 实例；counter 为 nil 时不限流。
func NewAssetHandler(svc *store.Service, objects storage.ObjectStore, counter redisRateCounter, logger *slog.Logger, clamdAddr string) *AssetHandler {
	h := &AssetHandler{
		store:     svc,
		objects:   objects,
		logger:    logger,
		clamdAddr: clamdAddr,
	}
	if counter != nil {
		h.limiter = newRateLimiter(counter, "rate:avatar:", avatarUploadLimit, time.Hour)
	}
	return h
}

// UploadAvatar 处理头像上传：限流、类型检测、病毒扫描后写入对象存储并更新基本信息。
func (h *AssetHandler) UploadAvatar(c *gin.Context) {
	if h.objects == nil {
		Error(c, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	ctx := c.Request.Context()
	resumeID := assetResumeID(c)
	if resumeID == "" {
		BadRequest(c, "missing resumeId")
		return
	}
	log := middleware.LoggerFromContext(c)

	doc, err := h.store.Snapshot(ctx, resumeID)
	if err != nil {
		DomainError(c, err)
		return
	}
	basic, ok := doc.BasicSection()
	if !ok {
		NotFound(c, "basic info section not found")
		return
	}

	allowed, err := h.limiter.Allow(ctx, resumeID)
	if err != nil {
		log.Warn("avatar rate limit unavailable", slog.Any("error", err))
	}
	if !allowed {
		Error(c, http.StatusTooManyRequests, "too many uploads")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}
	if file.Size > maxAvatarSize {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	src, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	data, err := io.ReadAll(io.LimitReader(src, maxAvatarSize+1))
	src.Close()
	if err != nil {
		Internal(c, "failed to read file")
		return
	}
	if len(data) > maxAvatarSize {
		Error(c, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	mime := mimetype.Detect(data)
	ext, ok := avatarTypes[mime.String()]
	if !ok {
		BadRequest(c, "unsupported image type")
		return
	}

	if h.clamdAddr != "" {
		clean, err := h.scan(data)
		if err != nil {
			log.Error("scan file", slog.String("error", err.Error()))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	objectKey := storage.AvatarPrefix(resumeID) + uuid.NewString() + ext
	if err := h.objects.UploadFile(ctx, objectKey, bytes.NewReader(data), int64(len(data)), mime.String()); err != nil {
		log.Error("upload file", slog.String("error", err.Error()))
		Internal(c, "failed to upload file")
		return
	}

	next, err := h.setAvatar(ctx, resumeID, basic, objectKey)
	if err != nil {
		DomainError(c, err)
		return
	}
	url, err := h.objects.GeneratePresignedURL(ctx, objectKey, avatarURLTTL, "")
	if err != nil {
		log.Warn("generate avatar url", slog.String("error", err.Error()))
	}

	c.JSON(http.StatusCreated, gin.H{
		"objectKey": objectKey,
		"url":       url,
		"resume":    next,
	})
}

// GetAvatarURL 返回头像的临时预签名 URL。
func (h *AssetHandler) GetAvatarURL(c *gin.Context) {
	if h.objects == nil {
		Error(c, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}
	resumeID := assetResumeID(c)
	objectKey := c.Query("key")
	if objectKey == "" {
		BadRequest(c, "missing key")
		return
	}
	if !isValidAvatarKey(resumeID, objectKey) {
		Forbidden(c, "access denied")
		return
	}

	signedURL, err := h.objects.GeneratePresignedURL(c.Request.Context(), objectKey, avatarURLTTL, "")
	if err != nil {
		h.logger.Error("generate presigned url", slog.String("error", err.Error()))
		Internal(c, "failed to generate url")
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": signedURL})
}

// assetResumeID 兼容 /v1/resumes/:id/avatar 与 /v1/assets/avatar?resumeId= 两种路径。
func assetResumeID(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return id
	}
	return c.Query("resumeId")
}

func (h *AssetHandler) scan(data []byte) (bool, error) {
	abort := make(chan bool)
	defer close(abort)
	results, err := clamd.NewClamd(h.clamdAddr).ScanStream(bytes.NewReader(data), abort)
	if err != nil {
		return false, err
	}
	clean := true
	for result := range results {
		if result.Status != clamd.RES_OK {
			clean = false
		}
	}
	return clean, nil
}

func (h *AssetHandler) setAvatar(ctx context.Context, resumeID string, basic resume.Section, objectKey string) (resume.Resume, error) {
	var latest resume.Resume
	ed, err := editor.NewBasicInfoEditor(basic, func(ctx context.Context, cmd resume.UpdateSectionContent) error {
		doc, err := h.store.Dispatch(ctx, resumeID, cmd)
		latest = doc
		return err
	})
	if err != nil {
		return resume.Resume{}, err
	}
	if err := ed.SetField(ctx, "avatar", objectKey); err != nil {
		return resume.Resume{}, err
	}
	return latest, nil
}
