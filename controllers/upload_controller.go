package controllers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"inkwell/config"
	"inkwell/models"
	"inkwell/utils"
)

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadController stores post images on local disk and records them per user.
type UploadController struct {
	db *gorm.DB
}

// NewUploadController creates an UploadController.
func NewUploadController(db *gorm.DB) *UploadController {
	return &UploadController{db: db}
}

// Image accepts a multipart image, enforces the size cap server side, and
// writes the file under a dated directory so a single folder never grows
// unbounded. The returned URL is served by the static /uploads route.
func (u *UploadController) Image(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		fileHeader, err = ctx.FormFile("file")
	}
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "no file uploaded")
		return
	}

	cfg := config.Get()
	maxBytes := int64(cfg.UploadMaxMB) << 20
	if fileHeader.Size > maxBytes {
		utils.Error(ctx, http.StatusBadRequest, 40051, fmt.Sprintf("file exceeds %dMB limit", cfg.UploadMaxMB))
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		utils.Error(ctx, http.StatusBadRequest, 40052, "unsupported file type")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to read upload")
		return
	}
	defer src.Close()

	now := time.Now()
	relDir := filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	dir := filepath.Join(cfg.UploadDir, relDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to prepare upload directory")
		return
	}

	name := uuid.NewString() + ext
	fullPath := filepath.Join(dir, name)

	dst, err := os.Create(fullPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to store upload")
		return
	}
	defer dst.Close()

	// The header size is client supplied; the limited copy is the real cap.
	written, err := io.Copy(dst, &io.LimitedReader{R: src, N: maxBytes + 1})
	if err != nil {
		os.Remove(fullPath)
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to store upload")
		return
	}
	if written > maxBytes {
		os.Remove(fullPath)
		utils.Error(ctx, http.StatusBadRequest, 40051, fmt.Sprintf("file exceeds %dMB limit", cfg.UploadMaxMB))
		return
	}

	url := "/uploads/" + filepath.ToSlash(filepath.Join(relDir, name))

	record := models.UploadedFile{
		UserID:   userID,
		FilePath: fullPath,
		URL:      url,
		Size:     written,
	}
	if err := u.db.Create(&record).Error; err != nil {
		logWarnf("upload: record file %s: %v", fullPath, err)
	}

	utils.SuccessCreated(ctx, gin.H{
		"url":  url,
		"size": written,
	})
}
