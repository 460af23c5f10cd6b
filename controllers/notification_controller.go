package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/models"
	"inkwell/utils"
)

// NotificationController serves the per-user notification inbox.
type NotificationController struct {
	db *gorm.DB
}

// NewNotificationController creates a NotificationController.
func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{db: db}
}

// List returns the caller's notifications newest first, paginated, with the
// related post and author projected down to the fields the inbox renders.
func (n *NotificationController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var total int64
	if err := n.db.Model(&models.Notification{}).Where("recipient_id = ?", userID).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to count notifications")
		return
	}

	var notifications []models.Notification
	err := n.db.
		Where("recipient_id = ?", userID).
		Preload("RelatedAuthor", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Preload("RelatedPost", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "title")
		}).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to list notifications")
		return
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		totalPages++
	}

	utils.Success(ctx, gin.H{
		"items":       notifications,
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": totalPages,
	})
}

// UnreadCount returns the number of unread notifications for the caller.
func (n *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var count int64
	err := n.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND `read` = ?", userID, false).
		Count(&count).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to count notifications")
		return
	}

	utils.Success(ctx, gin.H{"count": count})
}

// MarkRead flags a single notification as read. Notifications belonging to
// other users are reported as not found.
func (n *NotificationController) MarkRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var notification models.Notification
	err := n.db.Where("id = ? AND recipient_id = ?", ctx.Param("id"), userID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40408, "notification not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load notification")
		return
	}

	if !notification.Read {
		if err := n.db.Model(&notification).Update("read", true).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to mark notification")
			return
		}
		notification.Read = true
	}

	utils.Success(ctx, gin.H{"notification": notification})
}

// MarkAllRead flags every unread notification of the caller and reports how
// many rows changed.
func (n *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := n.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND `read` = ?", userID, false).
		Update("read", true)
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to mark notifications")
		return
	}

	utils.Success(ctx, gin.H{"modified": res.RowsAffected})
}

// Delete removes a single notification owned by the caller.
func (n *NotificationController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := n.db.Where("id = ? AND recipient_id = ?", ctx.Param("id"), userID).Delete(&models.Notification{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to delete notification")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40408, "notification not found")
		return
	}

	utils.Success(ctx, gin.H{"message": "notification removed"})
}

// ClearRead removes every already-read notification of the caller and reports
// how many were deleted.
func (n *NotificationController) ClearRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	res := n.db.
		Where("recipient_id = ? AND `read` = ?", userID, true).
		Delete(&models.Notification{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to clear notifications")
		return
	}

	utils.Success(ctx, gin.H{"deleted": res.RowsAffected})
}
