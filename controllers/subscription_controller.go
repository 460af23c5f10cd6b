package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/models"
	"inkwell/utils"
)

const subscriberCountCachePrefix = "cache:subscriptions:count:"

// SubscriptionController manages directed follow relationships between users.
type SubscriptionController struct {
	db *gorm.DB
}

// NewSubscriptionController creates a SubscriptionController.
func NewSubscriptionController(db *gorm.DB) *SubscriptionController {
	return &SubscriptionController{db: db}
}

// Subscribe creates a follow relationship from the caller to the given author.
// The unique index on (subscriber, author) is the duplicate guard of record; the
// lookup below only provides the friendlier conflict message.
func (s *SubscriptionController) Subscribe(ctx *gin.Context) {
	subscriberID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	authorID, err := parseID(ctx.Param("authorId"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid author id")
		return
	}

	if subscriberID == authorID {
		utils.Error(ctx, http.StatusBadRequest, 40031, "you cannot subscribe to yourself")
		return
	}

	var author models.User
	if err := s.db.First(&author, authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40406, "author not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load author")
		return
	}

	var existing models.Subscription
	if err := s.db.Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40902, "already subscribed to this author")
		return
	}

	subscription := models.Subscription{
		SubscriberID: subscriberID,
		AuthorID:     authorID,
	}
	if err := s.db.Create(&subscription).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.Error(ctx, http.StatusConflict, 40902, "already subscribed to this author")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to subscribe")
		return
	}

	utils.InvalidateByPrefix(subscriberCountCachePrefix + strconv.FormatUint(uint64(authorID), 10))
	utils.SuccessCreated(ctx, gin.H{
		"message":      "successfully subscribed",
		"subscription": subscription,
	})
}

// Unsubscribe removes the caller's subscription to the given author.
func (s *SubscriptionController) Unsubscribe(ctx *gin.Context) {
	subscriberID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	authorID, err := parseID(ctx.Param("authorId"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid author id")
		return
	}

	res := s.db.Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).Delete(&models.Subscription{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to unsubscribe")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40407, "subscription not found")
		return
	}

	utils.InvalidateByPrefix(subscriberCountCachePrefix + strconv.FormatUint(uint64(authorID), 10))
	utils.Success(ctx, gin.H{"message": "successfully unsubscribed"})
}

// Status reports whether the caller is subscribed to the given author. Absence
// is a normal answer, not an error.
func (s *SubscriptionController) Status(ctx *gin.Context) {
	subscriberID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	authorID, err := parseID(ctx.Param("authorId"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid author id")
		return
	}

	var subscription models.Subscription
	err = s.db.Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Success(ctx, gin.H{"is_subscribed": false, "subscription": nil})
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to load subscription")
		return
	}

	utils.Success(ctx, gin.H{"is_subscribed": true, "subscription": subscription})
}

// MySubscriptions lists the authors the caller follows, newest first.
func (s *SubscriptionController) MySubscriptions(ctx *gin.Context) {
	subscriberID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var subscriptions []models.Subscription
	err := s.db.
		Where("subscriber_id = ?", subscriberID).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email")
		}).
		Order("subscribed_at DESC").
		Find(&subscriptions).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to list subscriptions")
		return
	}

	utils.Success(ctx, gin.H{"items": subscriptions})
}

// Subscribers lists the users following the caller, newest first.
func (s *SubscriptionController) Subscribers(ctx *gin.Context) {
	authorID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var subscribers []models.Subscription
	err := s.db.
		Where("author_id = ?", authorID).
		Preload("Subscriber", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "email")
		}).
		Order("subscribed_at DESC").
		Find(&subscribers).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to list subscribers")
		return
	}

	utils.Success(ctx, gin.H{"items": subscribers})
}

// Count returns the public subscriber count for any author.
func (s *SubscriptionController) Count(ctx *gin.Context) {
	authorID, err := parseID(ctx.Param("authorId"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid author id")
		return
	}

	cacheKey := subscriberCountCachePrefix + strconv.FormatUint(uint64(authorID), 10)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var count int64
	if err := s.db.Model(&models.Subscription{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50036, "failed to count subscribers")
		return
	}

	payload := gin.H{"count": count}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	utils.Success(ctx, payload)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
