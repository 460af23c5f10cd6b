package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/middleware"
	"inkwell/models"
	"inkwell/utils"
)

const publicPostsCachePrefix = "cache:posts:public:"

// PostController manages owner-scoped CRUD and the public read surface for posts.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// ListMyPosts returns all posts of the authenticated author, newest first,
// drafts included.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var posts []models.Post
	if err := p.db.Where("author_id = ?", userID).Order("created_at DESC").Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to list posts")
		return
	}

	utils.Success(ctx, gin.H{"items": posts})
}

// GetMyPost returns a single post owned by the caller. Ownership mismatches are
// reported as not found so other users' post IDs stay unguessable.
func (p *PostController) GetMyPost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var post models.Post
	err := p.db.Where("id = ? AND author_id = ?", ctx.Param("id"), userID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40402, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to load post")
		return
	}

	utils.Success(ctx, gin.H{"post": post})
}

// CreatePost creates a draft or published post for the authenticated author.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req struct {
		Title   string   `json:"title" binding:"required,min=1"`
		Content string   `json:"content"`
		Image   string   `json:"image"`
		Tags    []string `json:"tags"`
		Status  string   `json:"status"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	title := utils.SanitizeText(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return
	}

	status := req.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if status != models.PostStatusDraft && status != models.PostStatusPublished {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid status")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	post := models.Post{
		AuthorID: userID,
		Title:    title,
		Content:  req.Content,
		Image:    req.Image,
		Tags:     utils.SanitizeTags(req.Tags),
		Status:   status,
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to create post")
		return
	}

	if post.Published() {
		p.notifySubscribers(&post)
		utils.InvalidateByPrefix(publicPostsCachePrefix)
	}

	utils.SuccessCreated(ctx, gin.H{"post": post})
}

// UpdatePost merges provided non-empty fields over the stored post. Empty or
// missing inputs never clear existing values.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	var req struct {
		Title   string   `json:"title"`
		Content string   `json:"content"`
		Image   string   `json:"image"`
		Tags    []string `json:"tags"`
		Status  string   `json:"status"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40111, "unauthorized")
		return
	}

	var post models.Post
	err := p.db.Where("id = ? AND author_id = ?", ctx.Param("id"), userID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40403, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}

	wasPublished := post.Published()

	if title := utils.SanitizeText(strings.TrimSpace(req.Title)); title != "" {
		post.Title = title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.Image != "" {
		post.Image = req.Image
	}
	if len(req.Tags) > 0 {
		post.Tags = utils.SanitizeTags(req.Tags)
	}
	if req.Status != "" {
		if req.Status != models.PostStatusDraft && req.Status != models.PostStatusPublished {
			utils.Error(ctx, http.StatusBadRequest, 40024, "invalid status")
			return
		}
		post.Status = req.Status
	}
	post.UpdatedAt = time.Now()

	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to update post")
		return
	}

	// Fan out only on the draft -> published transition, never on re-save.
	if !wasPublished && post.Published() {
		p.notifySubscribers(&post)
	}
	utils.InvalidateByPrefix(publicPostsCachePrefix)

	utils.Success(ctx, gin.H{"post": post})
}

// DeletePost removes an owned post; not-owned posts look like missing ones.
func (p *PostController) DeletePost(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40112, "unauthorized")
		return
	}

	var post models.Post
	err := p.db.Where("id = ? AND author_id = ?", ctx.Param("id"), userID).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40404, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}

	if err := p.db.Delete(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix(publicPostsCachePrefix)
	utils.Success(ctx, gin.H{"message": "post removed"})
}

// ListPublicPosts returns all published posts, newest first, with the author
// projected down to id and username.
func (p *PostController) ListPublicPosts(ctx *gin.Context) {
	cacheKey := publicPostsCachePrefix + "list"
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var posts []models.Post
	err := p.db.
		Where("status = ?", models.PostStatusPublished).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to list posts")
		return
	}

	payload := gin.H{"items": posts}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, 5*time.Minute)
	utils.Success(ctx, payload)
}

// GetPublicPost returns a published post and counts the view. Every successful
// fetch increments views; concurrent fetches may undercount and that is accepted.
func (p *PostController) GetPublicPost(ctx *gin.Context) {
	var post models.Post
	err := p.db.
		Where("id = ? AND status = ?", ctx.Param("id"), models.PostStatusPublished).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username")
		}).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40405, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to load post")
		return
	}

	if err := p.db.Model(&post).UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to record view")
		return
	}
	post.Views++

	utils.Success(ctx, gin.H{"post": post})
}

// notifySubscribers creates one new_post notification per subscriber of the
// post's author. Best-effort: failures are logged, the publish itself stands.
func (p *PostController) notifySubscribers(post *models.Post) {
	var author models.User
	if err := p.db.First(&author, post.AuthorID).Error; err != nil {
		logWarnf("notify subscribers: load author %d: %v", post.AuthorID, err)
		return
	}

	var subs []models.Subscription
	if err := p.db.Where("author_id = ?", post.AuthorID).Find(&subs).Error; err != nil {
		logWarnf("notify subscribers: list subscribers of %d: %v", post.AuthorID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	postID := post.ID
	authorID := post.AuthorID
	title := utils.SanitizeText(post.Title)
	notifications := make([]models.Notification, 0, len(subs))
	for _, sub := range subs {
		notifications = append(notifications, models.Notification{
			RecipientID:     sub.SubscriberID,
			Type:            models.NotificationTypeNewPost,
			Title:           fmt.Sprintf("New post from %s", author.Username),
			Message:         title,
			RelatedPostID:   &postID,
			RelatedAuthorID: &authorID,
		})
	}

	if err := p.db.Create(&notifications).Error; err != nil {
		logWarnf("notify subscribers: create notifications for post %d: %v", post.ID, err)
	}
}

func logWarnf(format string, args ...interface{}) {
	if utils.Sugar != nil {
		utils.Sugar.Warnf(format, args...)
	}
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 20
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}
