package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"inkwell/middleware"
	"inkwell/models"
	"inkwell/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	os.Setenv("GIN_MODE", "test")

	dir, err := os.MkdirTemp("", "inkwell-uploads-")
	if err != nil {
		panic(err)
	}
	os.Setenv("UPLOAD_DIR", dir)

	gin.SetMode(gin.TestMode)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// newTestDB opens a per-test in-memory database with the same error
// translation the production MySQL connection uses.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Subscription{},
		&models.Notification{},
		&models.UploadedFile{},
	))
	return db
}

// newTestRouter wires the real controllers and auth middleware the way the
// production router does, without access logging or rate limiting.
func newTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()

	authController := NewAuthController(db)
	postController := NewPostController(db)
	subscriptionController := NewSubscriptionController(db)
	notificationController := NewNotificationController(db)
	uploadController := NewUploadController(db)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	postsGroup := api.Group("/posts")
	postsGroup.GET("/public", postController.ListPublicPosts)
	postsGroup.GET("/public/:id", postController.GetPublicPost)
	postsGroup.Use(middleware.AuthRequired())
	postsGroup.GET("", postController.ListMyPosts)
	postsGroup.POST("", postController.CreatePost)
	postsGroup.GET("/:id", postController.GetMyPost)
	postsGroup.PUT("/:id", postController.UpdatePost)
	postsGroup.DELETE("/:id", postController.DeletePost)

	subsGroup := api.Group("/subscriptions")
	subsGroup.GET("/count/:authorId", subscriptionController.Count)
	subsGroup.Use(middleware.AuthRequired())
	subsGroup.POST("/subscribe/:authorId", subscriptionController.Subscribe)
	subsGroup.POST("/unsubscribe/:authorId", subscriptionController.Unsubscribe)
	subsGroup.GET("/status/:authorId", subscriptionController.Status)
	subsGroup.GET("/my-subscriptions", subscriptionController.MySubscriptions)
	subsGroup.GET("/subscribers", subscriptionController.Subscribers)

	notifGroup := api.Group("/notifications")
	notifGroup.Use(middleware.AuthRequired())
	notifGroup.GET("", notificationController.List)
	notifGroup.GET("/unread-count", notificationController.UnreadCount)
	notifGroup.PATCH("/mark-all-read", notificationController.MarkAllRead)
	notifGroup.PATCH("/:id/read", notificationController.MarkRead)
	notifGroup.DELETE("/clear-read", notificationController.ClearRead)
	notifGroup.DELETE("/:id", notificationController.Delete)

	api.POST("/upload", middleware.AuthRequired(), uploadController.Image)

	return r
}

// createTestUser inserts a user with a known password and returns it with a
// valid bearer token.
func createTestUser(t *testing.T, db *gorm.DB, name string) (models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	user := models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: hash,
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(user.ID, user.Username, utils.TokenDuration)
	require.NoError(t, err)
	return user, token
}

func performJSON(r *gin.Engine, method, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}
