package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"inkwell/models"
)

func createTestPost(t *testing.T, db *gorm.DB, authorID uint, title, status string) models.Post {
	t.Helper()
	post := models.Post{
		AuthorID: authorID,
		Title:    title,
		Content:  "some content",
		Status:   status,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func TestCreatePost_DefaultsToDraft(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	w := performJSON(router, "POST", "/api/posts", map[string]interface{}{
		"title":   "My first post",
		"content": "hello",
	}, token)

	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)
	post := env.Data["post"].(map[string]interface{})
	assert.Equal(t, models.PostStatusDraft, post["status"])
}

func TestCreatePost_RejectsInvalidStatus(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	w := performJSON(router, "POST", "/api/posts", map[string]interface{}{
		"title":  "Post",
		"status": "archived",
	}, token)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublicList_ExcludesDrafts(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")

	createTestPost(t, db, alice.ID, "Draft post", models.PostStatusDraft)
	createTestPost(t, db, alice.ID, "Published post", models.PostStatusPublished)

	w := performJSON(router, "GET", "/api/posts/public", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	items := env.Data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Published post", items[0].(map[string]interface{})["title"])
}

func TestGetPublicPost_IncrementsViews(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "Counted", models.PostStatusPublished)

	path := fmt.Sprintf("/api/posts/public/%d", post.ID)
	for i := 0; i < 3; i++ {
		w := performJSON(router, "GET", path, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.EqualValues(t, 3, stored.Views)
}

func TestGetPublicPost_DraftLooksMissing(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "Hidden draft", models.PostStatusDraft)

	w := performJSON(router, "GET", fmt.Sprintf("/api/posts/public/%d", post.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePost_EmptyFieldsPreserveValues(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, token := createTestUser(t, db, "alice")
	post := createTestPost(t, db, alice.ID, "Original title", models.PostStatusDraft)

	w := performJSON(router, "PUT", fmt.Sprintf("/api/posts/%d", post.ID), map[string]interface{}{
		"title":   "",
		"content": "updated content",
	}, token)

	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "Original title", stored.Title)
	assert.Equal(t, "updated content", stored.Content)
}

func TestUpdatePost_NotOwnedLooksMissing(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "Alice's post", models.PostStatusPublished)

	w := performJSON(router, "PUT", fmt.Sprintf("/api/posts/%d", post.ID), map[string]interface{}{
		"title": "Hijacked",
	}, bobToken)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	assert.Equal(t, "Alice's post", stored.Title)
}

func TestDeletePost_NotOwnedLooksMissing(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")
	post := createTestPost(t, db, alice.ID, "Alice's post", models.PostStatusPublished)

	w := performJSON(router, "DELETE", fmt.Sprintf("/api/posts/%d", post.ID), nil, bobToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListMyPosts_IncludesDraftsOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, aliceToken := createTestUser(t, db, "alice")
	bob, _ := createTestUser(t, db, "bob")

	createTestPost(t, db, alice.ID, "Alice draft", models.PostStatusDraft)
	createTestPost(t, db, alice.ID, "Alice published", models.PostStatusPublished)
	createTestPost(t, db, bob.ID, "Bob's post", models.PostStatusPublished)

	w := performJSON(router, "GET", "/api/posts", nil, aliceToken)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	items := env.Data["items"].([]interface{})
	assert.Len(t, items, 2)
}

func TestPublish_NotifiesSubscribersOnce(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, aliceToken := createTestUser(t, db, "alice")
	bob, bobToken := createTestUser(t, db, "bob")

	w := performJSON(router, "POST", fmt.Sprintf("/api/subscriptions/subscribe/%d", alice.ID), nil, bobToken)
	require.Equal(t, http.StatusCreated, w.Code)

	post := createTestPost(t, db, alice.ID, "Soon to publish", models.PostStatusDraft)

	w = performJSON(router, "PUT", fmt.Sprintf("/api/posts/%d", post.ID), map[string]interface{}{
		"status": models.PostStatusPublished,
	}, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	// Re-saving an already published post must not notify again.
	w = performJSON(router, "PUT", fmt.Sprintf("/api/posts/%d", post.ID), map[string]interface{}{
		"content": "edited after publish",
	}, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	var notifications []models.Notification
	require.NoError(t, db.Where("recipient_id = ?", bob.ID).Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationTypeNewPost, notifications[0].Type)
	assert.Equal(t, "New post from alice", notifications[0].Title)
}
