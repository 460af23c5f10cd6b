package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/config"
	"inkwell/models"
)

func performUpload(t *testing.T, router http.Handler, field, filename string, content []byte, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpload_StoresFileAndRecord(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	user, token := createTestUser(t, db, "alice")

	content := []byte("fake image bytes")
	w := performUpload(t, router, "image", "photo.png", content, token)

	require.Equal(t, http.StatusCreated, w.Code)
	env := decodeEnvelope(t, w)

	url, ok := env.Data["url"].(string)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.Equal(t, float64(len(content)), env.Data["size"])

	onDisk := filepath.Join(config.Get().UploadDir, strings.TrimPrefix(url, "/uploads/"))
	stored, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	var record models.UploadedFile
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&record).Error)
	assert.Equal(t, url, record.URL)
	assert.EqualValues(t, len(content), record.Size)
}

func TestUpload_FallsBackToFileField(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	w := performUpload(t, router, "file", "photo.jpg", []byte("bytes"), token)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpload_RejectsUnsupportedExtension(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	w := performUpload(t, router, "image", "payload.exe", []byte("bytes"), token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_RejectsOversizedFile(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	oversized := make([]byte, (config.Get().UploadMaxMB<<20)+1)
	w := performUpload(t, router, "image", "big.png", oversized, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpload_RequiresFile(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	req := httptest.NewRequest("POST", "/api/upload", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
