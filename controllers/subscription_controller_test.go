package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribe_ToSelfRejected(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, token := createTestUser(t, db, "alice")

	w := performJSON(router, "POST", fmt.Sprintf("/api/subscriptions/subscribe/%d", alice.ID), nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubscribe_UnknownAuthorNotFound(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	w := performJSON(router, "POST", "/api/subscriptions/subscribe/99999", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribe_DuplicateConflict(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")

	path := fmt.Sprintf("/api/subscriptions/subscribe/%d", alice.ID)

	w := performJSON(router, "POST", path, nil, bobToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, "POST", path, nil, bobToken)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubscription_StatusLifecycle(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")

	statusPath := fmt.Sprintf("/api/subscriptions/status/%d", alice.ID)

	w := performJSON(router, "GET", statusPath, nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeEnvelope(t, w).Data["is_subscribed"])

	w = performJSON(router, "POST", fmt.Sprintf("/api/subscriptions/subscribe/%d", alice.ID), nil, bobToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, "GET", statusPath, nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeEnvelope(t, w).Data["is_subscribed"])

	w = performJSON(router, "POST", fmt.Sprintf("/api/subscriptions/unsubscribe/%d", alice.ID), nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = performJSON(router, "GET", statusPath, nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeEnvelope(t, w).Data["is_subscribed"])
}

func TestUnsubscribe_MissingNotFound(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")

	w := performJSON(router, "POST", fmt.Sprintf("/api/subscriptions/unsubscribe/%d", alice.ID), nil, bobToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMySubscriptionsAndSubscribers(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, aliceToken := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")
	carol, _ := createTestUser(t, db, "carol")

	w := performJSON(router, "POST", fmt.Sprintf("/api/subscriptions/subscribe/%d", alice.ID), nil, bobToken)
	require.Equal(t, http.StatusCreated, w.Code)
	w = performJSON(router, "POST", fmt.Sprintf("/api/subscriptions/subscribe/%d", carol.ID), nil, bobToken)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, "GET", "/api/subscriptions/my-subscriptions", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeEnvelope(t, w).Data["items"].([]interface{})
	assert.Len(t, items, 2)

	w = performJSON(router, "GET", "/api/subscriptions/subscribers", nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	items = decodeEnvelope(t, w).Data["items"].([]interface{})
	require.Len(t, items, 1)

	subscriber := items[0].(map[string]interface{})["subscriber"].(map[string]interface{})
	assert.Equal(t, "bob", subscriber["username"])
}

func TestSubscriberCount_Public(t *testing.T) {
	db := newTestDB(t)
	router := newTestRouter(db)
	alice, _ := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")
	_, carolToken := createTestUser(t, db, "carol")

	path := fmt.Sprintf("/api/subscriptions/subscribe/%d", alice.ID)
	for _, token := range []string{bobToken, carolToken} {
		w := performJSON(router, "POST", path, nil, token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// No token: the count endpoint is public.
	w := performJSON(router, "GET", fmt.Sprintf("/api/subscriptions/count/%d", alice.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeEnvelope(t, w).Data["count"])
}
