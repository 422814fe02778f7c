// Copyright (C) 2026 the MMEngagement maintainers
// See root-dir/LICENSE for more information

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbaskhairoun/MMEngagement/internal/db/jsondb"
	"github.com/mbaskhairoun/MMEngagement/internal/model"
	"github.com/mbaskhairoun/MMEngagement/internal/notify"
)

type recordingMailer struct {
	requests chan notify.Request
}

func (r *recordingMailer) Send(_ context.Context, req notify.Request) error {
	r.requests <- req
	return nil
}

func newTestServer(t *testing.T) (*Server, *recordingMailer, uuid.UUID) {
	t.Helper()
	dir := t.TempDir()
	hStore, err := jsondb.NewHouseholdStore(filepath.Join(dir, "households.json"))
	require.NoError(t, err)
	rStore, err := jsondb.NewResponseStore(filepath.Join(dir, "responses.json"))
	require.NoError(t, err)
	cStore, err := jsondb.NewConfigStore(filepath.Join(dir, "config.json"))
	require.NoError(t, err)

	householdID, err := hStore.CreateHousehold(context.Background(), &model.Household{
		InvitationName: "Smith Family",
		Members:        []string{"John Smith", "Jane Smith"},
		Email:          "smiths@example.com",
	})
	require.NoError(t, err)

	mailer := &recordingMailer{requests: make(chan notify.Request, 4)}
	srv := NewServer("test", hStore, rStore, cStore, mailer, notify.EventDetails{
		Title:     "Engagement Celebration",
		HostNames: "Marly & Michael",
		Date:      "May 24, 2026",
		FromName:  "Marly & Michael",
		FromEmail: "rsvp@example.com",
	})
	return srv, mailer, householdID
}

func doJSON(t *testing.T, srv http.Handler, method, path string, payload any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func doAdmin(t *testing.T, srv http.Handler, method, path string, payload any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("admin", "admin")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if out != nil && w.Code < 300 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
	}
	return w
}

func TestServer_Lookup(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var resp struct {
		Household     *model.Household `json:"household"`
		MatchedMember string           `json:"matched_member"`
	}
	w := doJSON(t, srv, http.MethodPost, "/api/lookup", map[string]string{"name": "jane smith"}, &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Smith Family", resp.Household.InvitationName)
	assert.Equal(t, "Jane Smith", resp.MatchedMember)
	assert.NotContains(t, w.Body.String(), "invitation_name_lower", "derived match keys stay internal")
}

func TestServer_Lookup_NotOnTheList(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/lookup", map[string]string{"name": "Total Stranger"}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "guest list")

	w = doJSON(t, srv, http.MethodPost, "/api/lookup", map[string]string{"name": "   "}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_SubmitFlow(t *testing.T) {
	srv, mailer, householdID := newTestServer(t)

	payload := map[string]any{
		"household_id":      householdID,
		"respondent_name":   "John Smith",
		"respondent_email":  "john@example.com",
		"attending":         "yes",
		"attending_members": []string{"John Smith", "Jane Smith"},
	}

	var saved model.RsvpResponse
	w := doJSON(t, srv, http.MethodPost, "/api/rsvp", payload, &saved)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, householdID, saved.HouseholdID)

	select {
	case req := <-mailer.requests:
		assert.Equal(t, notify.StatusAttending, req.Status)
		assert.False(t, req.IsUpdate)
		assert.Len(t, req.Recipients, 2, "household and respondent addresses")
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation email never dispatched")
	}

	// Second submission is an edit, not a new record.
	payload["attending"] = "no"
	var updated model.RsvpResponse
	w = doJSON(t, srv, http.MethodPost, "/api/rsvp", payload, &updated)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Empty(t, updated.AttendingMembers)

	select {
	case req := <-mailer.requests:
		assert.Equal(t, notify.StatusDeclining, req.Status)
		assert.True(t, req.IsUpdate)
		assert.Equal(t, []string{"John Smith", "Jane Smith"}, req.DecliningMembers)
	case <-time.After(2 * time.Second):
		t.Fatal("update confirmation never dispatched")
	}
}

func TestServer_Submit_UnknownHousehold(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/rsvp", map[string]any{
		"household_id":    uuid.New(),
		"respondent_name": "Stranger",
		"attending":       "yes",
	}, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_AdminRequiresAuth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/admin/households", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServer_AdminHouseholdCRUD(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var created model.Household
	w := doAdmin(t, srv, http.MethodPost, "/admin/households", map[string]any{
		"invitation_name": "Alex Johnson",
	}, &created)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, []string{"Alex Johnson"}, created.Members, "sole member default")

	// Duplicate invitation names are rejected.
	w = doAdmin(t, srv, http.MethodPost, "/admin/households", map[string]any{
		"invitation_name": "alex johnson",
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	var list []*model.Household
	w = doAdmin(t, srv, http.MethodGet, "/admin/households?q=johnson", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, list, 1)
	assert.Equal(t, "Alex Johnson", list[0].InvitationName)

	created.Notes = "plus one pending"
	w = doAdmin(t, srv, http.MethodPut, "/admin/households/"+created.ID.String(), &created, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doAdmin(t, srv, http.MethodDelete, "/admin/households/"+created.ID.String(), nil, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doAdmin(t, srv, http.MethodGet, "/admin/households?q=johnson", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, list)
}

func TestServer_AdminEditKeepsRespondedFlag(t *testing.T) {
	srv, mailer, householdID := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/rsvp", map[string]any{
		"household_id":      householdID,
		"respondent_name":   "John Smith",
		"attending":         "yes",
		"attending_members": []string{"John Smith"},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	<-mailer.requests

	// A rename that does not echo the flag or the creation time.
	w = doAdmin(t, srv, http.MethodPut, "/admin/households/"+householdID.String(), map[string]any{
		"invitation_name": "Smith Clan",
		"members":         []string{"John Smith", "Jane Smith"},
		"email":           "smiths@example.com",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []*model.Household
	w = doAdmin(t, srv, http.MethodGet, "/admin/households", nil, &list)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, list, 1)
	assert.Equal(t, "Smith Clan", list[0].InvitationName)
	assert.True(t, list[0].HasResponded, "the response still exists, the flag must survive the edit")
	assert.NotNil(t, list[0].CreatedAt, "creation time must survive the edit")
}

func TestServer_AdminFormConfig(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var cfg model.FormConfig
	w := doAdmin(t, srv, http.MethodGet, "/admin/config", nil, &cfg)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, cfg.Shown("phone"))

	w = doAdmin(t, srv, http.MethodPut, "/admin/config", map[string]any{
		"fields": map[string]bool{"phone": false, "transportNeeded": true},
	}, &cfg)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, cfg.Shown("phone"))
	assert.True(t, cfg.Shown("transportNeeded"))
	assert.True(t, cfg.Shown("message"), "omitted fields keep their default")

	w = doAdmin(t, srv, http.MethodPut, "/admin/config", map[string]any{
		"fields": map[string]bool{"favoriteColor": true},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_AdminStatsAndResponses(t *testing.T) {
	srv, mailer, householdID := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/rsvp", map[string]any{
		"household_id":      householdID,
		"respondent_name":   "John Smith",
		"attending":         "yes",
		"attending_members": []string{"John Smith"},
		"meal_preference":   "Vegetarian",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	<-mailer.requests

	var stats struct {
		Households     int `json:"households"`
		Attending      int `json:"attending"`
		ExpectedGuests int `json:"expected_guests"`
	}
	w = doAdmin(t, srv, http.MethodGet, "/admin/stats", nil, &stats)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, stats.Households)
	assert.Equal(t, 1, stats.Attending)
	assert.Equal(t, 1, stats.ExpectedGuests)

	var responses []*model.RsvpResponse
	w = doAdmin(t, srv, http.MethodGet, "/admin/rsvps", nil, &responses)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, responses, 1)

	var detail struct {
		ID     uuid.UUID      `json:"id"`
		Fields map[string]any `json:"fields"`
	}
	w = doAdmin(t, srv, http.MethodGet, "/admin/rsvps/"+responses[0].ID.String(), nil, &detail)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, responses[0].ID, detail.ID)
	assert.Equal(t, "Vegetarian", detail.Fields["meal_preference"])
	assert.Equal(t, "John Smith", detail.Fields["attending_members.0"])

	w = doAdmin(t, srv, http.MethodDelete, "/admin/rsvps/"+responses[0].ID.String(), nil, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doAdmin(t, srv, http.MethodGet, "/admin/rsvps", nil, &responses)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, responses)
}

func TestServer_PublicFormPage(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Engagement Celebration")
	assert.Contains(t, w.Body.String(), "Marly &amp; Michael")
	assert.Contains(t, w.Body.String(), "(You)", "matched member is marked in the member list")
}

func TestServer_NoRoute(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PAGE_NOT_FOUND")
}
