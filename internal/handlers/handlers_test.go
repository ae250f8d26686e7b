// handlers_test.go
//
// Matching data service for founders and investors
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of napkins.
// napkins is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// napkins is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with napkins.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/napkins/internal/auth"
	"github.com/localnerve/napkins/internal/config"
	"github.com/localnerve/napkins/internal/middleware"
	"github.com/localnerve/napkins/internal/models"
	"github.com/localnerve/napkins/internal/services"
	"github.com/localnerve/napkins/internal/testutil"
	"github.com/localnerve/napkins/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type apiClient struct {
	t        *testing.T
	app      *fiber.App
	verifier *auth.TokenVerifier
}

func newAPI(t *testing.T, db *gorm.DB) *apiClient {
	verifier := auth.NewTokenVerifier(testSecret)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	api := app.Group("/api", middleware.Authenticate(verifier, nil))
	Routes(api, db, nil)
	app.Use(NotFound)
	return &apiClient{t: t, app: app, verifier: verifier}
}

// do sends a request as userID. An empty userID sends no credentials.
func (a *apiClient) do(method, path, userID string, body interface{}) *http.Response {
	a.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		token, err := a.verifier.Issue(userID, time.Hour)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestUnauthenticated(t *testing.T) {
	api := newAPI(t, testutil.NewTestDB(t))

	resp := api.do("GET", "/api/ideas", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var body utils.ErrorResponseStruct
	decode(t, resp, &body)
	assert.Equal(t, "data.authentication.missing", body.Type)
	assert.False(t, body.Ok)
}

func TestNoProfileIsForbidden(t *testing.T) {
	api := newAPI(t, testutil.NewTestDB(t))

	resp := api.do("POST", "/api/ideas", "stranger", IdeaInput{Text: "ride share for dogs"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = api.do("GET", "/api/views/connections", "stranger", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// identity is resolved before the body is looked at
	req := httptest.NewRequest("POST", "/api/connections/1/request", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	token, err := api.verifier.Issue("stranger", time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = api.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestIdeaRoutes(t *testing.T) {
	db := testutil.NewTestDB(t)
	api := newAPI(t, db)
	founder := testutil.Founder(t, db, "ada")
	investor := testutil.Investor(t, db, "vic")

	resp := api.do("POST", "/api/ideas", founder.ID, IdeaInput{Text: "  solar kettles  "})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var idea models.Idea
	decode(t, resp, &idea)
	assert.Equal(t, "solar kettles", idea.Text)
	assert.Equal(t, founder.ID, idea.OwnerID)

	resp = api.do("POST", "/api/ideas", investor.ID, IdeaInput{Text: "not mine to pitch"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = api.do("POST", "/api/ideas", founder.ID, IdeaInput{Text: ""})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	path := fmt.Sprintf("/api/ideas/%d", idea.ID)
	resp = api.do("PATCH", path, founder.ID, IdeaInput{Text: "wind kettles"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &idea)
	assert.Equal(t, "wind kettles", idea.Text)

	other := testutil.Founder(t, db, "bob")
	resp = api.do("PATCH", path, other.ID, IdeaInput{Text: "stolen"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = api.do("PATCH", "/api/ideas/zero", founder.ID, IdeaInput{Text: "x"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	for i := 0; i < 2; i++ {
		resp = api.do("DELETE", path, founder.ID, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		decode(t, resp, &idea)
		assert.True(t, idea.Deleted)
	}

	var ideas []models.Idea
	decode(t, api.do("GET", "/api/ideas", investor.ID, nil), &ideas)
	assert.Empty(t, ideas)

	decode(t, api.do("GET", "/api/ideas/mine", founder.ID, nil), &ideas)
	assert.Empty(t, ideas)

	decode(t, api.do("GET", "/api/ideas/mine?includeDeleted=true", founder.ID, nil), &ideas)
	require.Len(t, ideas, 1)
	assert.Equal(t, idea.ID, ideas[0].ID)
}

func TestProfileRoutes(t *testing.T) {
	db := testutil.NewTestDB(t)
	api := newAPI(t, db)

	resp := api.do("GET", "/api/profiles/me", "newcomer", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	input := ProfileInput{Role: "investor", Name: "Vera", Link: "https://vera.vc"}
	resp = api.do("PUT", "/api/profiles/me", "newcomer", input)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "investors need a photo")

	resp = api.do("PUT", "/api/profiles/me", "newcomer", ProfileInput{Role: "angel", Name: "Vera", Link: "https://vera.vc"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	input.Role = "founder"
	resp = api.do("PUT", "/api/profiles/me", "newcomer", input)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var profile models.Profile
	decode(t, resp, &profile)
	assert.Equal(t, "newcomer", profile.ID)
	assert.Equal(t, models.RoleFounder, profile.Role)

	decode(t, api.do("GET", "/api/profiles/me", "newcomer", nil), &profile)
	assert.Equal(t, "Vera", profile.Name)

	var profiles []models.Profile
	decode(t, api.do("GET", "/api/profiles?role=founder", "newcomer", nil), &profiles)
	require.Len(t, profiles, 1)
	assert.Equal(t, "newcomer", profiles[0].ID)

	decode(t, api.do("GET", "/api/profiles?role=investor", "newcomer", nil), &profiles)
	assert.Empty(t, profiles)

	resp = api.do("GET", "/api/profiles?role=", "newcomer", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do("GET", "/api/profiles/nobody", "newcomer", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestConnectionFlow(t *testing.T) {
	db := testutil.NewTestDB(t)
	api := newAPI(t, db)
	founder := testutil.Founder(t, db, "ada")
	investor := testutil.Investor(t, db, "vic")
	idea := testutil.Idea(t, db, founder, "solar kettles")

	// ideaId may arrive as a numeric string
	body := map[string]string{"ideaId": fmt.Sprint(idea.ID)}
	resp := api.do("POST", "/api/connections", investor.ID, body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var conn models.Connection
	decode(t, resp, &conn)
	assert.Equal(t, models.StatusCurious, conn.Status)

	base := fmt.Sprintf("/api/connections/%d", conn.ID)

	resp = api.do("POST", base+"/accept", founder.ID, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp = api.do("POST", base+"/reciprocate", investor.ID, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = api.do("POST", base+"/reciprocate", founder.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &conn)
	assert.Equal(t, models.StatusPending, conn.Status)

	resp = api.do("POST", base+"/request", investor.ID, RequestInput{Message: "   "})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do("POST", base+"/request", investor.ID, RequestInput{Message: "coffee next week?"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &conn)
	assert.Equal(t, models.StatusRequested, conn.Status)

	var requests []services.ConnectionView
	decode(t, api.do("GET", "/api/views/requests", founder.ID, nil), &requests)
	require.Len(t, requests, 1)
	require.Len(t, requests[0].Messages, 1)
	assert.Equal(t, "coffee next week?", requests[0].Messages[0].Content)
	assert.True(t, requests[0].AwaitingMe)

	resp = api.do("POST", base+"/accept", founder.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &conn)
	assert.Equal(t, models.StatusConnected, conn.Status)

	resp = api.do("POST", base+"/messages", founder.ID, MessageInput{Content: "tuesday works"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var reply models.Message
	decode(t, resp, &reply)
	assert.Equal(t, models.MessageTypeText, reply.MessageType)

	var msgs []models.Message
	decode(t, api.do("GET", base+"/messages", investor.ID, nil), &msgs)
	require.Len(t, msgs, 2)

	// a single id is accepted as well as an array
	resp = api.do("POST", "/api/messages/read", investor.ID, map[string]uint64{"messageIds": reply.ID})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var read []models.Message
	decode(t, resp, &read)
	require.Len(t, read, 1)
	assert.NotNil(t, read[0].ReadAt)

	var detail services.ConnectionDetail
	decode(t, api.do("GET", base, founder.ID, nil), &detail)
	assert.Equal(t, models.StatusConnected, detail.Status)
	require.NotNil(t, detail.Idea)
	assert.Equal(t, idea.ID, detail.Idea.ID)

	outsider := testutil.Investor(t, db, "eve")
	resp = api.do("GET", base, outsider.ID, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = api.do("DELETE", base, investor.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var removed utils.RemovedResponseStruct
	decode(t, resp, &removed)
	assert.Equal(t, conn.ID, removed.Removed)

	resp = api.do("GET", base, founder.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestExpressInterestValidation(t *testing.T) {
	db := testutil.NewTestDB(t)
	api := newAPI(t, db)
	investor := testutil.Investor(t, db, "vic")

	resp := api.do("POST", "/api/connections", investor.ID, map[string]interface{}{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do("POST", "/api/connections", investor.ID, map[string]interface{}{"ideaId": 999})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPassAndUnpass(t *testing.T) {
	db := testutil.NewTestDB(t)
	api := newAPI(t, db)
	founder := testutil.Founder(t, db, "ada")
	investor := testutil.Investor(t, db, "vic")
	idea := testutil.Idea(t, db, founder, "solar kettles")

	var feed []services.IdeaCard
	decode(t, api.do("GET", "/api/views/feed", investor.ID, nil), &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, founder.ID, feed[0].Founder.ID)

	resp := api.do("POST", fmt.Sprintf("/api/ideas/%d/pass", idea.ID), investor.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var conn models.Connection
	decode(t, resp, &conn)
	assert.Equal(t, models.StatusBlocked, conn.Status)

	decode(t, api.do("GET", "/api/views/feed", investor.ID, nil), &feed)
	assert.Empty(t, feed)

	var passed []services.ConnectionView
	decode(t, api.do("GET", "/api/views/passed", investor.ID, nil), &passed)
	require.Len(t, passed, 1)

	resp = api.do("POST", fmt.Sprintf("/api/connections/%d/unpass", conn.ID), founder.ID, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = api.do("POST", fmt.Sprintf("/api/connections/%d/unpass", conn.ID), investor.ID, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	decode(t, api.do("GET", "/api/views/feed", investor.ID, nil), &feed)
	assert.Len(t, feed, 1)
}

func TestFounderViews(t *testing.T) {
	db := testutil.NewTestDB(t)
	api := newAPI(t, db)
	founder := testutil.Founder(t, db, "ada")
	investor := testutil.Investor(t, db, "vic")
	first := testutil.Idea(t, db, founder, "solar kettles")
	second := testutil.Idea(t, db, founder, "wind kettles")
	testutil.Connection(t, db, investor, first, models.StatusCurious)
	testutil.Connection(t, db, investor, second, models.StatusPending)

	var interested []services.ConnectionView
	decode(t, api.do("GET", "/api/views/interested", founder.ID, nil), &interested)
	require.Len(t, interested, 1)
	assert.Equal(t, first.ID, interested[0].IdeaID)
	assert.True(t, interested[0].AwaitingMe)

	var likes []services.InvestorLikes
	decode(t, api.do("GET", "/api/views/investors", founder.ID, nil), &likes)
	require.Len(t, likes, 1)
	assert.Equal(t, investor.ID, likes[0].Investor.ID)
	assert.Len(t, likes[0].Ideas, 1)

	var conns []services.ConnectionView
	decode(t, api.do("GET", "/api/views/connections", founder.ID, nil), &conns)
	assert.Len(t, conns, 2)

	decode(t, api.do("GET", "/api/views/connections?role=investor", founder.ID, nil), &conns)
	assert.Empty(t, conns)

	resp := api.do("GET", "/api/views/connections?role=admin", founder.ID, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	decode(t, api.do("GET", "/api/views/connections?status=pending", founder.ID, nil), &conns)
	require.Len(t, conns, 1)
	assert.Equal(t, second.ID, conns[0].IdeaID)

	resp = api.do("GET", "/api/views/connections?status=disconnected", founder.ID, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = api.do("GET", "/api/views/feed", founder.ID, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var liked []services.ConnectionView
	decode(t, api.do("GET", "/api/views/liked", investor.ID, nil), &liked)
	assert.Len(t, liked, 2)
}

func TestNotFoundRoute(t *testing.T) {
	api := newAPI(t, testutil.NewTestDB(t))

	resp, err := api.app.Test(httptest.NewRequest("GET", "/nowhere", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	db := testutil.NewTestDB(t)
	h := &HealthHandler{DB: db, Config: &config.Config{DBType: "sqlite-pure", DBDatabase: "file::memory:"}}
	app := fiber.New()
	app.Get("/healthz", h.Health)

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result services.HealthCheckResult
	decode(t, resp, &result)
	assert.True(t, result.Healthy())
	assert.Equal(t, "ok", result.Database)
}
