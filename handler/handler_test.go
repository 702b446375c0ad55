package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskflow/config"
	"taskflow/dao/query"
	"taskflow/response"
	"taskflow/service"
	"taskflow/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

type envelope struct {
	Code response.ErrorCode `json:"code"`
	Data json.RawMessage    `json:"data"`
	Msg  string             `json:"msg"`
}

func newServer(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := query.NewMemoryDB()
	require.NoError(t, err)
	cfg := config.Default()
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return NewRouter(cfg, service.New(db, cfg.Auth.BcryptCost), util.NewTokenManager("test-secret", 1))
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

type idOnly struct {
	ID uint `json:"id"`
}

func register(t *testing.T, router *gin.Engine, name string) (*client, uint) {
	t.Helper()
	c := &client{t: t, router: router}
	status, env := c.do(http.MethodPost, "/api/auth/register", gin.H{
		"name": name, "email": name + "@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, status, env.Msg)
	auth := decode[struct {
		Token string `json:"token"`
		User  idOnly `json:"user"`
	}](t, env)
	require.NotEmpty(t, auth.Token)
	c.token = auth.Token
	return c, auth.User.ID
}

func TestHealth(t *testing.T) {
	c := &client{t: t, router: newServer(t)}
	status, env := c.do(http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, response.OK, env.Code)
}

func TestAuthRequired(t *testing.T) {
	router := newServer(t)
	anon := &client{t: t, router: router}

	status, env := anon.do(http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.Unauthenticated, env.Code)

	anon.token = "garbage"
	status, env = anon.do(http.MethodGet, "/api/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.InvalidToken, env.Code)
}

func TestLogin(t *testing.T) {
	router := newServer(t)
	register(t, router, "alice")
	anon := &client{t: t, router: router}

	status, env := anon.do(http.MethodPost, "/api/auth/login", gin.H{"email": "alice@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, status)
	auth := decode[struct {
		Token string `json:"token"`
	}](t, env)
	anon.token = auth.Token
	status, env = anon.do(http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, status)
	me := decode[map[string]any](t, env)
	assert.Equal(t, "alice@example.com", me["email"])
	assert.NotContains(t, string(env.Data), "asswordHash")

	anon.token = ""
	status, env = anon.do(http.MethodPost, "/api/auth/login", gin.H{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, response.Unauthenticated, env.Code)
}

func TestRequestErrors(t *testing.T) {
	router := newServer(t)
	alice, _ := register(t, router, "alice")

	status, env := alice.do(http.MethodGet, "/api/projects/abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.InvalidRequest, env.Code)

	status, _ = alice.do(http.MethodPost, "/api/projects", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = alice.do(http.MethodPost, "/api/projects", gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.ValidationFailed, env.Code)

	status, env = alice.do(http.MethodGet, "/api/tasks?status=SOMEDAY", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.ValidationFailed, env.Code)
}

func TestBadFieldValuesFailValidation(t *testing.T) {
	router := newServer(t)
	alice, _ := register(t, router, "alice")
	status, env := alice.do(http.MethodPost, "/api/projects", gin.H{"name": "Roadmap"})
	require.Equal(t, http.StatusCreated, status, env.Msg)
	project := decode[idOnly](t, env)

	status, env = alice.do(http.MethodPost, "/api/tasks", gin.H{
		"title": "Write spec", "projectId": project.ID, "priority": "SOMEDAY",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.ValidationFailed, env.Code)
	assert.Contains(t, env.Msg, "URGENT")

	status, env = alice.do(http.MethodPost, "/api/tasks", gin.H{"title": "Write spec", "projectId": "first"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.ValidationFailed, env.Code)
	assert.Contains(t, env.Msg, "projectId")

	status, env = alice.do(http.MethodPost, fmt.Sprintf("/api/projects/%d/members", project.ID), gin.H{
		"email": "bob@example.com", "role": "SUPERUSER",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.ValidationFailed, env.Code)

	status, env = alice.do(http.MethodPost, "/api/tasks", "{not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, response.InvalidRequest, env.Code)
}

func TestRoadmapOverHTTP(t *testing.T) {
	router := newServer(t)
	a, aID := register(t, router, "a")
	b, bID := register(t, router, "b")
	outsider, _ := register(t, router, "eve")

	status, env := a.do(http.MethodPost, "/api/projects", gin.H{"name": "Roadmap"})
	require.Equal(t, http.StatusCreated, status, env.Msg)
	roadmap := decode[idOnly](t, env)
	projectPath := fmt.Sprintf("/api/projects/%d", roadmap.ID)

	status, env = a.do(http.MethodPost, projectPath+"/members", gin.H{"email": "b@example.com"})
	require.Equal(t, http.StatusCreated, status, env.Msg)
	member := decode[struct {
		Role string `json:"role"`
	}](t, env)
	assert.Equal(t, "MEMBER", member.Role)

	status, env = a.do(http.MethodPost, projectPath+"/members", gin.H{"email": "b@example.com"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, response.AlreadyMember, env.Code)

	status, env = outsider.do(http.MethodGet, projectPath, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, response.NotFound, env.Code)

	status, env = b.do(http.MethodPatch, projectPath, gin.H{"name": "Mine now"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, response.InsufficientPermissions, env.Code)

	status, env = b.do(http.MethodDelete, fmt.Sprintf("%s/members/%d", projectPath, aID), nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, env = a.do(http.MethodDelete, fmt.Sprintf("%s/members/%d", projectPath, aID), nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, response.CannotRemoveOwner, env.Code)

	status, env = b.do(http.MethodPost, "/api/tasks", gin.H{
		"title":        "Write spec",
		"projectId":    roadmap.ID,
		"assignedToId": aID,
		"priority":     "HIGH",
	})
	require.Equal(t, http.StatusCreated, status, env.Msg)
	task := decode[struct {
		ID       uint   `json:"id"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
	}](t, env)
	assert.Equal(t, "TODO", task.Status)
	assert.Equal(t, "HIGH", task.Priority)
	taskPath := fmt.Sprintf("/api/tasks/%d", task.ID)

	status, env = a.do(http.MethodPatch, taskPath, gin.H{"status": "DONE"})
	require.Equal(t, http.StatusOK, status, env.Msg)

	status, env = a.do(http.MethodPost, taskPath+"/comments", gin.H{"content": "shipped"})
	require.Equal(t, http.StatusCreated, status, env.Msg)

	status, env = a.do(http.MethodGet, fmt.Sprintf("/api/tasks/stats?projectId=%d", roadmap.ID), nil)
	require.Equal(t, http.StatusOK, status, env.Msg)
	stats := decode[service.TaskStats](t, env)
	assert.EqualValues(t, 1, stats.DoneTasks)
	assert.EqualValues(t, 1, stats.TotalTasks)
	assert.EqualValues(t, 0, stats.OverdueTasks)

	status, env = b.do(http.MethodGet, fmt.Sprintf("/api/tasks?projectId=%d&status=done", roadmap.ID), nil)
	require.Equal(t, http.StatusOK, status, env.Msg)
	listed := decode[[]struct {
		ID           uint `json:"id"`
		CommentCount int  `json:"commentCount"`
	}](t, env)
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].CommentCount)

	status, _ = b.do(http.MethodDelete, taskPath, nil)
	assert.Equal(t, http.StatusOK, status, "creator may delete")

	status, _ = a.do(http.MethodDelete, fmt.Sprintf("%s/members/%d", projectPath, bID), nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = a.do(http.MethodDelete, projectPath, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = a.do(http.MethodGet, projectPath, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestTagsAndSearch(t *testing.T) {
	router := newServer(t)
	alice, _ := register(t, router, "alice")
	register(t, router, "alina")

	status, env := alice.do(http.MethodPost, "/api/tags", gin.H{"name": "backend"})
	require.Equal(t, http.StatusCreated, status, env.Msg)
	tag := decode[struct {
		ID    uint   `json:"id"`
		Color string `json:"color"`
	}](t, env)
	assert.Equal(t, "#6B7280", tag.Color)

	status, env = alice.do(http.MethodPatch, fmt.Sprintf("/api/tags/%d", tag.ID), gin.H{"color": "#000000"})
	require.Equal(t, http.StatusOK, status, env.Msg)

	status, env = alice.do(http.MethodGet, "/api/tags", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]idOnly](t, env), 1)

	status, env = alice.do(http.MethodGet, "/api/users/search?query=ali", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]idOnly](t, env), 2)

	status, env = alice.do(http.MethodPatch, "/api/users/me", gin.H{"department": "Platform"})
	require.Equal(t, http.StatusOK, status, env.Msg)
	profile := decode[map[string]any](t, env)
	assert.Equal(t, "Platform", profile["department"])

	status, _ = alice.do(http.MethodDelete, fmt.Sprintf("/api/tags/%d", tag.ID), nil)
	assert.Equal(t, http.StatusOK, status)
}
