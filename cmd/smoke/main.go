// Drives a running taskflow server through register, project creation and stats.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"taskflow/logutils"

	"github.com/google/uuid"
)

type envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data"`
	Msg  string          `json:"msg"`
}

type smokeClient struct {
	http    http.Client
	baseurl string
	token   string
}

func (s *smokeClient) call(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseurl+path, reader)
	if err != nil {
		return fmt.Errorf("can't create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s %s: status %d code %d: %s", method, path, resp.StatusCode, env.Code, env.Msg)
	}
	if out != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func main() {
	baseurl := flag.String("url", "http://localhost:7320/api", "base URL of the taskflow API")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s := &smokeClient{http: http.Client{Timeout: 10 * time.Second}, baseurl: *baseurl}
	if err := run(ctx, s); err != nil {
		logutils.Log.Fatal(err)
	}
	logutils.Log.Info("smoke run passed")
}

func run(ctx context.Context, s *smokeClient) error {
	if err := s.call(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		return err
	}

	email := fmt.Sprintf("smoke-%s@example.com", uuid.NewString())
	var auth struct {
		Token string `json:"token"`
	}
	if err := s.call(ctx, http.MethodPost, "/auth/register", map[string]string{
		"name": "Smoke Test", "email": email, "password": "smoke-secret",
	}, &auth); err != nil {
		return err
	}
	s.token = auth.Token

	var project struct {
		ID uint `json:"id"`
	}
	if err := s.call(ctx, http.MethodPost, "/projects", map[string]string{"name": "Smoke"}, &project); err != nil {
		return err
	}
	if err := s.call(ctx, http.MethodPost, "/tasks", map[string]any{
		"title": "check the pipes", "projectId": project.ID, "priority": "HIGH",
	}, nil); err != nil {
		return err
	}

	var stats map[string]int64
	if err := s.call(ctx, http.MethodGet, fmt.Sprintf("/tasks/stats?projectId=%d", project.ID), nil, &stats); err != nil {
		return err
	}
	logutils.Log.WithFields(logutils.Fields{"email": email, "project": project.ID, "stats": stats}).Info("stats")
	if stats["totalTasks"] != 1 {
		return fmt.Errorf("expected 1 task, got %d", stats["totalTasks"])
	}
	return s.call(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", project.ID), nil, nil)
}
