package seedgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/ninebox/internal/domain/model"
)

const requestTimeout = 30 * time.Second

// Client submits generated rosters to a running review service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

type createSessionRequest struct {
	Subject   string            `json:"subject"`
	Source    sourcePayload     `json:"source"`
	Employees []employeePayload `json:"employees"`
}

type sourcePayload struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Sheet    string `json:"sheet"`
}

type employeePayload struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Performance string   `json:"performance"`
	Potential   string   `json:"potential"`
	Flags       []string `json:"flags"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
}

// CreateSession posts a generated roster as a new session for subject
// and returns the created session id.
func (c *Client) CreateSession(ctx context.Context, subject string, employees []model.Employee) (string, error) {
	payload := createSessionRequest{
		Subject: subject,
		Source: sourcePayload{
			Filename: "seedgen.xlsx",
			Path:     "synthetic://seedgen",
			Sheet:    "Roster",
		},
		Employees: make([]employeePayload, len(employees)),
	}
	for i, e := range employees {
		flags := make([]string, len(e.Flags))
		for j, f := range e.Flags {
			flags[j] = string(f)
		}
		payload.Employees[i] = employeePayload{
			ID:          e.ID,
			Name:        e.Name,
			Performance: string(e.Performance),
			Potential:   string(e.Potential),
			Flags:       flags,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal session request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post session: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("post session: status %d: %s", resp.StatusCode, data)
	}
	var created createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode session response: %w", err)
	}
	return created.SessionID, nil
}
