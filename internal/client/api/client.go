// Package api is the HTTP client for the SmartMail generation service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smartmail-backend/internal/email"
	"smartmail-backend/internal/generations"
	"smartmail-backend/internal/history"
	"smartmail-backend/internal/shared/telemetry"
)

// DefaultBaseURL points at a locally running cmd/api.
const DefaultBaseURL = "http://localhost:8080/api"

// Client talks to the generation and history endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client. A nil httpClient gets a 60s timeout client.
func New(baseURL string, httpClient *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

type generateBody struct {
	Text        string `json:"text"`
	Tone        string `json:"tone"`
	Mode        string `json:"mode"`
	SaveHistory bool   `json:"save_history"`
}

// envelope holds the fields shared by every response body.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

type listBody struct {
	Records []history.RecordDTO `json:"records"`
	Count   int                 `json:"count"`
}

type clearBody struct {
	Deleted int64 `json:"deleted"`
}

// Generate submits one request and returns the settled result.
func (c *Client) Generate(ctx context.Context, req email.Request) (email.Result, error) {
	body := generateBody{
		Text:        req.SourceText,
		Tone:        string(req.Tone),
		Mode:        string(req.Mode),
		SaveHistory: req.Persist,
	}
	var out generations.GenerateResponse
	if err := c.do(ctx, http.MethodPost, "/generate", body, &out); err != nil {
		return email.Result{}, err
	}
	if strings.TrimSpace(out.RewrittenText) == "" {
		return email.Result{}, &TransportError{Op: "POST /generate", Err: errMissingText}
	}

	ts, err := time.Parse(email.TimestampLayout, out.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}
	tone, mode := email.Tone(out.Tone), email.Mode(out.Mode)
	if tone == "" {
		tone = req.Tone
	}
	if mode == "" {
		mode = req.Mode
	}
	return email.Result{
		GeneratedText: out.RewrittenText,
		HTML:          out.HTML,
		Tone:          tone,
		Mode:          mode,
		Provider:      out.Provider,
		HistoryID:     out.HistoryID,
		Timestamp:     ts,
		Success:       true,
	}, nil
}

// ListHistory returns records newest first, filtered by query when non-empty.
func (c *Client) ListHistory(ctx context.Context, query string, limit int) ([]history.Record, error) {
	q := url.Values{}
	if query != "" {
		q.Set("q", query)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/history"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out listBody
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	records := make([]history.Record, 0, len(out.Records))
	for _, dto := range out.Records {
		records = append(records, history.FromDTO(dto))
	}
	return records, nil
}

// DeleteHistory removes one record. A missing record matches ErrNotFound.
func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/history/"+url.PathEscape(id), nil, nil)
}

// ClearHistory removes every record and returns how many were deleted.
func (c *Client) ClearHistory(ctx context.Context) (int64, error) {
	var out clearBody
	if err := c.do(ctx, http.MethodDelete, "/history", nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	op := method + " " + path
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := telemetry.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || (env.Success != nil && !*env.Success) {
		msg := env.Error
		if msg == "" {
			msg = "request failed"
		}
		return &ServiceError{Status: resp.StatusCode, Code: env.Code, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("malformed response: %w", err)}
		}
	}
	return nil
}
