// Package feedback forwards user feedback to an external board.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"weddingplan/pkg/logger"
)

var (
	ErrNotConfigured = errors.New("feedback relay is not configured")
	ErrInvalid       = errors.New("invalid feedback")
	ErrRelayFailed   = errors.New("feedback relay failed")
)

type Category string

const (
	CategoryFeature     Category = "feature"
	CategoryBug         Category = "bug"
	CategoryImprovement Category = "improvement"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryFeature, CategoryBug, CategoryImprovement:
		return true
	}
	return false
}

type Feedback struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    Category `json:"category"`
	Fingerprint string   `json:"fingerprint"`
}

func (f Feedback) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if !f.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalid, f.Category)
	}
	return nil
}

type Relay struct {
	url       string
	projectID string
	client    *http.Client
}

// New returns a relay posting to baseURL. Either value empty leaves the
// relay unconfigured.
func New(baseURL, projectID string, timeout time.Duration) *Relay {
	return &Relay{
		url:       strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		client:    &http.Client{Timeout: timeout},
	}
}

func (r *Relay) Configured() bool {
	return r != nil && r.url != "" && r.projectID != ""
}

type payload struct {
	Feedback
	ProjectID string `json:"projectId"`
}

// Submit posts f and returns the board's JSON reply.
func (r *Relay) Submit(ctx context.Context, f Feedback) (json.RawMessage, error) {
	if !r.Configured() {
		return nil, ErrNotConfigured
	}
	f.Title = strings.TrimSpace(f.Title)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload{Feedback: f, ProjectID: r.projectID})
	if err != nil {
		return nil, fmt.Errorf("encode feedback: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/api/feedback", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Warn(ctx, "Feedback relay unreachable", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRelayFailed, err)
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read reply: %v", ErrRelayFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn(ctx, "Feedback relay rejected", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: upstream status %d", ErrRelayFailed, resp.StatusCode)
	}
	if !json.Valid(reply) {
		return json.RawMessage(`{}`), nil
	}
	return reply, nil
}

// Fingerprint derives an anonymous, stable submitter id from request headers.
func Fingerprint(userAgent, language string) string {
	h := fnv.New32a()
	h.Write([]byte(userAgent))
	h.Write([]byte{0})
	h.Write([]byte(language))
	return "fp_" + strconv.FormatUint(uint64(h.Sum32()), 36)
}
