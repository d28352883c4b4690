// Package extractor manages the external descriptor-extraction service.
// The service turns a face image into a fixed-length descriptor vector; this
// package never implements face detection itself, it only talks to the
// service and tracks whether its models are ready.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ErrNoFace is returned when the extractor finds no face in the image.
var ErrNoFace = errors.New("no face found in image")

// ErrNotReady is returned when extraction is requested before the extractor
// models finished loading.
var ErrNotReady = errors.New("extractor models are not loaded")

// State describes the extractor model lifecycle. It replaces the ambient
// "models loaded" boolean: the state object is owned by the process and
// injected into whatever needs it.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateFailed
)

// String returns the lowercase state name for logs and health payloads.
func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "uninitialized"
	}
}

// Client talks to the external extraction service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.RWMutex
	state   State
	lastErr error
}

// NewClient creates an extractor client. The URL may be empty, in which case
// the client stays uninitialized and extraction endpoints report that state.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LastError returns the error from the most recent failed load, if any.
func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Load asks the extraction service to warm its models. Loading is idempotent:
// a Ready extractor returns immediately, a concurrent load is reported as
// already in progress.
func (c *Client) Load(ctx context.Context) error {
	if c.baseURL == "" {
		return errors.New("extractor URL is not configured")
	}

	c.mu.Lock()
	switch c.state {
	case StateReady:
		c.mu.Unlock()
		return nil
	case StateLoading:
		c.mu.Unlock()
		return errors.New("model load already in progress")
	}
	c.state = StateLoading
	c.mu.Unlock()

	err := c.postLoad(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.lastErr = err
		return err
	}
	c.state = StateReady
	c.lastErr = nil
	return nil
}

func (c *Client) postLoad(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/load", nil)
	if err != nil {
		return fmt.Errorf("could not create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("could not reach extractor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extractor load failed with status %d", resp.StatusCode)
	}
	return nil
}

// Extract posts an image to the extraction service and returns the
// descriptor for the detected face.
func (c *Client) Extract(ctx context.Context, image []byte) ([]float64, error) {
	if c.State() != StateReady {
		return nil, ErrNotReady
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, ErrNoFace
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction failed with status %d", resp.StatusCode)
	}

	var result struct {
		Descriptor []float64 `json:"descriptor"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	if len(result.Descriptor) == 0 {
		return nil, ErrNoFace
	}
	return result.Descriptor, nil
}
