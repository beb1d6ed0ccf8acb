package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPStoreConfig configures the HTTP content store client.
type HTTPStoreConfig struct {
	// BaseURL is the content store root, e.g. "https://content.internal".
	BaseURL string

	// APIKey is sent as a bearer token on every request.
	APIKey string

	// Timeout bounds each request. Zero selects a 10s default.
	Timeout time.Duration
}

// HTTPStore is the HTTP implementation of Store.
type HTTPStore struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPStore creates an HTTP content store client.
func NewHTTPStore(cfg HTTPStoreConfig) (*HTTPStore, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("content store base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// GetBookMetadata implements Store.
func (s *HTTPStore) GetBookMetadata(ctx context.Context, bookID int64, moduleIDs []int64) (*BookMetadata, error) {
	path := fmt.Sprintf("/v1/books/%d/metadata", bookID)
	if len(moduleIDs) > 0 {
		parts := make([]string, len(moduleIDs))
		for i, id := range moduleIDs {
			parts[i] = strconv.FormatInt(id, 10)
		}
		path += "?modules=" + url.QueryEscape(strings.Join(parts, ","))
	}

	var meta BookMetadata
	if err := s.getJSON(ctx, path, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// GetModuleVocabulary implements Store.
func (s *HTTPStore) GetModuleVocabulary(ctx context.Context, bookID, moduleID int64) ([]string, error) {
	var payload struct {
		Words []string `json:"words"`
	}
	path := fmt.Sprintf("/v1/books/%d/modules/%d/vocabulary", bookID, moduleID)
	if err := s.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Words, nil
}

// GetModuleGrammar implements Store.
func (s *HTTPStore) GetModuleGrammar(ctx context.Context, bookID, moduleID int64) ([]string, error) {
	var payload struct {
		Points []string `json:"points"`
	}
	path := fmt.Sprintf("/v1/books/%d/modules/%d/grammar", bookID, moduleID)
	if err := s.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Points, nil
}

func (s *HTTPStore) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building content store request: %w", err)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("content store request: %w", err)
		}
		return fmt.Errorf("content store request: %v: %w", err, ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return s.statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading content store response: %v: %w", err, ErrUnavailable)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding content store response: %v: %w", err, ErrUnavailable)
	}
	return nil
}

func (s *HTTPStore) statusError(resp *http.Response) error {
	// Body is best-effort detail only; the status code drives classification.
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("content store status %d: %w", resp.StatusCode, ErrNotFound)
	case http.StatusConflict, http.StatusLocked:
		return fmt.Errorf("content store status %d: %w", resp.StatusCode, ErrNotReady)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("content store status %d: %w", resp.StatusCode, ErrUnauthorized)
	default:
		return fmt.Errorf("content store status %d: %s: %w",
			resp.StatusCode, strings.TrimSpace(string(detail)), ErrUnavailable)
	}
}
