// Package hrapi is the client for the external HR service. Response shapes
// are normalized here so nothing past this package sees the difference
// between a bare list and a {"data": [...]} envelope.
package hrapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/logger"
	"github.com/okian/hireflow/pkg/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	// maxBody bounds how much of a response is read.
	maxBody = 4 << 20
)

// Client talks to the HR service.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        logger.Logger
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		log: logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// path joins escaped segments onto prefix.
func path(prefix string, segments ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// doRequest performs one call. Any transport error or non-2xx status comes
// back as an ErrRemoteFailure kind carrying the service's message.
func (c *Client) doRequest(ctx context.Context, op, method, p string, body any) ([]byte, error) {
	start := time.Now()
	raw, err := c.send(ctx, op, method, p, body)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.RecordRemoteCall(op, outcome, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		c.log.Warn(ctx, "hr service call failed", logger.String("op", op), logger.String("path", p), logger.Error(err))
		return nil, model.WrapKind(op, model.ErrRemoteFailure, err)
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, op, method, p string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	c.log.Debug(ctx, "hr service call", logger.String("op", op), logger.String("method", method),
		logger.String("path", p), logger.String("request_id", reqID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode, Message: serviceMessage(raw)}
	}
	return raw, nil
}

// serviceMessage extracts the human text from an error body: a message,
// error or detail field when the body is JSON, the trimmed body otherwise.
func serviceMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(raw, &body) == nil {
		for _, s := range []string{body.Message, body.Error, body.Detail} {
			if s != "" {
				return s
			}
		}
	}
	return strings.TrimSpace(string(raw))
}

// decodeList accepts `[...]`, `{"data": [...]}` and an empty or null body.
func decodeList[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	switch trimmed[0] {
	case '[':
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("failed to unmarshal list: %w", err)
		}
		return out, nil
	case '{':
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
		}
		if len(env.Data) == 0 {
			return []T{}, nil
		}
		if env.Data[0] != '[' {
			return nil, errors.New("data field is not a list")
		}
		return decodeList[T](env.Data)
	default:
		return nil, fmt.Errorf("unexpected response body %q", truncate(trimmed))
	}
}

// decodeObject accepts `{...}` and `{"data": {...}}`.
func decodeObject(raw []byte) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal object: %w", err)
	}
	if inner, ok := obj["data"].(map[string]any); ok && len(obj) == 1 {
		return inner, nil
	}
	return obj, nil
}

func truncate(b []byte) string {
	const limit = 64
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

func wrapDecode(op string, err error) error {
	return model.WrapKind(op, model.ErrRemoteFailure, err)
}
