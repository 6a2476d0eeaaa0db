// Package backend talks to the interview API over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"anamnesa/internal/domain"
)

const (
	defaultStartPath  = "/api/interview/start"
	defaultStepPath   = "/api/interview/step"
	defaultFinishPath = "/api/interview/finish"
	defaultTimeout    = 60 * time.Second

	maxResponseBytes = 4 << 20
	requestIDHeader  = "X-Request-ID"
)

// Config locates the interview API.
type Config struct {
	BaseURL    string
	StartPath  string
	StepPath   string
	FinishPath string
	Timeout    time.Duration
}

// Client implements the interview protocol. One client carries one interview:
// the backend tracks progress in a session cookie kept in the client's jar.
type Client struct {
	cfg     Config
	http    *http.Client
	tracer  trace.Tracer
	schemas *schemaSet

	calls    metric.Int64Counter
	duration metric.Float64Histogram
}

func NewClient(cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base url is required")
	}
	if cfg.StartPath == "" {
		cfg.StartPath = defaultStartPath
	}
	if cfg.StepPath == "" {
		cfg.StepPath = defaultStepPath
	}
	if cfg.FinishPath == "" {
		cfg.FinishPath = defaultFinishPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}

	meter := otel.Meter("anamnesa/backend")
	calls, err := meter.Int64Counter("anamnesa.backend.calls",
		metric.WithDescription("Interview API calls by endpoint and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create call counter: %w", err)
	}
	duration, err := meter.Float64Histogram("anamnesa.backend.duration",
		metric.WithDescription("Interview API call duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: cfg.Timeout, Jar: jar},
		tracer:   otel.Tracer("anamnesa/backend"),
		schemas:  schemas,
		calls:    calls,
		duration: duration,
	}, nil
}

// post sends one request and returns the decoded, schema-checked JSON body.
func (c *Client) post(ctx context.Context, path string, body []byte, contentType string, schema *jsonschema.Schema) (map[string]any, error) {
	requestID := uuid.NewString()
	ctx, span := c.tracer.Start(ctx, "backend "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.route", path),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	logger := log.WithFields(log.Fields{"endpoint": path, "request_id": requestID})
	started := time.Now()

	doc, status, err := c.exchange(ctx, requestID, path, body, contentType, schema)
	elapsed := time.Since(started)
	span.SetAttributes(attribute.Int("http.status_code", status))
	outcome := attribute.String("outcome", string(domain.CodeOf(err)))
	if err == nil {
		outcome = attribute.String("outcome", "ok")
	}
	route := attribute.String("http.route", path)
	c.calls.Add(ctx, 1, metric.WithAttributes(route, outcome))
	c.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(route))
	logger = logger.WithFields(log.Fields{"status": status, "duration": elapsed.String()})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.WithError(err).Warn("backend call failed")
		return nil, err
	}
	logger.Info("backend call")
	return doc, nil
}

func (c *Client) exchange(ctx context.Context, requestID, path string, body []byte, contentType string, schema *jsonschema.Schema) (map[string]any, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: failed to read response: %w", domain.ErrNetwork, err)
	}

	var decoded any
	if err := decodeJSON(raw, &decoded); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %s returned status %d with a non-JSON body", domain.ErrProtocol, path, resp.StatusCode)
	}
	doc, ok := decoded.(map[string]any)
	if !ok {
		return nil, resp.StatusCode, fmt.Errorf("%w: %s returned a non-object body", domain.ErrProtocol, path)
	}

	if message, ok := doc["error"].(string); ok && strings.TrimSpace(message) != "" {
		return nil, resp.StatusCode, &domain.ServerError{Message: strings.TrimSpace(message)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("%w: %s returned status %d", domain.ErrProtocol, path, resp.StatusCode)
	}
	if err := schema.Validate(decoded); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %s: %w", domain.ErrProtocol, path, err)
	}
	return doc, resp.StatusCode, nil
}

func decodeJSON(raw []byte, out any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

// remarshal converts a validated document into its typed form.
func remarshal(doc map[string]any, out any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrProtocol, err)
	}
	return nil
}
