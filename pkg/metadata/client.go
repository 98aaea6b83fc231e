package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	sferrors "github.com/starsandeep/sfsync/pkg/errors"
	"github.com/starsandeep/sfsync/pkg/fields"
	"github.com/starsandeep/sfsync/pkg/metrics"
	"github.com/starsandeep/sfsync/pkg/models"
	"github.com/starsandeep/sfsync/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultTimeout bounds every metadata API call
	DefaultTimeout = 15 * time.Second

	// MaxResponseSize is the maximum response body size (10MB)
	MaxResponseSize = 10 * 1024 * 1024
)

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         "http://localhost:4000/api",
		Timeout:         DefaultTimeout,
		MaxIdleConns:    100,
		IdleConnTimeout: 90 * time.Second,
	}
}

// Client calls the metadata API over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
	logger  ectologger.Logger
}

func NewClient(cfg Config, logger ectologger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:    cfg.MaxIdleConns,
				IdleConnTimeout: cfg.IdleConnTimeout,
			},
		},
		logger: logger,
	}
}

// GetFieldMapping fetches the suggested mapping for an object.
func (c *Client) GetFieldMapping(ctx context.Context, objectName string) ([]models.FieldMappingEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "metadata.Client.GetFieldMapping", attribute.String("object", objectName))
	defer span.End()

	if strings.TrimSpace(objectName) == "" {
		return nil, sferrors.NewValidationError("object name is required").AddCheck("field_mapping")
	}

	var resp models.FieldMappingResponse
	if err := c.getJSON(ctx, kindFieldMapping, "/field-mapping/"+url.PathEscape(objectName), nil, &resp); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if resp.FieldMapping == nil {
		resp.FieldMapping = []models.FieldMappingEntry{}
	}

	span.SetAttributes(attribute.Int("entries", len(resp.FieldMapping)))
	return resp.FieldMapping, nil
}

// GetObjectMetadata fetches the field schema of one side's object.
func (c *Client) GetObjectMetadata(ctx context.Context, objectName string, side fields.Side) (*fields.Object, error) {
	ctx, span := tracing.StartSpan(ctx, "metadata.Client.GetObjectMetadata",
		attribute.String("object", objectName), attribute.String("side", string(side)))
	defer span.End()

	if strings.TrimSpace(objectName) == "" {
		return nil, sferrors.NewValidationError("object name is required").AddCheck("object_metadata")
	}

	query := url.Values{}
	query.Set("side", string(side))

	var object fields.Object
	path := fmt.Sprintf("/objects/%s/metadata", url.PathEscape(objectName))
	if err := c.getJSON(ctx, kindObjectMetadata, path, query, &object); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	if object.ObjectName == "" {
		object.ObjectName = objectName
	}
	object.Normalize()

	return &object, nil
}

func (c *Client) getJSON(ctx context.Context, kind, path string, query url.Values, dest any) (err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordMetadataFetch(kind, fetchOutcome(err), time.Since(start).Seconds())
	}()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warnf("metadata request failed: GET %s", endpoint)
		return fmt.Errorf("metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.ContentLength > MaxResponseSize {
		return fmt.Errorf("response too large: %d bytes (max %d)", resp.ContentLength, MaxResponseSize)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxResponseSize {
		return fmt.Errorf("response body too large: %d bytes (max %d)", len(body), MaxResponseSize)
	}

	c.logger.WithContext(ctx).Debugf("metadata GET %s -> %d (%s)", endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httperror.NewHTTPErrorf(http.StatusBadGateway, "metadata API returned %d for %s", resp.StatusCode, path)
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode metadata response: %w", err)
	}
	return nil
}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
