// Package snow is the shared client for the ServiceNow Table API.
package snow

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

	"github.com/google/uuid"

	"servicenow-toolkit/internal/common/auth"
	"servicenow-toolkit/internal/common/logger"
	"servicenow-toolkit/internal/common/metrics"
)

// Record is one row of a Table API reply. Reference fields may arrive as
// objects when display values are requested, so values stay untyped.
type Record map[string]interface{}

// GetString returns the field as a string, unwrapping {value, display_value}
// reference objects.
func (r Record) GetString(field string) string {
	val, ok := r[field]
	if !ok || val == nil {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case map[string]interface{}:
		if inner, ok := v["value"].(string); ok {
			return inner
		}
		if inner, ok := v["display_value"].(string); ok {
			return inner
		}
	}
	return fmt.Sprintf("%v", val)
}

// GetDisplayValue returns the display form of a reference field, falling
// back to the raw value.
func (r Record) GetDisplayValue(field string) string {
	val, ok := r[field]
	if !ok || val == nil {
		return ""
	}
	if obj, ok := val.(map[string]interface{}); ok {
		if inner, ok := obj["display_value"].(string); ok {
			return inner
		}
	}
	return r.GetString(field)
}

// SysID returns the record's sys_id.
func (r Record) SysID() string {
	return r.GetString("sys_id")
}

// RecordQuery carries the sysparm parameters of a list call.
type RecordQuery struct {
	Query        string
	Fields       []string
	Limit        int
	Offset       int
	DisplayValue string // "", "true", "false" or "all"
}

// TransportError indicates the request never produced an application reply.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("servicenow transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError indicates a non-2xx application reply.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("servicenow api error (status %d): %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether the reply was a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Client issues requests against {instance}/api/now/table/{table}.
type Client struct {
	baseURL    string
	auth       auth.Provider
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(instanceURL, apiPath string, provider auth.Provider, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(instanceURL, "/") + apiPath + "/table",
		auth:       provider,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log,
	}
}

// GetRecords fetches records from a table.
func (c *Client) GetRecords(ctx context.Context, table string, query RecordQuery) ([]Record, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, table)
	if params := query.encode(); params != "" {
		reqURL += "?" + params
	}

	var result struct {
		Result []Record `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, table, reqURL, nil, &result); err != nil {
		return nil, err
	}
	return result.Result, nil
}

// GetRecord fetches a single record by sys_id.
func (c *Client) GetRecord(ctx context.Context, table, sysID string) (Record, error) {
	reqURL := fmt.Sprintf("%s/%s/%s", c.baseURL, table, url.PathEscape(sysID))

	var result struct {
		Result Record `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, table, reqURL, nil, &result); err != nil {
		return nil, err
	}
	return result.Result, nil
}

// CreateRecord inserts a record and returns the created row.
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]interface{}) (Record, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, table)

	var result struct {
		Result Record `json:"result"`
	}
	if err := c.do(ctx, http.MethodPost, table, reqURL, fields, &result); err != nil {
		return nil, err
	}
	return result.Result, nil
}

// UpdateRecord patches a record by sys_id and returns the updated row.
func (c *Client) UpdateRecord(ctx context.Context, table, sysID string, fields map[string]interface{}) (Record, error) {
	reqURL := fmt.Sprintf("%s/%s/%s", c.baseURL, table, url.PathEscape(sysID))

	var result struct {
		Result Record `json:"result"`
	}
	if err := c.do(ctx, http.MethodPatch, table, reqURL, fields, &result); err != nil {
		return nil, err
	}
	return result.Result, nil
}

// DeleteRecord removes a record by sys_id.
func (c *Client) DeleteRecord(ctx context.Context, table, sysID string) error {
	reqURL := fmt.Sprintf("%s/%s/%s", c.baseURL, table, url.PathEscape(sysID))
	return c.do(ctx, http.MethodDelete, table, reqURL, nil, nil)
}

func (c *Client) do(ctx context.Context, method, table, reqURL string, body interface{}, out interface{}) error {
	requestID := uuid.NewString()
	start := time.Now()

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.auth.GetHeaders() {
		req.Header.Set(key, value)
	}

	c.logger.Debug("servicenow request", map[string]interface{}{
		"request_id": requestID,
		"method":     method,
		"table":      table,
		"url":        reqURL,
	})

	resp, err := c.httpClient.Do(req)
	metrics.TableAPIRequestDuration.WithLabelValues(table, method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TableAPIRequests.WithLabelValues(table, method, "transport_error").Inc()
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.TableAPIRequests.WithLabelValues(table, method, "transport_error").Inc()
		return &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.TableAPIRequests.WithLabelValues(table, method, "api_error").Inc()
		c.logger.Debug("servicenow request failed", map[string]interface{}{
			"request_id": requestID,
			"status":     resp.StatusCode,
		})
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	metrics.TableAPIRequests.WithLabelValues(table, method, "success").Inc()

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func (q RecordQuery) encode() string {
	params := url.Values{}
	if q.Query != "" {
		params.Set("sysparm_query", q.Query)
	}
	if len(q.Fields) > 0 {
		params.Set("sysparm_fields", strings.Join(q.Fields, ","))
	}
	if q.Limit > 0 {
		params.Set("sysparm_limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("sysparm_offset", strconv.Itoa(q.Offset))
	}
	if q.DisplayValue != "" {
		params.Set("sysparm_display_value", q.DisplayValue)
	}
	return params.Encode()
}
