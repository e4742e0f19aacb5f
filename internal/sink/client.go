package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/telhawk-systems/logrelay/internal/metrics"
	"github.com/telhawk-systems/logrelay/internal/models"
)

// Config locates the destination table within the warehouse.
type Config struct {
	BaseURL string
	Project string
	Dataset string
	Table   string
}

// Client submits rows to the warehouse streaming-insert endpoint. One
// outbound call per Insert, no retries.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config, timeout time.Duration) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type insertAllRequest struct {
	Rows []insertRow `json:"rows"`
}

type insertRow struct {
	JSON     map[string]any `json:"json"`
	InsertID string         `json:"insertId"`
}

type insertAllResponse struct {
	InsertErrors []struct {
		Index  int `json:"index"`
		Errors []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"insertErrors"`
}

// RejectedError reports an insert the warehouse did not accept: either a
// non-2xx response or a 2xx body carrying per-row insert errors.
type RejectedError struct {
	StatusCode int
	Reasons    []string
}

func (e *RejectedError) Error() string {
	if len(e.Reasons) > 0 {
		return fmt.Sprintf("insert rejected (status %d): %s", e.StatusCode, strings.Join(e.Reasons, "; "))
	}
	return fmt.Sprintf("insert rejected with status %d", e.StatusCode)
}

// Insert submits record as a single-row batch authenticated with bearer.
// The insert ID lets the warehouse drop repeated deliveries of the same row.
func (c *Client) Insert(ctx context.Context, record models.InsertRecord, bearer string) error {
	reqBody := insertAllRequest{
		Rows: []insertRow{
			{JSON: record.Row, InsertID: record.InsertID},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal insert request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.insertURL(), bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build insert request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+bearer)

	start := time.Now()
	resp, err := c.httpClient.Do(request)
	metrics.InsertDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.InsertErrors.Inc()
		return fmt.Errorf("send insert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.InsertErrors.Inc()
		return &RejectedError{StatusCode: resp.StatusCode}
	}

	var result insertAllResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.InsertErrors.Inc()
		return fmt.Errorf("decode insert response: %w", err)
	}

	if len(result.InsertErrors) > 0 {
		var reasons []string
		for _, rowErr := range result.InsertErrors {
			for _, detail := range rowErr.Errors {
				reasons = append(reasons, detail.Reason)
			}
		}
		metrics.InsertErrors.Inc()
		return &RejectedError{StatusCode: resp.StatusCode, Reasons: reasons}
	}

	return nil
}

func (c *Client) insertURL() string {
	return fmt.Sprintf("%s/projects/%s/datasets/%s/tables/%s/insertAll",
		strings.TrimRight(c.config.BaseURL, "/"), c.config.Project, c.config.Dataset, c.config.Table)
}
