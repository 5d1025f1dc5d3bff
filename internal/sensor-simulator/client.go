package sensor_simulator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
)

// DecisionClient asks the decision engine what to do with the pump.
type DecisionClient struct {
	endpoint   string
	http       *http.Client
	maxRetries uint64
}

func NewDecisionClient(baseURL string, timeout time.Duration, maxRetries uint64) *DecisionClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DecisionClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/predict",
		http:       &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}
}

type predictBody struct {
	model.SensorReading
	PlantType string `json:"plant_type,omitempty"`
}

// Decide posts one reading. A 400 is final; network errors and 5xx are retried with backoff.
func (c *DecisionClient) Decide(ctx context.Context, r model.SensorReading, plant string) (model.Decision, error) {
	payload, err := json.Marshal(predictBody{SensorReading: r, PlantType: plant})
	if err != nil {
		return model.Decision{}, fmt.Errorf("marshal reading: %w", err)
	}

	var out model.Decision
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, &out); err != nil {
				return backoff.Permanent(fmt.Errorf("decode decision: %w", err))
			}
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("decision engine HTTP %d", resp.StatusCode)
		default:
			var e struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(body, &e)
			if e.Error == "" {
				e.Error = strings.TrimSpace(string(body))
			}
			return backoff.Permanent(&RejectedError{Status: resp.StatusCode, Msg: e.Error})
		}
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return model.Decision{}, err
	}
	return out, nil
}

// RejectedError: the engine refused the reading (HTTP 4xx).
type RejectedError struct {
	Status int
	Msg    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("decision engine rejected reading (HTTP %d): %s", e.Status, e.Msg)
}

// IsRejected reports whether err is a 4xx answer from the engine.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}
