package decision_engine

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

	"github.com/LeonardoBeccarini/pump_scheduler/internal/model"
)

const defaultOWMBaseURL = "https://api.openweathermap.org"

type owmSample struct {
	Dt      int64 `json:"dt"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

type owmForecastResp struct {
	List []owmSample `json:"list"`
}

// Forecaster returns the short-horizon forecast (3h buckets) for a location.
type Forecaster interface {
	FetchForecast(ctx context.Context, location string) ([]model.ForecastSample, error)
}

// OWMClient talks to the OpenWeather 5 day / 3 hour forecast API.
type OWMClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// Verifica a compile-time che *OWMClient implementi Forecaster
var _ Forecaster = (*OWMClient)(nil)

func NewOWMClient(key, baseURL string, timeout time.Duration) *OWMClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultOWMBaseURL
	}
	return &OWMClient{apiKey: key, baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *OWMClient) FetchForecast(ctx context.Context, location string) ([]model.ForecastSample, error) {
	if c.apiKey == "" {
		return nil, errors.New("owm: missing api key")
	}
	q := url.Values{}
	q.Set("q", location)
	q.Set("appid", c.apiKey)
	q.Set("units", "metric")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/data/2.5/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("owm: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("owm: request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("owm status %d: %s", resp.StatusCode, string(b))
	}
	var out owmForecastResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("owm: decode: %w", err)
	}
	if len(out.List) == 0 {
		return nil, errors.New("owm: no forecast data")
	}

	samples := make([]model.ForecastSample, 0, len(out.List))
	for _, s := range out.List {
		// condition vuota se manca "weather": conta solo se cade nell'orizzonte
		fs := model.ForecastSample{Time: time.Unix(s.Dt, 0).UTC()}
		if len(s.Weather) > 0 {
			fs.Condition = s.Weather[0].Main
		}
		samples = append(samples, fs)
	}
	return samples, nil
}

// RainExpected reports whether any of the first horizon samples is rain.
// Samples are read in order: the first rain wins, a sample without a condition
// met before any rain makes the forecast unusable. Samples past the horizon are ignored.
func RainExpected(samples []model.ForecastSample, horizon int) (bool, error) {
	if horizon <= 0 {
		return false, nil
	}
	if horizon > len(samples) {
		horizon = len(samples)
	}
	for i, s := range samples[:horizon] {
		switch s.Condition {
		case model.ConditionRain:
			return true, nil
		case "":
			return false, fmt.Errorf("owm: sample %d has no weather entry", i)
		}
	}
	return false, nil
}
