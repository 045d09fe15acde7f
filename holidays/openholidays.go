package holidays

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pochivni/planner/calendar"
)

const (
	DefaultAPIURL      = "https://openholidaysapi.org"
	DefaultHTTPTimeout = 10 * time.Second
	DefaultRetries     = 3
	DefaultRetryDelay  = time.Second

	countryCode   = "BG"
	preferredLang = "BG"
)

// OpenHolidaysConfig configures the OpenHolidays client. Zero fields take defaults.
type OpenHolidaysConfig struct {
	BaseURL    string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// OpenHolidays implements Source against openholidaysapi.org.
type OpenHolidays struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewOpenHolidays creates a client.
func NewOpenHolidays(cfg OpenHolidaysConfig, logger *zap.Logger) *OpenHolidays {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenHolidays{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}
}

// =============================================================================
// WIRE FORMAT
// =============================================================================

type localizedText struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

type apiHoliday struct {
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Type      string          `json:"type"`
	Name      []localizedText `json:"name"`
	Comment   []localizedText `json:"comment"`
}

// pick returns the text in lang, else the first entry.
func pick(texts []localizedText, lang string) string {
	for _, t := range texts {
		if strings.EqualFold(t.Language, lang) {
			return t.Text
		}
	}
	if len(texts) > 0 {
		return texts[0].Text
	}
	return ""
}

// pickExact returns the text in lang only.
func pickExact(texts []localizedText, lang string) string {
	for _, t := range texts {
		if strings.EqualFold(t.Language, lang) {
			return t.Text
		}
	}
	return ""
}

// normalizeType maps provider types onto HolidayType. Unknown is public.
func normalizeType(t string) calendar.HolidayType {
	switch strings.ToLower(t) {
	case "national":
		return calendar.NationalHoliday
	case "optional", "observance", "bank":
		return calendar.Observance
	default:
		return calendar.PublicHoliday
	}
}

// =============================================================================
// SOURCE
// =============================================================================

// Holidays fetches the public holidays of year. Multi-day entries are expanded per day.
func (c *OpenHolidays) Holidays(ctx context.Context, year int) ([]calendar.Holiday, error) {
	raw, err := c.fetch(ctx, "PublicHolidays", year)
	if err != nil {
		return nil, err
	}

	var out []calendar.Holiday
	for _, h := range raw {
		start, end := calendar.Parse(h.StartDate), calendar.Parse(h.EndDate)
		if !end.IsValid() {
			end = start
		}
		r := calendar.Between(start, end)
		if !r.IsValid() {
			c.logger.Debug("Skipping holiday with invalid date",
				zap.String("startDate", h.StartDate))
			continue
		}
		name := pick(h.Name, preferredLang)
		for _, d := range r.Days() {
			out = append(out, calendar.Holiday{Date: d, Name: name, Type: normalizeType(h.Type)})
		}
	}
	return out, nil
}

// SchoolHolidays fetches the raw school breaks of year. The grade level is the
// Bulgarian comment of the entry.
func (c *OpenHolidays) SchoolHolidays(ctx context.Context, year int) ([]calendar.SchoolHoliday, error) {
	raw, err := c.fetch(ctx, "SchoolHolidays", year)
	if err != nil {
		return nil, err
	}

	out := make([]calendar.SchoolHoliday, 0, len(raw))
	for _, h := range raw {
		out = append(out, calendar.SchoolHoliday{
			Name:       pick(h.Name, preferredLang),
			StartDate:  calendar.Parse(h.StartDate),
			EndDate:    calendar.Parse(h.EndDate),
			Type:       calendar.SchoolType,
			GradeLevel: pickExact(h.Comment, preferredLang),
		})
	}
	return out, nil
}

func (c *OpenHolidays) endpoint(path string, year int) string {
	q := url.Values{}
	q.Set("countryIsoCode", countryCode)
	q.Set("validFrom", fmt.Sprintf("%04d-01-01", year))
	q.Set("validTo", fmt.Sprintf("%04d-12-31", year))
	return c.baseURL + "/" + path + "?" + q.Encode()
}

func (c *OpenHolidays) fetch(ctx context.Context, path string, year int) ([]apiHoliday, error) {
	endpoint := c.endpoint(path, year)

	c.logger.Debug("Fetching holidays from OpenHolidays",
		zap.String("url", endpoint),
		zap.Int("year", year))

	resp, err := c.getWithRetry(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var raw []apiHoliday
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse holidays: %w", err)
	}
	return raw, nil
}

// =============================================================================
// RETRY
// =============================================================================

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// getWithRetry retries network errors and 429/503/504 with delay base*2^attempt.
// The last response is returned as-is, even when it is not a success.
func (c *OpenHolidays) getWithRetry(ctx context.Context, endpoint string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case retryableStatus(resp.StatusCode) && attempt < c.retries:
			resp.Body.Close()
			lastErr = &StatusError{URL: endpoint, StatusCode: resp.StatusCode}
		default:
			return resp, nil
		}

		if attempt == c.retries {
			break
		}
		delay := c.retryDelay * time.Duration(1<<attempt)
		c.logger.Warn("Holiday request failed, retrying",
			zap.String("url", endpoint),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}
