package guardian

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

	"github.com/kitbuilder587/newsrelay/internal/domain"
)

const (
	DefaultBaseURL = "https://content.guardianapis.com"
	DefaultTimeout = 5 * time.Second
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client - клиент Guardian content API. Один GET на вызов, без ретраев.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

type searchResponse struct {
	Response struct {
		Results []domain.ResultRecord `json:"results"`
		Message string                `json:"message"`
	} `json:"response"`
}

func (c *Client) Fetch(ctx context.Context, apiKey string, query domain.SearchQuery) (domain.FetchOutcome, error) {
	params := BuildParams(apiKey, query)
	c.logger.Info(DescribeQuery(query))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var sr searchResponse
		if err := json.Unmarshal(respBody, &sr); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		results := sr.Response.Results
		if results == nil {
			results = []domain.ResultRecord{}
		}
		return domain.FetchSuccess{Results: results}, nil

	case http.StatusUnauthorized:
		c.logger.Error(fmt.Sprintf("Failed to fetch results: status code 401. API key %s may be invalid", maskKey(apiKey)),
			zap.Int("status_code", resp.StatusCode),
		)
		return domain.FetchAuthFailure{}, nil

	default:
		c.logger.Error(fmt.Sprintf("Failed to fetch results: status code %d", resp.StatusCode),
			zap.Int("status_code", resp.StatusCode),
		)
		failure := domain.FetchAPIFailure{StatusCode: resp.StatusCode}

		// тело может быть не JSON (например html от прокси), тогда просто без сообщения
		var sr searchResponse
		if err := json.Unmarshal(respBody, &sr); err == nil && sr.Response.Message != "" {
			failure.Message = sr.Response.Message
			c.logger.Error("Server returned error message: " + failure.Message)
		}
		return failure, nil
	}
}

// BuildParams - пустые q и from-date не передаем
func BuildParams(apiKey string, query domain.SearchQuery) url.Values {
	params := url.Values{}
	params.Set("api-key", apiKey)
	if term, ok := query.ActiveTerm(); ok {
		params.Set("q", term)
	}
	if date, ok := query.ActiveFromDate(); ok {
		params.Set("from-date", date)
	}
	return params
}

// DescribeQuery - ровно одна строка лога на запрос
func DescribeQuery(query domain.SearchQuery) string {
	var sb strings.Builder
	if term, ok := query.ActiveTerm(); ok {
		fmt.Fprintf(&sb, "Fetching results with search term '%s'", term)
	} else {
		sb.WriteString("Fetching results with no search term")
	}
	if date, ok := query.ActiveFromDate(); ok {
		fmt.Fprintf(&sb, ", dated '%s' or later", date)
	}
	return sb.String()
}

func maskKey(key string) string {
	r := []rune(key)
	if len(r) <= 2 {
		return "***"
	}
	return string(r[:2]) + "***"
}
