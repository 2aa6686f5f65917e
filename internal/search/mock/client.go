package mock

import (
	"context"
	"sync"

	"github.com/kitbuilder587/newsrelay/internal/domain"
)

type Client struct {
	Outcome domain.FetchOutcome
	Error   error

	CallCount  int
	LastAPIKey string
	LastQuery  domain.SearchQuery

	mu sync.Mutex
}

func New() *Client {
	return &Client{}
}

func (c *Client) WithRecords(records []domain.ResultRecord) *Client {
	c.Outcome = domain.FetchSuccess{Results: records}
	return c
}

func (c *Client) WithOutcome(outcome domain.FetchOutcome) *Client {
	c.Outcome = outcome
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) Fetch(_ context.Context, apiKey string, query domain.SearchQuery) (domain.FetchOutcome, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastAPIKey = apiKey
	c.LastQuery = query
	err := c.Error
	outcome := c.Outcome
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if outcome == nil {
		return domain.FetchSuccess{Results: []domain.ResultRecord{}}, nil
	}
	return outcome, nil
}
