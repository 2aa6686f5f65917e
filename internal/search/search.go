package search

import (
	"context"

	"github.com/kitbuilder587/newsrelay/internal/domain"
)

// Fetcher - HTTP-ошибки API возвращаются как FetchOutcome,
// error только для транспорта (dial, DNS, таймаут).
type Fetcher interface {
	Fetch(ctx context.Context, apiKey string, query domain.SearchQuery) (domain.FetchOutcome, error)
}
