package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/newsrelay/internal/domain"
	"github.com/kitbuilder587/newsrelay/internal/metrics"
	"github.com/kitbuilder587/newsrelay/internal/queue"
	"github.com/kitbuilder587/newsrelay/internal/search"
	"github.com/kitbuilder587/newsrelay/internal/secrets"
)

type RelayRequest struct {
	Query     domain.SearchQuery
	QueueName string
}

// RunReport - итог одного запуска. Published == nil, если публиковать было нечего.
type RunReport struct {
	Outcome   domain.FetchOutcome
	Published *queue.BatchResult
}

type RelayDeps struct {
	Fetcher   search.Fetcher
	Publisher *Publisher
	Secrets   secrets.Store
	APIKey    secrets.APIKeySource
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Relay - fetch, потом publish если что-то нашлось
type Relay struct {
	fetcher   search.Fetcher
	publisher *Publisher
	secrets   secrets.Store
	apiKey    secrets.APIKeySource
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

func NewRelay(deps RelayDeps) *Relay {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Relay{
		fetcher:   deps.Fetcher,
		publisher: deps.Publisher,
		secrets:   deps.Secrets,
		apiKey:    deps.APIKey,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
	}
}

func (r *Relay) Run(ctx context.Context, req RelayRequest) (*RunReport, error) {
	key := secrets.ResolveAPIKey(ctx, r.apiKey, r.secrets, r.logger)

	start := time.Now()
	outcome, err := r.fetcher.Fetch(ctx, key, req.Query)
	if err != nil {
		if r.metrics != nil {
			r.metrics.RecordFetch("transport_error", time.Since(start))
		}
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.RecordFetch(outcome.Label(), time.Since(start))
	}

	report := &RunReport{Outcome: outcome}

	switch o := outcome.(type) {
	case domain.FetchSuccess:
		if len(o.Results) == 0 {
			r.logger.Info("No results to publish")
			return report, nil
		}
		res, err := r.publisher.Publish(ctx, o.Results, req.QueueName)
		if err != nil {
			return report, err
		}
		report.Published = res
	case domain.FetchAuthFailure, domain.FetchAPIFailure:
		// уже залогировано в fetcher
	}

	return report, nil
}
