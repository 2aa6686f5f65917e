package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/newsrelay/internal/domain"
	"github.com/kitbuilder587/newsrelay/internal/metrics"
	"github.com/kitbuilder587/newsrelay/internal/queue"
)

type Publisher struct {
	queue   queue.Client
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewPublisher(q queue.Client, logger *zap.Logger, m *metrics.Metrics) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		queue:   q,
		logger:  logger,
		metrics: m,
	}
}

// Publish - один батч, отклоненные записи не ретраим
func (p *Publisher) Publish(ctx context.Context, records []domain.ResultRecord, queueName string) (*queue.BatchResult, error) {
	address, err := p.queue.ResolveQueue(ctx, queueName)
	if err != nil {
		return nil, err
	}

	entries, err := domain.NewQueueEntries(records)
	if err != nil {
		return nil, err
	}

	p.logger.Info(fmt.Sprintf("Sending %d messages to queue %s", len(entries), queueName),
		zap.Int("count", len(entries)),
		zap.String("queue", queueName),
	)

	start := time.Now()
	res, err := p.queue.SendBatch(ctx, address, entries)
	if err != nil {
		return nil, err
	}

	if p.metrics != nil {
		p.metrics.RecordPublish(len(res.Successful), len(res.Failed), time.Since(start))
	}

	for _, f := range res.Failed {
		p.logger.Error("Queue rejected message",
			zap.String("queue", queueName),
			zap.String("id", f.ID),
			zap.String("code", f.Code),
			zap.String("message", f.Message),
			zap.Bool("sender_fault", f.SenderFault),
		)
	}

	return res, nil
}
