package queue

import (
	"context"

	"github.com/kitbuilder587/newsrelay/internal/domain"
)

type Client interface {
	// domain.ErrQueueNotFound если очереди нет
	ResolveQueue(ctx context.Context, name string) (string, error)
	// отказы по отдельным записям - в BatchResult, не в error
	SendBatch(ctx context.Context, address string, entries []domain.QueueEntry) (*BatchResult, error)
}

type BatchResult struct {
	Successful []Ack
	Failed     []Failure
}

type Ack struct {
	ID        string
	MessageID string
}

type Failure struct {
	ID          string
	Code        string
	Message     string
	SenderFault bool
}

func (r *BatchResult) Total() int {
	if r == nil {
		return 0
	}
	return len(r.Successful) + len(r.Failed)
}
