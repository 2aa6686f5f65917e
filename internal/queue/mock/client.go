package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/kitbuilder587/newsrelay/internal/domain"
	"github.com/kitbuilder587/newsrelay/internal/queue"
)

// Client - in-memory очередь для тестов сервисов.
type Client struct {
	Queues     map[string][]domain.QueueEntry
	RejectIDs  map[string]bool
	ResolveErr error
	SendErr    error

	ResolveCalls int
	SendCalls    int

	mu sync.Mutex
}

func New(names ...string) *Client {
	c := &Client{
		Queues:    make(map[string][]domain.QueueEntry),
		RejectIDs: make(map[string]bool),
	}
	for _, n := range names {
		c.Queues[n] = nil
	}
	return c
}

func (c *Client) WithRejected(ids ...string) *Client {
	for _, id := range ids {
		c.RejectIDs[id] = true
	}
	return c
}

func (c *Client) ResolveQueue(_ context.Context, name string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ResolveCalls++

	if c.ResolveErr != nil {
		return "", c.ResolveErr
	}
	if _, ok := c.Queues[name]; !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrQueueNotFound, name)
	}
	return "mock://" + name, nil
}

func (c *Client) SendBatch(_ context.Context, address string, entries []domain.QueueEntry) (*queue.BatchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SendCalls++

	if c.SendErr != nil {
		return nil, c.SendErr
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	name := address[len("mock://"):]
	res := &queue.BatchResult{}
	for i, e := range entries {
		if c.RejectIDs[e.ID] {
			res.Failed = append(res.Failed, queue.Failure{ID: e.ID, Code: "Rejected", Message: "rejected by mock", SenderFault: true})
			continue
		}
		c.Queues[name] = append(c.Queues[name], e)
		res.Successful = append(res.Successful, queue.Ack{ID: e.ID, MessageID: fmt.Sprintf("%s-%d", name, i)})
	}
	return res, nil
}

func (c *Client) Messages(name string) []domain.QueueEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.QueueEntry(nil), c.Queues[name]...)
}
