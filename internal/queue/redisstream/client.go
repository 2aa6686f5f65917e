// Package redisstream - очередь на Redis Streams: имя очереди = ключ стрима, запись = XADD.
package redisstream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/kitbuilder587/newsrelay/internal/domain"
	"github.com/kitbuilder587/newsrelay/internal/queue"
)

const (
	fieldID   = "id"
	fieldBody = "body"
)

type Client struct {
	client *redis.Client
}

func New(addr string) *Client {
	return &Client{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func NewWithURL(url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Client{client: redis.NewClient(opts)}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// CreateQueue - BUSYGROUP (группа уже есть) не ошибка
func (c *Client) CreateQueue(ctx context.Context, name, group string) error {
	err := c.client.XGroupCreateMkStream(ctx, name, group, "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Client) ResolveQueue(ctx context.Context, name string) (string, error) {
	kind, err := c.client.Type(ctx, name).Result()
	if err != nil {
		return "", fmt.Errorf("resolve queue: %w", err)
	}
	if kind != "stream" {
		return "", fmt.Errorf("%w: %s", domain.ErrQueueNotFound, name)
	}
	return name, nil
}

func (c *Client) SendBatch(ctx context.Context, address string, entries []domain.QueueEntry) (*queue.BatchResult, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(entries))
	for i, e := range entries {
		cmds[i] = pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: address,
			Values: map[string]interface{}{
				fieldID:   e.ID,
				fieldBody: e.Body,
			},
		})
	}

	// ответ сервера - ошибка конкретной записи, остальное значит что батч до redis не дошел
	if _, err := pipe.Exec(ctx); err != nil {
		var replyErr redis.Error
		if !errors.As(err, &replyErr) {
			return nil, fmt.Errorf("send batch: %w", err)
		}
	}

	return collectResults(entries, cmds), nil
}

func (c *Client) Entries(ctx context.Context, address string) ([]domain.QueueEntry, error) {
	msgs, err := c.client.XRange(ctx, address, "-", "+").Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.QueueEntry, 0, len(msgs))
	for _, m := range msgs {
		id, _ := m.Values[fieldID].(string)
		body, _ := m.Values[fieldBody].(string)
		entries = append(entries, domain.QueueEntry{ID: id, Body: body})
	}
	return entries, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func collectResults(entries []domain.QueueEntry, cmds []*redis.StringCmd) *queue.BatchResult {
	res := &queue.BatchResult{
		Successful: make([]queue.Ack, 0, len(cmds)),
	}
	for i, cmd := range cmds {
		if err := cmd.Err(); err != nil {
			var replyErr redis.Error
			res.Failed = append(res.Failed, queue.Failure{
				ID:          entries[i].ID,
				Code:        errorCode(err),
				Message:     err.Error(),
				SenderFault: errors.As(err, &replyErr),
			})
			continue
		}
		res.Successful = append(res.Successful, queue.Ack{
			ID:        entries[i].ID,
			MessageID: cmd.Val(),
		})
	}
	return res
}

// errorCode - первое слово ошибки redis, например WRONGTYPE
func errorCode(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, ' '); i > 0 {
		return msg[:i]
	}
	return msg
}
