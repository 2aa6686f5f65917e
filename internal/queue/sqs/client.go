package sqs

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/kitbuilder587/newsrelay/internal/domain"
	"github.com/kitbuilder587/newsrelay/internal/queue"
)

type API interface {
	GetQueueUrl(ctx context.Context, params *awssqs.GetQueueUrlInput, optFns ...func(*awssqs.Options)) (*awssqs.GetQueueUrlOutput, error)
	SendMessageBatch(ctx context.Context, params *awssqs.SendMessageBatchInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageBatchOutput, error)
}

type Client struct {
	api API
}

func New(api API) *Client {
	return &Client{api: api}
}

func NewFromConfig(cfg aws.Config) *Client {
	return New(awssqs.NewFromConfig(cfg))
}

func (c *Client) ResolveQueue(ctx context.Context, name string) (string, error) {
	out, err := c.api.GetQueueUrl(ctx, &awssqs.GetQueueUrlInput{
		QueueName: aws.String(name),
	})
	if err != nil {
		var notExist *types.QueueDoesNotExist
		if errors.As(err, &notExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrQueueNotFound, name)
		}
		return "", fmt.Errorf("get queue url: %w", err)
	}
	return aws.ToString(out.QueueUrl), nil
}

// SendBatch не режет батч: больше 10 записей SQS отклонит целиком (TooManyEntriesInBatchRequest)
func (c *Client) SendBatch(ctx context.Context, address string, entries []domain.QueueEntry) (*queue.BatchResult, error) {
	if len(entries) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	batch := make([]types.SendMessageBatchRequestEntry, len(entries))
	for i, e := range entries {
		batch[i] = types.SendMessageBatchRequestEntry{
			Id:          aws.String(e.ID),
			MessageBody: aws.String(e.Body),
		}
	}

	out, err := c.api.SendMessageBatch(ctx, &awssqs.SendMessageBatchInput{
		QueueUrl: aws.String(address),
		Entries:  batch,
	})
	if err != nil {
		return nil, fmt.Errorf("send message batch: %w", err)
	}

	res := &queue.BatchResult{
		Successful: make([]queue.Ack, 0, len(out.Successful)),
		Failed:     make([]queue.Failure, 0, len(out.Failed)),
	}
	for _, s := range out.Successful {
		res.Successful = append(res.Successful, queue.Ack{
			ID:        aws.ToString(s.Id),
			MessageID: aws.ToString(s.MessageId),
		})
	}
	for _, f := range out.Failed {
		res.Failed = append(res.Failed, queue.Failure{
			ID:          aws.ToString(f.Id),
			Code:        aws.ToString(f.Code),
			Message:     aws.ToString(f.Message),
			SenderFault: f.SenderFault,
		})
	}
	return res, nil
}
