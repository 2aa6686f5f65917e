package domain

import "errors"

var (
	ErrQueueNotFound  = errors.New("queue not found")
	ErrSecretNotFound = errors.New("secret not found")
	ErrEmptySecret    = errors.New("secret has no string value")
)

var (
	ErrEmptyBatch = errors.New("no entries to send")
)
