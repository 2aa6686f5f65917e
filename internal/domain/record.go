package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ResultRecord - результат поиска как есть, поля не интерпретируем
type ResultRecord map[string]any

type QueueEntry struct {
	ID   string
	Body string
}

// NewQueueEntries - id = позиция в списке с нуля
func NewQueueEntries(records []ResultRecord) ([]QueueEntry, error) {
	entries := make([]QueueEntry, 0, len(records))
	for i, rec := range records {
		body, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal record %d: %w", i, err)
		}
		entries = append(entries, QueueEntry{
			ID:   strconv.Itoa(i),
			Body: string(body),
		})
	}
	return entries, nil
}
