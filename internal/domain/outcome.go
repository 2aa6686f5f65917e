package domain

import "fmt"

// FetchOutcome - одно из FetchSuccess, FetchAuthFailure, FetchAPIFailure
type FetchOutcome interface {
	Records() []ResultRecord
	// Label - для метрик и логов
	Label() string

	isFetchOutcome()
}

type FetchSuccess struct {
	Results []ResultRecord
}

// FetchAuthFailure - API ответил 401, ключ скорее всего невалидный.
type FetchAuthFailure struct{}

type FetchAPIFailure struct {
	StatusCode int
	// response.message, пусто если тела нет или оно не JSON
	Message string
}

func (s FetchSuccess) Records() []ResultRecord   { return s.Results }
func (FetchAuthFailure) Records() []ResultRecord { return nil }
func (FetchAPIFailure) Records() []ResultRecord  { return nil }

func (FetchSuccess) Label() string     { return "success" }
func (FetchAuthFailure) Label() string { return "auth_failure" }
func (FetchAPIFailure) Label() string  { return "api_failure" }

func (FetchSuccess) isFetchOutcome()     {}
func (FetchAuthFailure) isFetchOutcome() {}
func (FetchAPIFailure) isFetchOutcome()  {}

func (f FetchAPIFailure) String() string {
	if f.Message == "" {
		return fmt.Sprintf("status %d", f.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", f.StatusCode, f.Message)
}
