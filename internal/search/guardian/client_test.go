package guardian

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kitbuilder587/newsrelay/internal/domain"
)

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core), logs
}

func resultsFixture(n int) map[string]any {
	results := make([]map[string]any, n)
	for i := range results {
		results[i] = map[string]any{
			"id":                 fmt.Sprintf("technology/2023/jan/%02d/article", i+1),
			"type":               "article",
			"sectionId":          "technology",
			"webPublicationDate": fmt.Sprintf("2023-01-%02dT10:00:00Z", i+1),
			"webTitle":           fmt.Sprintf("Article %d", i+1),
			"webUrl":             fmt.Sprintf("https://www.theguardian.com/technology/%d", i+1),
			"isHosted":           false,
		}
	}
	return map[string]any{
		"response": map[string]any{
			"status":   "ok",
			"total":    n,
			"pageSize": 10,
			"results":  results,
		},
	}
}

func TestClient_Fetch(t *testing.T) {
	tests := []struct {
		name       string
		response   any
		statusCode int
		want       domain.FetchOutcome
		wantErrLog []string
	}{
		{
			name:       "success",
			response:   resultsFixture(10),
			statusCode: http.StatusOK,
			want:       domain.FetchSuccess{},
		},
		{
			name:       "unauthorized",
			response:   map[string]any{"message": "Unauthorized"},
			statusCode: http.StatusUnauthorized,
			want:       domain.FetchAuthFailure{},
			wantErrLog: []string{"Failed to fetch results: status code 401. API key te*** may be invalid"},
		},
		{
			name:       "bad request with message",
			response:   map[string]any{"response": map[string]any{"status": "error", "message": "Test error message"}},
			statusCode: http.StatusBadRequest,
			want:       domain.FetchAPIFailure{StatusCode: 400, Message: "Test error message"},
			wantErrLog: []string{
				"Failed to fetch results: status code 400",
				"Server returned error message: Test error message",
			},
		},
		{
			name:       "server error without body",
			response:   nil,
			statusCode: http.StatusInternalServerError,
			want:       domain.FetchAPIFailure{StatusCode: 500},
			wantErrLog: []string{"Failed to fetch results: status code 500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				if tt.response != nil {
					json.NewEncoder(w).Encode(tt.response)
				}
			}))
			defer server.Close()

			logger, logs := newObservedLogger()
			client := New(Config{BaseURL: server.URL, Timeout: 5 * time.Second}, logger)

			got, err := client.Fetch(context.Background(), "test-key", domain.SearchQuery{})
			if err != nil {
				t.Fatalf("Fetch() unexpected error = %v", err)
			}

			switch want := tt.want.(type) {
			case domain.FetchSuccess:
				s, ok := got.(domain.FetchSuccess)
				if !ok {
					t.Fatalf("Fetch() = %T, want FetchSuccess", got)
				}
				if len(s.Results) != 10 {
					t.Errorf("len(Results) = %d, want 10", len(s.Results))
				}
			default:
				if got != want {
					t.Errorf("Fetch() = %#v, want %#v", got, want)
				}
			}

			errLogs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
			if len(errLogs) != len(tt.wantErrLog) {
				t.Fatalf("error log count = %d, want %d", len(errLogs), len(tt.wantErrLog))
			}
			for i, msg := range tt.wantErrLog {
				if errLogs[i].Message != msg {
					t.Errorf("error log[%d] = %q, want %q", i, errLogs[i].Message, msg)
				}
			}
		})
	}
}

func TestClient_Fetch_PreservesRecordFields(t *testing.T) {
	fixture := resultsFixture(3)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(fixture)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, zap.NewNop())
	got, err := client.Fetch(context.Background(), "k", domain.SearchQuery{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	records := got.Records()
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	for i, rec := range records {
		if len(rec) != 7 {
			t.Errorf("records[%d] has %d keys, want 7", i, len(rec))
		}
		if rec["webTitle"] != fmt.Sprintf("Article %d", i+1) {
			t.Errorf("records[%d].webTitle = %v", i, rec["webTitle"])
		}
		if rec["isHosted"] != false {
			t.Errorf("records[%d].isHosted = %v", i, rec["isHosted"])
		}
	}
}

func TestClient_Fetch_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"results":[]}}`))
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL}, zap.NewNop())
	got, err := client.Fetch(context.Background(), "k", domain.SearchQuery{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, ok := got.(domain.FetchSuccess); !ok || len(got.Records()) != 0 {
		t.Errorf("Fetch() = %#v, want empty success", got)
	}
}

func TestClient_Fetch_NonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	logger, logs := newObservedLogger()
	client := New(Config{BaseURL: server.URL}, logger)

	got, err := client.Fetch(context.Background(), "k", domain.SearchQuery{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != (domain.FetchAPIFailure{StatusCode: http.StatusBadGateway}) {
		t.Errorf("Fetch() = %#v", got)
	}
	if n := logs.FilterLevelExact(zapcore.ErrorLevel).Len(); n != 1 {
		t.Errorf("error logs = %d, want 1", n)
	}
}

func TestClient_Fetch_QueryString(t *testing.T) {
	tests := []struct {
		name   string
		query  domain.SearchQuery
		want   map[string]string
		absent []string
	}{
		{
			name:   "no term no date",
			query:  domain.SearchQuery{},
			want:   map[string]string{"api-key": "test-key"},
			absent: []string{"q", "from-date"},
		},
		{
			name:   "term only",
			query:  domain.NewSearchQuery(`"machine learning"`, ""),
			want:   map[string]string{"api-key": "test-key", "q": `"machine learning"`},
			absent: []string{"from-date"},
		},
		{
			name:   "date only",
			query:  domain.NewSearchQuery("", "2023-01-01"),
			want:   map[string]string{"api-key": "test-key", "from-date": "2023-01-01"},
			absent: []string{"q"},
		},
		{
			name:  "term and date",
			query: domain.NewSearchQuery(`"machine learning"`, "2023-01-01"),
			want:  map[string]string{"api-key": "test-key", "q": `"machine learning"`, "from-date": "2023-01-01"},
		},
		{
			name:  "reserved characters",
			query: domain.NewSearchQuery(`@+/^"`, "2010-07-20T10:00:00+05:00"),
			want:  map[string]string{"api-key": "test-key", "q": `@+/^"`, "from-date": "2010-07-20T10:00:00+05:00"},
		},
		{
			name:   "present but empty",
			query:  domain.SearchQuery{Term: domain.Some(""), FromDate: domain.Some("")},
			want:   map[string]string{"api-key": "test-key"},
			absent: []string{"q", "from-date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rawQuery, path string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				rawQuery = r.URL.RawQuery
				path = r.URL.Path
				w.Write([]byte(`{"response":{"results":[]}}`))
			}))
			defer server.Close()

			client := New(Config{BaseURL: server.URL}, zap.NewNop())
			if _, err := client.Fetch(context.Background(), "test-key", tt.query); err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}

			if path != "/search" {
				t.Errorf("path = %q, want /search", path)
			}
			if strings.Contains(rawQuery, "+05:00") || strings.Contains(rawQuery, "\"") {
				t.Errorf("raw query not encoded: %s", rawQuery)
			}

			parsed, err := url.ParseQuery(rawQuery)
			if err != nil {
				t.Fatalf("ParseQuery() error = %v", err)
			}
			if len(parsed) != len(tt.want) {
				t.Errorf("got %d params (%v), want %d", len(parsed), parsed, len(tt.want))
			}
			for k, v := range tt.want {
				if got := parsed.Get(k); got != v {
					t.Errorf("param %s = %q, want %q", k, got, v)
				}
			}
			for _, k := range tt.absent {
				if parsed.Has(k) {
					t.Errorf("param %s should be absent", k)
				}
			}
		})
	}
}

func TestClient_Fetch_LogsQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     domain.SearchQuery
		wantLog   string
		wantDated bool
	}{
		{"no term no date", domain.SearchQuery{}, "Fetching results with no search term", false},
		{"term only", domain.NewSearchQuery("machine learning", ""), "Fetching results with search term 'machine learning'", false},
		{"date only", domain.NewSearchQuery("", "2023-01-01"), "Fetching results with no search term, dated '2023-01-01' or later", true},
		{"term and date", domain.NewSearchQuery("machine learning", "2023-01-01"), "Fetching results with search term 'machine learning', dated '2023-01-01' or later", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(resultsFixture(10))
			}))
			defer server.Close()

			logger, logs := newObservedLogger()
			client := New(Config{BaseURL: server.URL}, logger)
			if _, err := client.Fetch(context.Background(), "k", tt.query); err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}

			infos := logs.FilterLevelExact(zapcore.InfoLevel).All()
			if len(infos) != 1 {
				t.Fatalf("info logs = %d, want exactly 1", len(infos))
			}
			if infos[0].Message != tt.wantLog {
				t.Errorf("log = %q, want %q", infos[0].Message, tt.wantLog)
			}
			if got := strings.Contains(infos[0].Message, "dated"); got != tt.wantDated {
				t.Errorf("contains dated = %v, want %v", got, tt.wantDated)
			}
		})
	}
}

func TestClient_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, zap.NewNop())

	_, err := client.Fetch(context.Background(), "k", domain.SearchQuery{})
	if err == nil {
		t.Error("Fetch() expected timeout error")
	}
}

func TestClient_Fetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := New(Config{BaseURL: addr}, zap.NewNop())
	if _, err := client.Fetch(context.Background(), "k", domain.SearchQuery{}); err == nil {
		t.Error("Fetch() expected transport error")
	}
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{}, zap.NewNop())
	if c.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q", c.baseURL)
	}
	if c.client.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v", c.client.Timeout)
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":       "***",
		"ab":     "***",
		"test":   "te***",
		"ключ":   "кл***",
		"é":      "***",
		"日本語キー": "日本***",
	}
	for in, want := range tests {
		got := maskKey(in)
		if !utf8.ValidString(got) {
			t.Errorf("maskKey(%q) = %q is not valid UTF-8", in, got)
		}
		if got != want {
			t.Errorf("maskKey(%q) = %q, want %q", in, got, want)
		}
	}
}
