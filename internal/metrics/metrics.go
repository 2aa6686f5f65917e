package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

const jobName = "newsrelay"

type Metrics struct {
	FetchRequestsTotal   *prometheus.CounterVec
	FetchRequestDuration prometheus.Histogram

	PublishedMessagesTotal *prometheus.CounterVec
	PublishDuration        prometheus.Histogram

	registry *prometheus.Registry
}

// New - свой registry на каждый инстанс, иначе в тестах паника на повторной регистрации
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		FetchRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsrelay_fetch_requests_total",
				Help: "Total number of search API requests by outcome",
			},
			[]string{"outcome"},
		),
		FetchRequestDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newsrelay_fetch_duration_seconds",
				Help:    "Search request duration in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5},
			},
		),

		PublishedMessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "newsrelay_published_messages_total",
				Help: "Total number of queue entries by acknowledgment status",
			},
			[]string{"status"},
		),
		PublishDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "newsrelay_publish_duration_seconds",
				Help:    "Batched send duration in seconds",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
			},
		),

		registry: reg,
	}

	return m
}

// Push - пушим в конце запуска, скрейпить процесс никто не успеет
func (m *Metrics) Push(gatewayURL string) error {
	return push.New(gatewayURL, jobName).Gatherer(m.registry).Push()
}

func (m *Metrics) RecordFetch(outcome string, duration time.Duration) {
	m.FetchRequestsTotal.WithLabelValues(outcome).Inc()
	m.FetchRequestDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordPublish(successful, failed int, duration time.Duration) {
	m.PublishedMessagesTotal.WithLabelValues("success").Add(float64(successful))
	m.PublishedMessagesTotal.WithLabelValues("failed").Add(float64(failed))
	m.PublishDuration.Observe(duration.Seconds())
}
