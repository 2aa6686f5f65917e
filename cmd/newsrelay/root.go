package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kitbuilder587/newsrelay/internal/config"
	"github.com/kitbuilder587/newsrelay/internal/domain"
	"github.com/kitbuilder587/newsrelay/internal/metrics"
	"github.com/kitbuilder587/newsrelay/internal/queue"
	"github.com/kitbuilder587/newsrelay/internal/queue/redisstream"
	sqsqueue "github.com/kitbuilder587/newsrelay/internal/queue/sqs"
	"github.com/kitbuilder587/newsrelay/internal/search/guardian"
	"github.com/kitbuilder587/newsrelay/internal/secrets"
	"github.com/kitbuilder587/newsrelay/internal/secrets/awssm"
	"github.com/kitbuilder587/newsrelay/internal/service"
)

type runFlags struct {
	dateFrom  string
	queueName string
	backend   string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:          "newsrelay [search_term]",
		Short:        "Fetch Guardian search results and publish them to a queue",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var term string
			if len(args) == 1 {
				term = args[0]
			}
			return run(cmd.Context(), term, flags)
		},
	}

	cmd.Flags().StringVar(&flags.dateFrom, "date_from", "", "only return results published on or after this date (ISO 8601)")
	cmd.Flags().StringVar(&flags.queueName, "sqs_queue_name", "", "queue to publish to (default from QUEUE_NAME, guardian_content)")
	cmd.PersistentFlags().StringVar(&flags.backend, "queue_backend", "", "queue backend: sqs or redis (default from QUEUE_BACKEND)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log_level", "", "log level (default from LOG_LEVEL)")

	cmd.AddCommand(newInitQueueCmd(&flags))

	return cmd
}

// SQS очереди создаются снаружи, тут только redis
func newInitQueueCmd(flags *runFlags) *cobra.Command {
	var group string

	cmd := &cobra.Command{
		Use:   "init-queue <name>",
		Short: "Create a Redis stream queue and its consumer group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(*flags)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if cfg.Queue.Backend != config.BackendRedis {
				return fmt.Errorf("init-queue supports only the redis backend, got %q", cfg.Queue.Backend)
			}

			client, err := openRedis(cmd.Context(), cfg.Queue.RedisURL)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.CreateQueue(cmd.Context(), args[0], group); err != nil {
				return fmt.Errorf("create queue: %w", err)
			}
			logger.Info("Queue ready", zap.String("queue", args[0]), zap.String("group", group))
			return nil
		},
	}
	cmd.Flags().StringVar(&group, "group", "newsrelay-consumers", "consumer group to create")

	return cmd
}

func setup(flags runFlags) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(
		config.WithQueueBackend(flags.backend),
		config.WithLogLevel(flags.logLevel),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

func run(ctx context.Context, term string, flags runFlags) error {
	cfg, logger, err := setup(flags)
	if err != nil {
		return err
	}
	defer logger.Sync()

	queueName := flags.queueName
	if queueName == "" {
		queueName = cfg.Queue.Name
	}

	var awsCfg *aws.Config
	loadAWS := func() (aws.Config, error) {
		if awsCfg != nil {
			return *awsCfg, nil
		}
		c, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return aws.Config{}, fmt.Errorf("load aws config: %w", err)
		}
		if cfg.AWS.EndpointURL != "" {
			c.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
		}
		awsCfg = &c
		return c, nil
	}

	var q queue.Client
	switch cfg.Queue.Backend {
	case config.BackendRedis:
		client, err := openRedis(ctx, cfg.Queue.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		q = client
	default:
		c, err := loadAWS()
		if err != nil {
			return err
		}
		q = sqsqueue.NewFromConfig(c)
	}

	var store secrets.Store
	if cfg.Guardian.APIKeySecretName != "" {
		c, err := loadAWS()
		if err != nil {
			return err
		}
		store = awssm.NewFromConfig(c)
	}

	m := metrics.New()
	relay := service.NewRelay(service.RelayDeps{
		Fetcher: guardian.New(guardian.Config{
			BaseURL: cfg.Guardian.BaseURL,
			Timeout: cfg.Guardian.Timeout,
		}, logger),
		Publisher: service.NewPublisher(q, logger, m),
		Secrets:   store,
		APIKey: secrets.APIKeySource{
			Key:        cfg.Guardian.APIKey,
			SecretName: cfg.Guardian.APIKeySecretName,
		},
		Logger:  logger,
		Metrics: m,
	})

	report, err := relay.Run(ctx, service.RelayRequest{
		Query:     domain.NewSearchQuery(term, flags.dateFrom),
		QueueName: queueName,
	})
	pushMetrics(m, cfg.Metrics.PushgatewayURL, logger)
	if err != nil {
		return err
	}

	if report.Published != nil {
		logger.Info("Run finished",
			zap.String("outcome", report.Outcome.Label()),
			zap.Int("published", len(report.Published.Successful)),
			zap.Int("failed", len(report.Published.Failed)),
		)
	} else {
		logger.Info("Run finished", zap.String("outcome", report.Outcome.Label()))
	}
	return nil
}

// openRedis пингует сразу, чтобы недоступный redis не выглядел как ошибка публикации.
func openRedis(ctx context.Context, url string) (*redisstream.Client, error) {
	client, err := redisstream.NewWithURL(url)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis unavailable: %w", err)
	}
	return client, nil
}

func pushMetrics(m *metrics.Metrics, gatewayURL string, logger *zap.Logger) {
	if gatewayURL == "" {
		return
	}
	if err := m.Push(gatewayURL); err != nil {
		logger.Warn("Failed to push metrics", zap.String("gateway", gatewayURL), zap.Error(err))
	}
}
