package outbox

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sajid-karim/tablebook/libs/db"
	"github.com/sajid-karim/tablebook/libs/kafkax"
	otelx "github.com/sajid-karim/tablebook/libs/otel"
	"github.com/segmentio/kafka-go"
)

type PublisherConfig struct {
	Brokers   string
	PollEvery time.Duration
	BatchSize int
}

// Publisher drains unpublished outbox rows to Kafka. Each event type is
// its own topic. Rows are locked with SKIP LOCKED so multiple instances
// can run without double-publishing.
type Publisher struct {
	pool   *db.Pool
	repo   *Repository
	logger *slog.Logger
	writer *kafka.Writer
	cfg    PublisherConfig
}

func NewPublisher(pool *db.Pool, repo *Repository, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}

	var writer *kafka.Writer
	if strings.TrimSpace(cfg.Brokers) != "" {
		writer = &kafka.Writer{
			Addr:     kafka.TCP(kafkax.SplitBrokers(cfg.Brokers)...),
			Balancer: &kafka.Hash{},
		}
	}
	return &Publisher{pool: pool, repo: repo, logger: logger, writer: writer, cfg: cfg}
}

func (p *Publisher) Run(ctx context.Context) {
	if p.writer == nil {
		p.logger.Warn("outbox publisher disabled: no kafka brokers configured")
		return
	}
	defer func() { _ = p.writer.Close() }()

	ticker := time.NewTicker(p.cfg.PollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.publishBatch(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("outbox publish failed", "err", err)
			}
		}
	}
}

func (p *Publisher) publishBatch(ctx context.Context) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	records, err := p.repo.FetchUnpublished(ctx, tx, p.cfg.BatchSize)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	published := make([]int64, 0, len(records))
	for _, rcd := range records {
		msgCtx := otelx.ContextWithTraceContext(ctx, rcd.Traceparent, rcd.Tracestate)
		headers := []kafka.Header{
			{Key: "event_id", Value: []byte(rcd.EventID)},
			{Key: "event_type", Value: []byte(rcd.EventType)},
		}
		headers = kafkax.InjectTraceHeaders(msgCtx, headers)

		err := p.writer.WriteMessages(ctx, kafka.Message{
			Topic:   rcd.EventType,
			Key:     []byte(rcd.AggregateID),
			Value:   rcd.Payload,
			Headers: headers,
		})
		if err != nil {
			// Stop the batch; unpublished rows stay locked-free for the next poll.
			p.logger.Error("kafka write failed", "err", err, "event_type", rcd.EventType)
			break
		}
		published = append(published, rcd.ID)
	}

	if err := p.repo.MarkPublished(ctx, tx, published); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
