package worker

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/ott-platform/internal/idempotency"
	"github.com/example/ott-platform/internal/progress"
)

// SubjectProgress is the subject the write path publishes progress events on.
const SubjectProgress = "activity.progress"

const durableName = "activity_progress"

// ProgressEvent is the payload published by the API for a playhead write.
type ProgressEvent struct {
	EventID         string `json:"event_id"`
	UserID          string `json:"user_id"`
	ContentID       string `json:"content_id"`
	PositionSeconds int    `json:"position_seconds"`
	DurationSeconds int    `json:"duration_seconds"`
	CreatedAt       string `json:"created_at"`
}

// Options wires the consumer's collaborators. BatchSize and BatchInterval
// fall back to WORKER_BATCH_SIZE / WORKER_BATCH_INTERVAL_MS, then defaults.
type Options struct {
	Conn   *nats.Conn
	Store  progress.Store
	Dedup  idempotency.Store
	Logger *zap.Logger

	BatchSize     int
	BatchInterval time.Duration
}

// StartProgressConsumer subscribes to activity.progress and applies each
// event as an idempotent store upsert. It returns after the subscription is
// established; processing runs until ctx is cancelled.
func StartProgressConsumer(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	js, err := opts.Conn.JetStream()
	if err != nil {
		return err
	}
	sub, err := js.PullSubscribe(SubjectProgress, durableName)
	if err != nil {
		return err
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = envInt("WORKER_BATCH_SIZE", 100)
	}
	batchInterval := opts.BatchInterval
	if batchInterval <= 0 {
		batchInterval = time.Duration(envInt("WORKER_BATCH_INTERVAL_MS", 2000)) * time.Millisecond
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			msgs, err := sub.Fetch(batchSize, nats.MaxWait(batchInterval))
			if err != nil {
				if err == nats.ErrTimeout {
					continue
				}
				log.Warn("progress consumer fetch failed", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			for _, m := range msgs {
				handleMessage(ctx, m, opts.Store, opts.Dedup, log)
			}
		}
	}()
	return nil
}

// handleMessage applies one event. Malformed payloads are acked so they do
// not poison the stream; transient failures are nak'd for redelivery.
func handleMessage(ctx context.Context, m *nats.Msg, store progress.Store, dedup idempotency.Store, log *zap.Logger) {
	var ev ProgressEvent
	if err := json.Unmarshal(m.Data, &ev); err != nil {
		log.Warn("dropping malformed progress event", zap.Error(err))
		ack(m, log)
		return
	}
	if ev.UserID == "" || ev.ContentID == "" {
		log.Warn("dropping progress event without identity",
			zap.String("event_id", ev.EventID))
		ack(m, log)
		return
	}

	if dedup != nil && ev.EventID != "" {
		duplicate, err := dedup.Check(ctx, ev.EventID)
		if err != nil {
			log.Warn("idempotency check failed",
				zap.String("event_id", ev.EventID), zap.Error(err))
			nak(m, log)
			return
		}
		if duplicate {
			ack(m, log)
			return
		}
	}

	if err := store.Upsert(ctx, ev.UserID, ev.ContentID, ev.PositionSeconds, ev.DurationSeconds); err != nil {
		log.Warn("progress upsert failed",
			zap.String("user_id", ev.UserID),
			zap.String("content_id", ev.ContentID),
			zap.Error(err))
		nak(m, log)
		return
	}
	ack(m, log)
}

func ack(m *nats.Msg, log *zap.Logger) {
	if err := m.Ack(); err != nil {
		log.Warn("ack failed", zap.Error(err))
	}
}

func nak(m *nats.Msg, log *zap.Logger) {
	if err := m.Nak(); err != nil {
		log.Warn("nak failed", zap.Error(err))
	}
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
