package worker

// retry_cron.go
// Background goroutine that periodically drains the email DLQ back onto the
// live queue, so deliveries interrupted by an SMTP outage resume on their own.
// Entries past MaxEmailAttempts stay in the DLQ for manual inspection.

import (
	"context"
	"encoding/json"
	"time"

	"partediario/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10
)

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	Dispatcher *Dispatcher
	CB         *infra.CircuitBreaker
	RDB        *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s and
// requeues DLQ'd email jobs while the circuit breaker allows traffic.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely rather than hammer a downed SMTP server
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQPrefix + QueueEmail
	for i := 0; i < retryBatchSize; i++ {
		// Breaker may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}

		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err != nil {
			return // empty DLQ or redis unavailable
		}
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("retry_cron: corrupt DLQ entry, dropping")
			continue
		}
		if entry.Attempts >= MaxEmailAttempts {
			// Exhausted jobs stay parked for manual inspection
			_ = cfg.RDB.LPush(ctx, dlqKey, raw).Err()
			return
		}

		job := Job{Type: entry.JobType, Payload: entry.Payload, Attempts: entry.Attempts}
		if err := cfg.Dispatcher.Requeue(ctx, entry.OriginalQueue, job); err != nil {
			log.Error().Err(err).Msg("retry_cron: requeue failed, returning entry to DLQ")
			_ = cfg.RDB.LPush(ctx, dlqKey, raw).Err()
			return
		}
		log.Info().Str("queue", entry.OriginalQueue).Int("attempts", entry.Attempts).
			Msg("retry_cron: job requeued from DLQ")
	}
}
