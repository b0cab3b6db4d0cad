package worker

// email_worker.go
// Processes email jobs from QueueEmail, sending parte diario PDFs via SMTP.
// The SMTP call goes through a circuit breaker; exhausted retries land in the
// DLQ, where the retry cron picks them up once the breaker allows traffic.

import (
	"context"
	"encoding/json"

	"partediario/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// MaxEmailAttempts counts deliveries across DLQ requeues, not just in-process
// retries.
const MaxEmailAttempts = 5

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

type EmailWorker struct {
	mailer *infra.Mailer
	cb     *infra.CircuitBreaker
	rdb    *redis.Client
}

func NewEmailWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, rdb: rdb}
}

// Process sends the email with the PDF attached. Failures go to the DLQ with
// the accumulated attempt count; the job is dropped for good once
// MaxEmailAttempts is reached.
func (w *EmailWorker) Process(ctx context.Context, job Job) {
	var payload EmailJobPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return
	}

	err := withRetry(ctx, 3, func(attempt int) error {
		return w.cb.Execute(func() error {
			return w.mailer.SendParteDiario(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		})
	})
	if err == nil {
		log.Info().Str("to", payload.ToEmail).Msg("email_worker: parte diario sent")
		return
	}

	attempts := job.Attempts + 1
	if attempts >= MaxEmailAttempts {
		log.Error().Err(err).Str("to", payload.ToEmail).Int("attempts", attempts).
			Msg("email_worker: giving up after max attempts")
	}
	SendToDLQ(ctx, w.rdb, QueueEmail, "email", job.Payload, err.Error(), attempts)
}
