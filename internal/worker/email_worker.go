package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/likbrus/likbrus.github.io/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail        string `json:"to_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentName string `json:"attachment_name,omitempty"`
	Attachment     []byte `json:"attachment,omitempty"`
}

// Sender is satisfied by *infra.Mailer.
type Sender interface {
	Send(msg infra.Message) error
}

// EmailWorker delivers reset notices and daily summaries.
type EmailWorker struct {
	sender Sender
}

func NewEmailWorker(sender Sender) *EmailWorker {
	return &EmailWorker{sender: sender}
}

// Process sends one mail. A disabled mailer drops the job quietly; an open
// breaker or relay error is retried by the pool.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: invalid email payload: %v", ErrPermanent, err)
	}
	if payload.ToEmail == "" {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: empty to_email, skipping")
		return nil
	}

	err := w.sender.Send(infra.Message{
		To:             []string{payload.ToEmail},
		Subject:        payload.Subject,
		Body:           payload.Body,
		AttachmentName: payload.AttachmentName,
		Attachment:     payload.Attachment,
	})
	if errors.Is(err, infra.ErrMailerDisabled) {
		log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: SMTP disabled, mail dropped")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
