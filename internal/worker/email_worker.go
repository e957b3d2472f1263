package worker

// email_worker.go
// Processes email jobs from QueueEmail: order confirmations, delivery and
// payment receipts.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

const JobTypeEmail = "email"

// Reference points a notification at the order or payment it is about.
type Reference struct {
	Kind string `json:"kind"` // order | payment
	ID   string `json:"id"`
}

func OrderRef(id string) Reference   { return Reference{Kind: "order", ID: id} }
func PaymentRef(id string) Reference { return Reference{Kind: "payment", ID: id} }

func (r Reference) String() string {
	if r.ID == "" {
		return ""
	}
	return r.Kind + ":" + r.ID
}

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail   string    `json:"to_email"`
	ClientID  string    `json:"client_id,omitempty"`
	Reference Reference `json:"reference"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
}

// Sender is satisfied by *infra.Mailer.
type Sender interface {
	Send(to, subject, body, pdfName string, pdf []byte) error
}

// EmailWorker sends notification emails over SMTP.
type EmailWorker struct {
	mailer Sender
}

func NewEmailWorker(mailer Sender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one email. Malformed payloads are not retried.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}
	if w.mailer == nil {
		return errors.New("email_worker: mailer not configured")
	}

	if err := w.mailer.Send(payload.ToEmail, payload.Subject, payload.Body, "", nil); err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().
		Str("client_id", payload.ClientID).
		Str("ref", payload.Reference.String()).
		Msg("email_worker: notification sent")
	return nil
}
