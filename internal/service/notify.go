package service

import (
	"context"

	"arcadeorders/internal/model"
	"arcadeorders/internal/worker"

	"github.com/rs/zerolog/log"
)

// notify enqueues a best-effort email about one order or payment of a
// client. It runs after commit and never fails the calling operation.
func notify(ctx context.Context, d *worker.Dispatcher, client *model.User, ref worker.Reference, subject, body string) {
	if d == nil || client == nil || client.Email == "" {
		return
	}
	payload := worker.EmailJobPayload{
		ToEmail:   client.Email,
		ClientID:  client.ID.String(),
		Reference: ref,
		Subject:   subject,
		Body:      body,
	}
	if err := d.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Str("client_id", payload.ClientID).Str("ref", ref.String()).Msg("notify: enqueue failed")
	}
}
