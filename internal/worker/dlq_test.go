package worker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeadJob_EmailCarriesClientAndReference(t *testing.T) {
	payload, err := json.Marshal(EmailJobPayload{
		ToEmail:   "local@arcade.test",
		ClientID:  "c-1",
		Reference: OrderRef("o-9"),
		Subject:   "Entrega registrada",
	})
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("ART", -3*3600))

	dead := newDeadJob(QueueEmail, Job{Type: JobTypeEmail, Payload: payload, Attempts: MaxAttempts}, "smtp down", now)

	assert.Equal(t, QueueEmail, dead.Queue)
	assert.Equal(t, "c-1", dead.ClientID)
	assert.Equal(t, "order:o-9", dead.Reference)
	assert.Equal(t, MaxAttempts, dead.Attempts)
	assert.Equal(t, "smtp down", dead.Reason)
	assert.Equal(t, time.UTC, dead.FailedAt.Location())
	assert.True(t, now.Equal(dead.FailedAt))
	assert.JSONEq(t, string(payload), string(dead.Payload))
}

func TestNewDeadJob_UnreadablePayloadKeepsRawJob(t *testing.T) {
	dead := newDeadJob(QueueEmail, Job{Type: JobTypeEmail, Payload: json.RawMessage(`"x"`)}, "bad", time.Now())
	assert.Empty(t, dead.ClientID)
	assert.Empty(t, dead.Reference)

	dead = newDeadJob(QueueEmail, Job{Type: "fax"}, "no handler for fax", time.Now())
	assert.Equal(t, "fax", dead.JobType)
	assert.Empty(t, dead.Reference)
}

func TestReference_String(t *testing.T) {
	assert.Equal(t, "payment:p-1", PaymentRef("p-1").String())
	assert.Empty(t, Reference{}.String())
}
