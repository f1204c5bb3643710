package mq

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/messaging"
	"github.com/anastasipancheva/miniapppass/internal/pkg/seal"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyOfCorrelationID string = "cID"

type clocker interface {
	Now() time.Time
}

// Messaging publishes credential events to the broker. Secrets travel sealed
// and bound to the credential id.
type Messaging struct {
	client messaging.Messaging
	sealer seal.Sealer
	topic  string
	clock  clocker
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Messaging, sealer seal.Sealer, topic string, clock clocker, ins instrument.Instrumentation) *Messaging {
	if topic == "" {
		topic = event.CredentialDestination
	}
	return &Messaging{client: client, sealer: sealer, topic: topic, clock: clock, ins: ins}
}

func (m *Messaging) Name() string {
	return "broker"
}

func (m *Messaging) Upsert(ctx context.Context, c entity.Credential, action event.CredentialAction) (err error) {
	ctx, span := m.ins.Tracer("access.outbound.mq").Start(ctx, "Upsert")
	defer func() { endSpan(span, err) }()

	sealed, err := m.sealer.Seal(c.Secret, Scope(c.ID))
	if err != nil {
		return err
	}

	expiresAt := c.ExpiresAt.UTC()
	return m.publish(ctx, c.ID, event.CredentialMessage{
		Action:       action,
		ID:           c.ID,
		Name:         c.Name,
		AccessClass:  c.AccessClass.String(),
		ExpiresAt:    &expiresAt,
		Active:       c.Active,
		SealedSecret: base64.StdEncoding.EncodeToString(sealed),
		Revision:     c.Revision,
		OccurredAt:   m.clock.Now().UTC(),
	})
}

func (m *Messaging) Remove(ctx context.Context, c entity.Credential) (err error) {
	ctx, span := m.ins.Tracer("access.outbound.mq").Start(ctx, "Remove")
	defer func() { endSpan(span, err) }()

	return m.publish(ctx, c.ID, event.CredentialMessage{
		Action:     event.CredentialRevoked,
		ID:         c.ID,
		OccurredAt: m.clock.Now().UTC(),
	})
}

func (m *Messaging) publish(ctx context.Context, id int64, msg event.CredentialMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	_, err = m.client.Publish(ctx, m.topic, messaging.OutgoingMessage{
		Body:    body,
		Key:     []byte(strconv.FormatInt(id, 10)),
		Headers: []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}},
	})
	return err
}

// Scope is the sealing scope consumers use to open a credential's secret.
func Scope(id int64) seal.Scope {
	return seal.Scope{Subject: strconv.FormatInt(id, 10), Purpose: seal.PurposeCredentialSync}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
