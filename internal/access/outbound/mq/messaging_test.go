package mq

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/messaging"
	"github.com/anastasipancheva/miniapppass/internal/pkg/seal"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

type recorder struct {
	mu   sync.Mutex
	dest []string
	msgs []messaging.OutgoingMessage
}

func (r *recorder) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dest = append(r.dest, destination)
	r.msgs = append(r.msgs, msg)
	return messaging.PublishResult{Topic: destination}, nil
}

func (r *recorder) Close() error { return nil }

func TestMessaging_UpsertSealsSecret(t *testing.T) {
	// Arrange
	rec := &recorder{}
	sealer := seal.NewXChaCha(seal.StaticKeyProvider{KeyBytes: bytes.Repeat([]byte{7}, 32)})
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewMessaging(rec, sealer, "", clock.NewFake(now), instrument.NewNoop())
	cred := entity.Credential{
		ID:          42,
		Name:        "Alice",
		AccessClass: entity.AccessClassGuest,
		Secret:      []byte("12345678901234567890"),
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
		Active:      true,
		Revision:    3,
	}

	// Act
	err := m.Upsert(context.Background(), cred, event.CredentialIssued)

	// Assert
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	if len(rec.msgs) != 1 || rec.dest[0] != event.CredentialDestination {
		t.Fatalf("published %d messages to %v", len(rec.msgs), rec.dest)
	}
	if bytes.Contains(rec.msgs[0].Body, []byte("GEZDGNBV")) || bytes.Contains(rec.msgs[0].Body, cred.Secret) {
		t.Fatalf("plaintext secret on the wire: %s", rec.msgs[0].Body)
	}

	var msg event.CredentialMessage
	if err := json.Unmarshal(rec.msgs[0].Body, &msg); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if msg.Action != event.CredentialIssued || msg.ID != 42 || msg.AccessClass != "guest" || msg.Revision != 3 {
		t.Fatalf("unexpected message: %+v", msg)
	}

	sealed, _ := base64.StdEncoding.DecodeString(msg.SealedSecret)
	plain, err := sealer.Open(sealed, Scope(42))
	if err != nil || !bytes.Equal(plain, cred.Secret) {
		t.Fatalf("Open = %q, %v", plain, err)
	}
	if _, err := sealer.Open(sealed, Scope(43)); err == nil {
		t.Fatalf("secret opened under another credential's scope")
	}
}

func TestMessaging_Remove(t *testing.T) {
	rec := &recorder{}
	sealer := seal.NewXChaCha(seal.StaticKeyProvider{KeyBytes: bytes.Repeat([]byte{7}, 32)})
	m := NewMessaging(rec, sealer, "doors", clock.New(), instrument.NewNoop())

	if err := m.Remove(context.Background(), entity.Credential{ID: 9, Name: "Bob"}); err != nil {
		t.Fatalf("Remove error: %v", err)
	}

	var msg event.CredentialMessage
	_ = json.Unmarshal(rec.msgs[0].Body, &msg)
	if rec.dest[0] != "doors" || msg.Action != event.CredentialRevoked || msg.SealedSecret != "" {
		t.Fatalf("unexpected revoke message: %s", rec.msgs[0].Body)
	}
	if string(rec.msgs[0].Key) != "9" {
		t.Fatalf("key = %q", rec.msgs[0].Key)
	}
}
