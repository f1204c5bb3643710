package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

// mirrorSink keeps the last state it was sent, like a door controller does.
// The first upsert is held back by delay.
type mirrorSink struct {
	mu    sync.Mutex
	delay time.Duration
	calls int
	users map[int64]entity.Credential
}

func newMirrorSink(delay time.Duration) *mirrorSink {
	return &mirrorSink{delay: delay, users: map[int64]entity.Credential{}}
}

func (m *mirrorSink) Name() string { return "mirror" }

func (m *mirrorSink) Upsert(_ context.Context, c entity.Credential, _ event.CredentialAction) error {
	m.mu.Lock()
	m.calls++
	first := m.calls == 1
	m.mu.Unlock()

	if first {
		time.Sleep(m.delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[c.ID] = c
	return nil
}

func (m *mirrorSink) Remove(_ context.Context, c entity.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, c.ID)
	return nil
}

func (m *mirrorSink) get(id int64) (entity.Credential, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.users[id]
	return c, ok
}

func withSinks(sinks ...SyncSink) option {
	return func(d *Dependency) { d.Sinks = sinks }
}

func TestUsecase_SyncRevokeNotOvertakenBySlowUpsert(t *testing.T) {
	// Arrange
	mirror := newMirrorSink(100 * time.Millisecond)
	f := newFixture(t, withSinks(mirror))
	issued := f.issue(t, "Alice", "guest")

	// Act
	err := f.uc.Revoke(context.Background(), RevokeInput{ID: issued.ID})

	// Assert
	if err != nil {
		t.Fatalf("Revoke error: %v", err)
	}
	if err := f.routine.Wait(); err != nil {
		t.Fatalf("sync error: %v", err)
	}
	if c, ok := mirror.get(issued.ID); ok {
		t.Fatalf("revoked credential still mirrored: %+v", c)
	}
}

func TestUsecase_SyncKeepsLatestRotation(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mirror := newMirrorSink(100 * time.Millisecond)
	f := newFixture(t, withSinks(mirror))
	issued := f.issue(t, "Bob", "permanent")

	// Act
	first, err := f.uc.Rotate(ctx, RotateInput{ID: issued.ID})
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	second, err := f.uc.Rotate(ctx, RotateInput{ID: issued.ID})
	if err != nil {
		t.Fatalf("Rotate error: %v", err)
	}
	if err := f.routine.Wait(); err != nil {
		t.Fatalf("sync error: %v", err)
	}

	// Assert
	got, ok := mirror.get(issued.ID)
	if !ok {
		t.Fatalf("credential %d missing from mirror", issued.ID)
	}
	if got.Revision != second.Revision || !got.Secret.Equal(second.Secret) {
		t.Fatalf("mirror holds revision %d, want %d", got.Revision, second.Revision)
	}
	if first.Revision >= second.Revision {
		t.Fatalf("revisions not increasing: %d then %d", first.Revision, second.Revision)
	}
}

func TestSyncQueue_Enqueue(t *testing.T) {
	key := laneKey{sink: "mirror", id: 7}

	tests := []struct {
		name  string
		setup func(q *syncQueue)
		rev   uint64
		rm    bool
		want  bool
	}{
		{
			name:  "first upsert",
			setup: func(*syncQueue) {},
			rev:   1,
			want:  true,
		},
		{
			name:  "newer upsert",
			setup: func(q *syncQueue) { q.enqueue(key, 2, false) },
			rev:   3,
			want:  true,
		},
		{
			name:  "older upsert dropped",
			setup: func(q *syncQueue) { q.enqueue(key, 4, false) },
			rev:   3,
			want:  false,
		},
		{
			name:  "same revision dropped",
			setup: func(q *syncQueue) { q.enqueue(key, 4, false) },
			rev:   4,
			want:  false,
		},
		{
			name:  "upsert after remove dropped",
			setup: func(q *syncQueue) { q.enqueue(key, 2, true) },
			rev:   5,
			want:  false,
		},
		{
			name:  "remove after newer upsert",
			setup: func(q *syncQueue) { q.enqueue(key, 9, false) },
			rev:   3,
			rm:    true,
			want:  true,
		},
		{
			name:  "second remove dropped",
			setup: func(q *syncQueue) { q.enqueue(key, 3, true) },
			rev:   3,
			rm:    true,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := newSyncQueue()
			tt.setup(q)

			_, _, ok := q.enqueue(key, tt.rev, tt.rm)

			if ok != tt.want {
				t.Fatalf("enqueue ok = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestSyncQueue_ChainsPerLane(t *testing.T) {
	q := newSyncQueue()
	a := laneKey{sink: "mirror", id: 1}
	b := laneKey{sink: "mirror", id: 2}

	prev1, done1, _ := q.enqueue(a, 1, false)
	prev2, done2, _ := q.enqueue(a, 2, false)
	prevOther, _, _ := q.enqueue(b, 1, false)

	if prev1 != nil || prevOther != nil {
		t.Fatal("first call of a lane must not wait")
	}
	if prev2 != done1 {
		t.Fatal("second call must wait on the first")
	}

	q.release(a, done1)
	q.release(a, done2)
	prev3, _, _ := q.enqueue(a, 3, false)
	if prev3 != nil {
		t.Fatal("drained lane must not keep a tail")
	}
}

func TestUsecase_ConcurrentRotateAndAcknowledge(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t)
	issued := f.issue(t, "Carol", "permanent")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		rotated []*entity.IssuedCredential
		acked   []*entity.Credential
		errs    []error
	)

	// Act
	for range 16 {
		wg.Go(func() {
			out, err := f.uc.Rotate(ctx, RotateInput{ID: issued.ID})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			rotated = append(rotated, out)
		})
		wg.Go(func() {
			out, err := f.uc.Acknowledge(ctx, AcknowledgeInput{ID: issued.ID})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			acked = append(acked, out)
		})
	}
	wg.Wait()

	// Assert
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	var last *entity.IssuedCredential
	for _, r := range rotated {
		if r.Disclosed {
			t.Fatalf("rotate at revision %d returned disclosed", r.Revision)
		}
		if last == nil || r.Revision > last.Revision {
			last = r
		}
	}
	var lastAck uint64
	for _, a := range acked {
		if !a.Disclosed {
			t.Fatalf("acknowledge at revision %d returned undisclosed", a.Revision)
		}
		lastAck = max(lastAck, a.Revision)
	}

	got, err := f.uc.Get(ctx, GetInput{ID: issued.ID})
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if want := uint64(1 + len(rotated) + len(acked)); got.Revision != want {
		t.Fatalf("revision = %d, want %d", got.Revision, want)
	}
	if got.Secret.Base32() != last.Provisioning.Secret {
		t.Fatal("stored secret is not the one handed out by the last rotation")
	}
	if got.Disclosed != (lastAck > last.Revision) {
		t.Fatalf("disclosed = %v, last acknowledge %d, last rotate %d", got.Disclosed, lastAck, last.Revision)
	}

	if err := f.routine.Wait(); err != nil {
		t.Fatalf("sync error: %v", err)
	}
}

func TestUsecase_ConcurrentRevokeAndRotate(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mirror := newMirrorSink(20 * time.Millisecond)
	f := newFixture(t, withSinks(mirror))
	issued := f.issue(t, "Dave", "guest")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		revoked   int
		unexpects []error
	)

	// Act
	for range 4 {
		wg.Go(func() {
			err := f.uc.Revoke(ctx, RevokeInput{ID: issued.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				revoked++
			case codeOf(err) != goerror.CodeNotFound:
				unexpects = append(unexpects, err)
			}
		})
		wg.Go(func() {
			_, err := f.uc.Rotate(ctx, RotateInput{ID: issued.ID})
			if err != nil && codeOf(err) != goerror.CodeNotFound {
				mu.Lock()
				unexpects = append(unexpects, err)
				mu.Unlock()
			}
		})
	}
	wg.Wait()

	// Assert
	if len(unexpects) > 0 {
		t.Fatalf("unexpected errors: %v", unexpects)
	}
	if revoked != 1 {
		t.Fatalf("successful revokes = %d, want 1", revoked)
	}

	_, err := f.uc.Rotate(ctx, RotateInput{ID: issued.ID})
	wantCode(t, err, goerror.CodeNotFound)

	if err := f.routine.Wait(); err != nil {
		t.Fatalf("sync error: %v", err)
	}
	if _, ok := mirror.get(issued.ID); ok {
		t.Fatal("revoked credential still mirrored")
	}
}

func codeOf(err error) goerror.Code {
	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return gerr.Code()
	}
	return 0
}
