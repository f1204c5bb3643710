package usecase

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/anastasipancheva/miniapppass/internal/access/entity"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goerror"
	"github.com/anastasipancheva/miniapppass/internal/pkg/otp"
	"github.com/anastasipancheva/miniapppass/internal/shared/event"
)

func TestUsecase_Evaluate_GuestScenario(t *testing.T) {
	// Arrange
	f := newFixture(t)
	alice := f.issue(t, "Alice", "guest")
	code := f.codeAt(t, alice.Secret, t0.Add(15*time.Second))

	// Act
	inWindow := f.evaluateAt(t0.Add(15*time.Second), code)
	tooLate := f.evaluateAt(t0.Add(55*time.Second), code)

	// Assert
	if inWindow.Outcome != entity.OutcomeGranted {
		t.Fatalf("outcome at t0+15s = %s, want granted", inWindow.Outcome)
	}
	if inWindow.PrincipalID == nil || *inWindow.PrincipalID != alice.ID {
		t.Fatalf("PrincipalID = %v, want %d", inWindow.PrincipalID, alice.ID)
	}
	if tooLate.Outcome != entity.OutcomeDeniedNoMatch {
		t.Fatalf("outcome at t0+55s = %s, want denied_no_match", tooLate.Outcome)
	}
	if tooLate.PrincipalID != nil {
		t.Fatalf("PrincipalID = %d, want nil", *tooLate.PrincipalID)
	}
	if !alice.ExpiresAt.Equal(t0.Add(7 * 24 * time.Hour)) {
		t.Fatalf("ExpiresAt = %v, want t0+7d", alice.ExpiresAt)
	}
	if tooLate.Seq != inWindow.Seq+1 {
		t.Fatalf("seqs = %d, %d, want consecutive", inWindow.Seq, tooLate.Seq)
	}
}

func TestUsecase_Evaluate_Window(t *testing.T) {
	// Arrange
	f := newFixture(t)
	c := f.issue(t, "Alice", "permanent")

	tests := []struct {
		name  string
		shift time.Duration
		want  entity.Outcome
	}{
		{name: "previous step", shift: -30 * time.Second, want: entity.OutcomeGranted},
		{name: "same step", shift: 0, want: entity.OutcomeGranted},
		{name: "next step", shift: 30 * time.Second, want: entity.OutcomeGranted},
		{name: "two steps behind", shift: -61 * time.Second, want: entity.OutcomeDeniedNoMatch},
		{name: "two steps ahead", shift: 61 * time.Second, want: entity.OutcomeDeniedNoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			at := t0.Add(time.Hour)
			code := f.codeAt(t, c.Secret, at.Add(tt.shift))

			// Act
			got := f.evaluateAt(at, code)

			// Assert
			if got.Outcome != tt.want {
				t.Fatalf("outcome = %s, want %s", got.Outcome, tt.want)
			}
		})
	}
}

func TestUsecase_Evaluate_InvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{name: "empty", code: "", want: ""},
		{name: "short", code: "12345", want: "12345"},
		{name: "letters", code: "12ab56", want: "12ab56"},
		{name: "long", code: strings.Repeat("9", 40), want: strings.Repeat("9", 32)},
		{name: "long two-byte runes", code: strings.Repeat("é", 20), want: strings.Repeat("é", 16)},
		{name: "long three-byte runes", code: strings.Repeat("€", 12), want: strings.Repeat("€", 10)},
		{name: "invalid bytes", code: "\xff12345", want: "\uFFFD12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture(t)
			f.issue(t, "Alice", "guest")

			// Act
			got := f.evaluateAt(t0, tt.code)

			// Assert
			if got.Outcome != entity.OutcomeDeniedInvalidFormat {
				t.Fatalf("outcome = %s, want denied_invalid_format", got.Outcome)
			}
			if got.Code != tt.want {
				t.Fatalf("audited code = %q, want %q", got.Code, tt.want)
			}
			if !utf8.ValidString(got.Code) {
				t.Fatalf("audited code %q is not valid UTF-8", got.Code)
			}
			if f.audit.Len() != 1 {
				t.Fatalf("audit len = %d, want 1", f.audit.Len())
			}
		})
	}
}

func TestUsecase_Evaluate_SkipsExpiredAndInactive(t *testing.T) {
	// Arrange
	f := newFixture(t)
	guest := f.issue(t, "Alice", "guest")
	at := t0.Add(7 * 24 * time.Hour)
	code := f.codeAt(t, guest.Secret, at)

	// Act
	got := f.evaluateAt(at, code)

	// Assert
	if got.Outcome != entity.OutcomeDeniedNoMatch {
		t.Fatalf("outcome at expiry = %s, want denied_no_match", got.Outcome)
	}
}

func TestUsecase_Evaluate_TieBreak(t *testing.T) {
	// Arrange
	fixed := otp.Secret([]byte("12345678901234567890"))
	f := newFixture(t, func(d *Dependency) {
		d.SecretGenerator = func() (otp.Secret, error) { return fixed.Clone(), nil }
	})
	first := f.issue(t, "First", "permanent")
	f.clock.Advance(time.Second)
	f.issue(t, "Second", "permanent")
	code := f.codeAt(t, fixed, t0.Add(time.Second))

	// Act
	got := f.evaluateAt(t0.Add(time.Second), code)

	// Assert
	if got.Outcome != entity.OutcomeGranted {
		t.Fatalf("outcome = %s, want granted", got.Outcome)
	}
	if *got.PrincipalID != first.ID {
		t.Fatalf("PrincipalID = %d, want earliest issued %d", *got.PrincipalID, first.ID)
	}
}

func TestUsecase_Lockdown(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	alice := f.issue(t, "Alice", "permanent")
	code := f.codeAt(t, alice.Secret, t0)
	base := len(f.notifier.all())

	// Act
	state := f.uc.SetLockdown(ctx, SetLockdownInput{Active: true})
	again := f.uc.SetLockdown(ctx, SetLockdownInput{Active: true})
	denied := f.evaluateAt(t0, code)
	badFormat := f.evaluateAt(t0, "abc")

	// Assert
	if !state.Active || !state.ChangedAt.Equal(t0) {
		t.Fatalf("state = %+v, want active at t0", state)
	}
	if !again.ChangedAt.Equal(state.ChangedAt) {
		t.Fatalf("no-op toggle moved ChangedAt")
	}
	if denied.Outcome != entity.OutcomeDeniedLockdown || badFormat.Outcome != entity.OutcomeDeniedLockdown {
		t.Fatalf("outcomes = %s, %s, want denied_lockdown", denied.Outcome, badFormat.Outcome)
	}
	if f.audit.Len() != 2 {
		t.Fatalf("audit len = %d, want 2", f.audit.Len())
	}

	msgs := f.notifier.all()[base:]
	if len(msgs) != 1 || msgs[0].Severity != event.SeverityWarning {
		t.Fatalf("notifications = %+v, want one warning", msgs)
	}

	lifted := f.uc.SetLockdown(ctx, SetLockdownInput{Active: false})
	if lifted.Active || f.uc.Lockdown(ctx).Active {
		t.Fatalf("lockdown still active")
	}
	if got := f.evaluateAt(t0, code); got.Outcome != entity.OutcomeGranted {
		t.Fatalf("outcome after lift = %s, want granted", got.Outcome)
	}
	msgs = f.notifier.all()[base:]
	if len(msgs) != 2 || msgs[1].Severity != event.SeverityInfo {
		t.Fatalf("notifications = %+v, want warning then info", msgs)
	}
}

func TestUsecase_ListAttempts(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	alice := f.issue(t, "Alice", "permanent")
	f.evaluateAt(t0, f.codeAt(t, alice.Secret, t0))
	f.evaluateAt(t0, "000")
	f.evaluateAt(t0, f.codeAt(t, alice.Secret, t0))

	tests := []struct {
		name    string
		in      ListAttemptsInput
		wantSeq []uint64
	}{
		{name: "all", in: ListAttemptsInput{}, wantSeq: []uint64{3, 2, 1}},
		{name: "granted", in: ListAttemptsInput{Outcome: "granted"}, wantSeq: []uint64{3, 1}},
		{name: "denied", in: ListAttemptsInput{Outcome: "denied"}, wantSeq: []uint64{2}},
		{name: "limit", in: ListAttemptsInput{Limit: 1}, wantSeq: []uint64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			out, err := f.uc.ListAttempts(ctx, tt.in)

			// Assert
			if err != nil {
				t.Fatalf("ListAttempts error: %v", err)
			}
			if len(out.Attempts) != len(tt.wantSeq) {
				t.Fatalf("len = %d, want %d", len(out.Attempts), len(tt.wantSeq))
			}
			for i, a := range out.Attempts {
				if a.Seq != tt.wantSeq[i] {
					t.Fatalf("[%d] seq = %d, want %d", i, a.Seq, tt.wantSeq[i])
				}
			}
		})
	}

	_, err := f.uc.ListAttempts(ctx, ListAttemptsInput{Outcome: "maybe"})
	wantCode(t, err, goerror.CodeInvalidInput)

	_, err = f.uc.ListAttempts(ctx, ListAttemptsInput{Limit: 501})
	wantCode(t, err, goerror.CodeInvalidInput)
}

func TestUsecase_ArchiveAttempts(t *testing.T) {
	// Arrange
	f := newFixture(t)
	ctx := context.Background()
	alice := f.issue(t, "Alice", "permanent")
	f.evaluateAt(t0, f.codeAt(t, alice.Secret, t0))
	f.evaluateAt(t0, "12")
	f.evaluateAt(t0, "999999")

	// Act
	out, err := f.uc.ArchiveAttempts(ctx, ArchiveAttemptsInput{Outcome: "denied"})

	// Assert
	if err != nil {
		t.Fatalf("ArchiveAttempts error: %v", err)
	}
	if out.Entries != 2 {
		t.Fatalf("Entries = %d, want 2", out.Entries)
	}
	if out.Bucket != "audit" || !strings.HasPrefix(out.Key, "audit/2027/01/15/attempts-denied-") {
		t.Fatalf("location = %s/%s", out.Bucket, out.Key)
	}
	if !strings.HasPrefix(out.URL, "memory://audit/") {
		t.Fatalf("URL = %q", out.URL)
	}

	data, ok := f.storage.Object(out.Bucket, out.Key)
	if !ok {
		t.Fatalf("archive object missing")
	}
	var outcomes []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		var line struct {
			Seq     uint64 `json:"seq"`
			Outcome string `json:"outcome"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("line %q: %v", sc.Text(), err)
		}
		outcomes = append(outcomes, line.Outcome)
	}
	if len(outcomes) != 2 || outcomes[0] != "denied_invalid_format" || outcomes[1] != "denied_no_match" {
		t.Fatalf("outcomes = %v, want oldest first", outcomes)
	}

	if f.audit.Len() != 3 {
		t.Fatalf("archive trimmed the audit log")
	}
}
