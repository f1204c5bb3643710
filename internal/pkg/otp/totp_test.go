package otp

import (
	"testing"
	"time"
)

// RFC 6238 appendix B secret for SHA1.
var rfcSecret = Secret("12345678901234567890")

func TestTOTP_GenerateCode(t *testing.T) {
	tests := []struct {
		unix int64
		want string
	}{
		{unix: 59, want: "287082"},
		{unix: 1111111109, want: "081804"},
		{unix: 1234567890, want: "005924"},
		{unix: 2000000000, want: "279037"},
	}

	engine := NewTOTP(DefaultWindow)
	for _, tt := range tests {
		// Act
		got, err := engine.GenerateCode(rfcSecret, time.Unix(tt.unix, 0))

		// Assert
		if err != nil {
			t.Fatalf("GenerateCode(%d) error: %v", tt.unix, err)
		}
		if got != tt.want {
			t.Fatalf("GenerateCode(%d) = %q, want %q", tt.unix, got, tt.want)
		}
	}
}

func TestTOTP_ValidateRoundTrip(t *testing.T) {
	engine := NewTOTP(DefaultWindow)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 20; i++ {
		// Arrange
		secret, err := GenerateSecret()
		if err != nil {
			t.Fatalf("GenerateSecret error: %v", err)
		}
		at := base.Add(time.Duration(i*17) * time.Second)

		code, err := engine.GenerateCode(secret, at)
		if err != nil {
			t.Fatalf("GenerateCode error: %v", err)
		}

		// Act
		ok := engine.Validate(secret, code, at)

		// Assert
		if !ok {
			t.Fatalf("Validate(%s) at %v = false, want true", code, at)
		}
	}
}

func TestTOTP_ValidateWindow(t *testing.T) {
	at := time.Unix(1234567890, 0)
	code := "005924"

	tests := []struct {
		name   string
		window int
		shift  time.Duration
		want   bool
	}{
		{name: "same step", window: 1, shift: 0, want: true},
		{name: "one step ahead", window: 1, shift: 30 * time.Second, want: true},
		{name: "one step behind", window: 1, shift: -30 * time.Second, want: true},
		{name: "beyond window ahead", window: 1, shift: 61 * time.Second, want: false},
		{name: "beyond window behind", window: 1, shift: -61 * time.Second, want: false},
		{name: "zero window next step", window: 0, shift: 30 * time.Second, want: false},
		{name: "wide window", window: 3, shift: 90 * time.Second, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			engine := NewTOTP(tt.window)

			// Act
			got := engine.Validate(rfcSecret, code, at.Add(tt.shift))

			// Assert
			if got != tt.want {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTOTP_ValidateRejectsMalformed(t *testing.T) {
	engine := NewTOTP(DefaultWindow)
	at := time.Unix(1234567890, 0)

	for _, code := range []string{"", "05924", "0059240", "00592a", " 05924", "００５９２４"} {
		if engine.Validate(rfcSecret, code, at) {
			t.Fatalf("Validate(%q) = true, want false", code)
		}
	}

	if engine.Validate(nil, "005924", at) {
		t.Fatalf("Validate with empty secret = true, want false")
	}
}

func TestTOTP_ValidateNearEpoch(t *testing.T) {
	engine := NewTOTP(DefaultWindow)

	if !engine.Validate(rfcSecret, "287082", time.Unix(10, 0)) {
		t.Fatalf("Validate near epoch = false, want true")
	}
}

func TestNewTOTP_NegativeWindow(t *testing.T) {
	if got := NewTOTP(-4).Window(); got != DefaultWindow {
		t.Fatalf("Window() = %d, want %d", got, DefaultWindow)
	}
}

func TestValidFormat(t *testing.T) {
	if !ValidFormat("000000") {
		t.Fatalf("ValidFormat(000000) = false")
	}
	if ValidFormat("12 456") {
		t.Fatalf("ValidFormat(12 456) = true")
	}
}
