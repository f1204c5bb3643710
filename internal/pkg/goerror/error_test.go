package goerror

import (
	"errors"
	"net/http"
	"testing"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), code: CodeInternal, want: http.StatusInternalServerError},
		{name: "invalid format", err: NewInvalidFormat(), code: CodeInvalidFormat, want: http.StatusBadRequest},
		{name: "invalid input", err: NewInvalidInput(errors.New("bad")), code: CodeInvalidInput, want: http.StatusUnprocessableEntity},
		{name: "encoding", err: NewEncoding(errors.New("bad"), "Cannot render"), code: CodeEncoding, want: http.StatusUnprocessableEntity},
		{name: "not found", err: NewNotFound("Credential not found"), code: CodeNotFound, want: http.StatusNotFound},
		{name: "unauthorized", err: NewBusiness("Invalid client credentials", CodeUnauthorized), code: CodeUnauthorized, want: http.StatusUnauthorized},
		{name: "conflict", err: NewBusiness("Duplicate", CodeConflict), code: CodeConflict, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			var gerr *Error
			ok := errors.As(tt.err, &gerr)

			// Assert
			if !ok {
				t.Fatalf("errors.As failed for %v", tt.err)
			}
			if gerr.Code() != tt.code {
				t.Fatalf("Code() = %s, want %s", gerr.Code(), tt.code)
			}
			if gerr.StatusCode() != tt.want {
				t.Fatalf("StatusCode() = %d, want %d", gerr.StatusCode(), tt.want)
			}
		})
	}
}

func TestNewInvalidInput_Fields(t *testing.T) {
	// Act
	err := NewInvalidInput(nil, "name", "must not contain ':'")

	// Assert
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("not a goerror: %v", err)
	}
	if gerr.Code() != CodeInvalidInput || gerr.Fields()["name"] != "must not contain ':'" {
		t.Fatalf("unexpected error: %s fields=%v", gerr, gerr.Fields())
	}

	// odd pairs are a malformed request
	if err := NewInvalidInput(nil, "name"); err.(*Error).Code() != CodeInvalidFormat {
		t.Fatalf("odd pairs code = %s", err.(*Error).Code())
	}
}

func TestNewNotFound_WrapsSentinel(t *testing.T) {
	err := NewNotFound("Credential not found")

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("errors.Is(ErrNotFound) = false")
	}
	if err.(*Error).Msg() != "Credential not found" {
		t.Fatalf("Msg() = %q", err.(*Error).Msg())
	}
}
