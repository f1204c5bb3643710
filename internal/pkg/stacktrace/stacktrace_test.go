package stacktrace

import (
	"slices"
	"testing"
)

func TestInternalPaths(t *testing.T) {
	// Arrange
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/anastasipancheva/miniapppass/internal/access/usecase.(*Usecase).Evaluate(...)
	/src/internal/access/usecase/access_evaluate.go:41 +0x1d
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2220 +0x29
github.com/anastasipancheva/miniapppass/internal/pkg/router.middlewareRecoverer.func1()
	/src/internal/pkg/router/middleware_recover.go:33
`)

	// Act
	got := InternalPaths(stack)

	// Assert
	want := []string{
		"internal/access/usecase/access_evaluate.go:41",
		"internal/pkg/router/middleware_recover.go:33",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("InternalPaths = %v, want %v", got, want)
	}
}
