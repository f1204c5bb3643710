package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anastasipancheva/miniapppass/internal/pkg/config"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/julienschmidt/httprouter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	maxLoggedBodyBytes = 16 * 1024
	maskedValue        = "***"
)

// alwaysMasked never reach the log in clear: bearer tokens, client secrets,
// submitted codes and provisioning material.
var alwaysMasked = []string{"authorization", "client_secret", "access_token", "code", "secret", "uri", "qr_code"}

type maskSet map[string]struct{}

func newMaskSet(cfg config.Config) maskSet {
	m := make(maskSet, len(alwaysMasked))
	for _, k := range alwaysMasked {
		m[k] = struct{}{}
	}
	if cfg == nil {
		return m
	}
	for _, field := range cfg.GetArray("instrument.log_mask_fields") {
		m[strings.ToLower(field)] = struct{}{}
	}
	return m
}

func (m maskSet) has(key string) bool {
	_, ok := m[strings.ToLower(key)]
	return ok
}

func (m maskSet) headers(h http.Header) http.Header {
	out := h.Clone()
	for key := range out {
		if m.has(key) {
			out.Set(key, maskedValue)
		}
	}
	return out
}

func (m maskSet) value(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if m.has(k) {
				out[k] = maskedValue
				continue
			}
			out[k] = m.value(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = m.value(inner)
		}
		return out
	default:
		return v
	}
}

// body renders a captured body for the log. Only JSON is logged; anything
// else (including JSON cut at the capture limit) is reduced to its size so
// unmasked fields cannot slip through.
func (m maskSet) body(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return map[string]any{"omitted": true, "bytes": len(raw)}
	}
	return m.value(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status  int
	bytes   int
	body    *bytes.Buffer
	capture bool
	err     error
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	// event streams are long lived; keep them out of the log buffer
	w.capture = !strings.HasPrefix(w.Header().Get("Content-Type"), "text/event-stream")
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}

	if w.capture {
		if room := maxLoggedBodyBytes + 1 - w.body.Len(); room > 0 {
			w.body.Write(p[:min(len(p), room)])
		}
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) SetError(err error) {
	w.err = err
}

func (w *statusRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusRecorder) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

func matchedRoutePath(r *http.Request) string {
	if pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath(); pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// peekBody reads up to the capture limit and puts it back in front of the
// remaining body.
func peekBody(r *http.Request) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	//nolint:errcheck // best effort for logging only
	head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBodyBytes+1))
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return head
}

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPMetrics(meter metric.Meter) httpMetrics {
	var m httpMetrics
	var err error

	m.requests, err = meter.Int64Counter("http.server.requests", metric.WithDescription("Number of HTTP requests received"))
	if err != nil {
		slog.Error("failed to create http request counter", "error", err)
	}

	m.duration, err = meter.Float64Histogram("http.server.duration", metric.WithDescription("HTTP request duration in milliseconds"), metric.WithUnit("ms"))
	if err != nil {
		slog.Error("failed to create http duration histogram", "error", err)
	}

	return m
}

func (m httpMetrics) record(ctx context.Context, elapsed time.Duration, attrs []attribute.KeyValue) {
	if m.requests != nil {
		m.requests.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if m.duration != nil {
		m.duration.Record(ctx, float64(elapsed.Microseconds())/1000, metric.WithAttributes(attrs...))
	}
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	mask := newMaskSet(cfg)
	tracer := ins.Tracer("http.server")
	metrics := newHTTPMetrics(ins.Meter("http.server"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := matchedRoutePath(r)
			start := time.Now()

			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.HTTPRouteKey.String(route),
					semconv.ClientAddress(r.RemoteAddr),
				),
			)
			defer span.End()

			slog.InfoContext(ctx, "request received",
				"method", r.Method,
				"path", route,
				"uri", r.RequestURI,
				"headers", mask.headers(r.Header),
				"body", mask.body(peekBody(r)),
			)

			rec := &statusRecorder{ResponseWriter: w, body: &bytes.Buffer{}}
			next.ServeHTTP(rec, r.WithContext(ctx))

			status := rec.Status()
			elapsed := time.Since(start)
			attrs := []attribute.KeyValue{
				semconv.HTTPRequestMethodKey.String(r.Method),
				semconv.HTTPRouteKey.String(route),
				semconv.HTTPResponseStatusCodeKey.Int(status),
			}

			if rec.err != nil {
				span.RecordError(rec.err)
			}
			switch {
			case status >= http.StatusInternalServerError && rec.err != nil:
				span.SetStatus(codes.Error, rec.err.Error())
			case status >= http.StatusInternalServerError:
				span.SetStatus(codes.Error, http.StatusText(status))
			default:
				span.SetStatus(codes.Ok, "")
			}
			span.SetAttributes(append(attrs, attribute.Int("http.response_content_length", rec.bytes))...)
			metrics.record(ctx, elapsed, attrs)

			slog.InfoContext(ctx, "response sent",
				"method", r.Method,
				"path", route,
				"status", status,
				"bytes", rec.bytes,
				"latency_ms", elapsed.Milliseconds(),
				"body", mask.body(rec.body.Bytes()),
			)
		})
	}
}
