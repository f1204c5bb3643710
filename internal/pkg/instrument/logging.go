package instrument

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const masked = "***"

// defaultMaskKeys are always masked: provisioning material and credentials
// must never reach a log sink.
var defaultMaskKeys = []string{
	"secret", "totp_secret", "totpsecret", "uri", "qr_code",
	"client_secret", "token", "access_token", "password", "authorization",
}

func setDefaultLogger(cfg *Config, lp *sdklog.LoggerProvider) {
	var extra []slog.Handler
	if lp != nil {
		extra = append(extra, otelslog.NewHandler(cfg.ServiceName, otelslog.WithLoggerProvider(lp)))
	}

	slog.SetDefault(NewLogger(os.Stdout, cfg, extra...))
}

// NewLogger builds the JSON logger used across the service. Records carry
// the correlation id from the context and the service name, and masked keys
// are replaced before reaching any handler.
func NewLogger(w io.Writer, cfg *Config, extra ...slog.Handler) *slog.Logger {
	jsonHandler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       parseLevel(cfg.LogLevel),
		AddSource:   true,
		ReplaceAttr: replaceAttr,
	})

	var handler slog.Handler = jsonHandler
	if len(extra) > 0 {
		handler = &multiHandler{handlers: append([]slog.Handler{jsonHandler}, extra...)}
	}

	return slog.New(&contextHandler{
		Handler:     &maskHandler{handler: handler, maskKeys: buildMaskKeys(cfg.MaskFields)},
		serviceName: cfg.ServiceName,
	})
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
	case slog.LevelKey:
		a.Key = "severity"
	case slog.SourceKey:
		src, ok := a.Value.Any().(*slog.Source)
		if !ok {
			return a
		}
		_, rel, found := strings.Cut(src.File, "/internal/")
		if !found {
			return slog.Attr{}
		}
		return slog.String("file", fmt.Sprintf("%s:%d", filepath.Join("internal", rel), src.Line))
	}
	return a
}

type contextHandler struct {
	slog.Handler
	serviceName string
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if cID := GetCorrelationID(ctx); cID != "" {
		r.AddAttrs(slog.String("_cID", cID))
	}
	if h.serviceName != "" {
		r.AddAttrs(slog.String("service", h.serviceName))
	}

	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), serviceName: h.serviceName}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), serviceName: h.serviceName}
}

type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range m.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, handler := range m.handlers {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m *multiHandler) each(fn func(slog.Handler) slog.Handler) slog.Handler {
	handlers := make([]slog.Handler, 0, len(m.handlers))
	for _, handler := range m.handlers {
		handlers = append(handlers, fn(handler))
	}
	return &multiHandler{handlers: handlers}
}

type maskHandler struct {
	handler  slog.Handler
	maskKeys map[string]struct{}
}

func (h *maskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *maskHandler) Handle(ctx context.Context, record slog.Record) error {
	out := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		out.AddAttrs(maskAttr(attr, h.maskKeys))
		return true
	})

	return h.handler.Handle(ctx, out)
}

func (h *maskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	maskedAttrs := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		maskedAttrs = append(maskedAttrs, maskAttr(a, h.maskKeys))
	}
	return &maskHandler{handler: h.handler.WithAttrs(maskedAttrs), maskKeys: h.maskKeys}
}

func (h *maskHandler) WithGroup(name string) slog.Handler {
	return &maskHandler{handler: h.handler.WithGroup(name), maskKeys: h.maskKeys}
}

func buildMaskKeys(fields []string) map[string]struct{} {
	maskKeys := make(map[string]struct{}, len(defaultMaskKeys)+len(fields))
	for _, field := range append(append([]string{}, defaultMaskKeys...), fields...) {
		field = strings.TrimSpace(strings.ToLower(field))
		if field != "" {
			maskKeys[field] = struct{}{}
		}
	}
	return maskKeys
}

func maskAttr(attr slog.Attr, maskKeys map[string]struct{}) slog.Attr {
	if _, found := maskKeys[strings.ToLower(attr.Key)]; found {
		return slog.String(attr.Key, masked)
	}

	switch attr.Value.Kind() {
	case slog.KindGroup:
		group := attr.Value.Group()
		out := make([]slog.Attr, 0, len(group))
		for _, ga := range group {
			out = append(out, maskAttr(ga, maskKeys))
		}
		attr.Value = slog.GroupValue(out...)
	case slog.KindString:
		if m, ok := maskJSON([]byte(attr.Value.String()), maskKeys); ok {
			attr.Value = slog.StringValue(m)
		}
	case slog.KindAny:
		switch v := attr.Value.Any().(type) {
		case map[string]any, []any:
			attr.Value = slog.AnyValue(maskData(v, maskKeys))
		case map[string]string:
			converted := make(map[string]any, len(v))
			for k, v2 := range v {
				converted[k] = v2
			}
			attr.Value = slog.AnyValue(maskData(converted, maskKeys))
		case []byte:
			if m, ok := maskJSON(v, maskKeys); ok {
				attr.Value = slog.StringValue(m)
			}
		}
	}

	return attr
}

func maskJSON(payload []byte, maskKeys map[string]struct{}) (string, bool) {
	if len(payload) == 0 || (payload[0] != '{' && payload[0] != '[') {
		return "", false
	}

	var body any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	out, err := json.Marshal(maskData(body, maskKeys))
	if err != nil {
		return "", false
	}
	return string(out), true
}

func maskData(v any, maskKeys map[string]struct{}) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, v2 := range val {
			if _, found := maskKeys[strings.ToLower(k)]; found {
				out[k] = masked
			} else {
				out[k] = maskData(v2, maskKeys)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, v2 := range val {
			out[i] = maskData(v2, maskKeys)
		}
		return out
	default:
		return v
	}
}
