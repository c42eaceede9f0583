package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces every sensitive value.
const MaskValue = "***REDACTED***"

// sensitiveKeys are attribute keys whose value is always masked.
var sensitiveKeys = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"password":            true,
	"passwd":              true,
	"token":               true,
	"github_token":        true,
	"gh_token":            true,
	"api_key":             true,
	"apikey":              true,
	"secret":              true,
	"secret_key":          true,
	"private_key":         true,
	"hs_ed25519_secret":   true,
}

// sensitiveKeywords mask any key containing them, e.g. "import_token".
// A bare "key" is not listed: "onion_key" and "public_key" are public.
var sensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "private", "credential",
}

// sensitivePatterns mask values regardless of their key.
var sensitivePatterns = []*regexp.Regexp{
	// GitHub personal, OAuth, user, server and refresh tokens
	regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`),
	// GitHub fine-grained personal access tokens
	regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{22,}\b`),
	// JWTs
	regexp.MustCompile(`\beyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`),
	// Authorization header values
	regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`),
	// PEM private keys
	regexp.MustCompile(`(?i)-----BEGIN[A-Z ]*(PRIVATE|SECRET) KEY-----`),
	// tor onion service secret key file header
	regexp.MustCompile(`== ed25519v1-secret:`),
}

// SecureHandler is an slog.Handler that masks sensitive attributes before
// delegating to the wrapped handler.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler wraps handler. A nil handler wraps slog.Default's.
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs implements slog.Handler.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks a, descending into groups.
func maskAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		masked := make([]slog.Attr, len(group))
		for i, ga := range group {
			masked[i] = maskAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}
	if a.Value.Kind() == slog.KindString || a.Value.Kind() == slog.KindAny {
		if IsSensitiveValue(a.Value.String()) {
			return slog.String(a.Key, MaskValue)
		}
	}
	return a
}

// IsSensitiveKey reports whether values logged under key are masked.
func IsSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	if sensitiveKeys[key] {
		return true
	}
	for _, kw := range sensitiveKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value looks like a credential.
func IsSensitiveValue(value string) bool {
	for _, p := range sensitivePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// levelFor maps the verbose flag onto a level: Debug or Warn.
func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger returns a text logger writing to w.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(verbose)}
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, opts)))
}

// NewSecureJSONLogger returns a JSON logger writing to w.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFor(verbose)}
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, opts)))
}

// Discard returns a logger that drops every record. Components use it when
// no logger is configured.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
