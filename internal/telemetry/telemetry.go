// Package telemetry is the one place this module reaches for structured
// logging and error reporting: routine diagnostics go to stderr through
// log/slog, and genuine failures are also forwarded to Sentry when a DSN
// is configured.
//
// Every caught-and-logged error class — "Effect error:", "Emitter:
// subscriber for '%s' threw:", "Event handler error for '%s':",
// "Component <%s> setup error:" — routes through Capture so the prefix
// stays stable regardless of which package raised it.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/getsentry/sentry-go"
)

var (
	mu     sync.Mutex
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	hub    *sentry.Hub
)

// SetLogger overrides the package-wide logger. Tests use this to capture
// output instead of writing to stderr.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	logger = l
}

// Init configures Sentry error reporting for the given DSN. An empty dsn
// disables reporting (Capture becomes log-only), which is the default —
// nothing is sent anywhere unless a caller opts in.
func Init(dsn string) error {
	mu.Lock()
	defer mu.Unlock()
	if dsn == "" {
		hub = nil
		return nil
	}
	client, err := sentry.NewClient(sentry.ClientOptions{Dsn: dsn, AttachStacktrace: true})
	if err != nil {
		return err
	}
	hub = sentry.NewHub(client, sentry.NewScope())
	return nil
}

// Capture logs recovered at level error under prefix and, if Sentry is
// configured, forwards it as an exception event tagged with prefix. This
// is the single call site every caught-and-logged boundary routes
// through: effect panics, emitter subscriber panics, event handler
// panics, and component setup failures.
func Capture(prefix string, recovered any) {
	CaptureTagged(prefix, recovered, nil)
}

// CaptureTagged is Capture with extra structured context: each tag is
// attached to the log record as an attribute and, when Sentry is
// configured, to the event as a tag. The component shell uses this to
// stamp failures with the instance id of the component that raised them.
func CaptureTagged(prefix string, recovered any, tags map[string]string) {
	mu.Lock()
	h := hub
	l := logger
	mu.Unlock()

	err, ok := recovered.(error)
	if !ok {
		err = fmt.Errorf("%s %v", prefix, recovered)
	}
	attrs := make([]any, 0, 2+2*len(tags))
	attrs = append(attrs, "error", err)
	for k, v := range tags {
		attrs = append(attrs, k, v)
	}
	l.Error(prefix, attrs...)
	if h != nil {
		h.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("component", prefix)
			for k, v := range tags {
				scope.SetTag(k, v)
			}
			h.CaptureException(err)
		})
	}
}

// Infof logs an informational message at level info.
func Infof(ctx context.Context, format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()
	l.InfoContext(ctx, fmt.Sprintf(format, args...))
}
