package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// StacktraceHandler decorates a slog handler so that records carrying an
// error under the error attribute also emit the error's captured stack.
// The trajgo error constructors attach stacks via cockroachdb/errors, so a
// failure logged at the pipeline boundary keeps the frame it originated in.
type StacktraceHandler struct {
	next slog.Handler
}

// WithStacktraces wraps next so that error attributes are expanded with a
// stacktrace attribute before the record is emitted.
func WithStacktraces(next slog.Handler) slog.Handler {
	return &StacktraceHandler{next: next}
}

func (h *StacktraceHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *StacktraceHandler) Handle(ctx context.Context, r slog.Record) error {
	var trace string
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		if err, ok := attr.Value.Any().(error); ok {
			trace = extractStacktrace(err)
		}
		return false
	})
	if trace != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, trace))
	}
	return h.next.Handle(ctx, r)
}

func (h *StacktraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &StacktraceHandler{next: h.next.WithAttrs(attrs)}
}

func (h *StacktraceHandler) WithGroup(name string) slog.Handler {
	return &StacktraceHandler{next: h.next.WithGroup(name)}
}

// extractStacktrace returns the stack recorded by cockroachdb/errors, or ""
// when the error carries none.
func extractStacktrace(err error) string {
	details := errors.GetSafeDetails(err).SafeDetails
	if len(details) == 0 {
		return ""
	}
	return details[0]
}
