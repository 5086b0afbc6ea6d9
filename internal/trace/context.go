package trace

import "context"

// carrier is what travels in a context: the tracer and the innermost
// open span, which becomes the parent of the next one.
type carrier struct {
	tracer Tracer
	span   uint64
}

type ctxKey struct{}

func carrierFrom(ctx context.Context) carrier {
	if ctx != nil {
		if c, ok := ctx.Value(ctxKey{}).(carrier); ok {
			return c
		}
	}
	return carrier{tracer: Nop}
}

// FromContext returns the tracer attached to ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return carrierFrom(ctx).tracer
}

// WithTracer attaches t to ctx; spans started below it are roots.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, ctxKey{}, carrier{tracer: t})
}

// CurrentSpan is the ID of the innermost span started through ctx, 0 if none.
func CurrentSpan(ctx context.Context) uint64 {
	return carrierFrom(ctx).span
}
