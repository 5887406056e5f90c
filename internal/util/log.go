package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFromContext returns the logger attached to ctx, or the global logger.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l != zerolog.DefaultContextLogger && l.GetLevel() != zerolog.Disabled {
			return l
		}
	}

	l := log.Logger
	return &l
}

// WithLogger attaches l to ctx.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// ComponentLogger returns a child of the context logger tagged with component.
func ComponentLogger(ctx context.Context, component string) zerolog.Logger {
	return LogFromContext(ctx).With().Str("component", component).Logger()
}
