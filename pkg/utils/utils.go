package utils

import (
	"context"
	"log"

	"news-nexus/pkg/logger"
)

// GoSafe runs fn in a new goroutine and recovers from panics so a
// single bad article or feed cannot take down a batch run.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("recovered from panic: %v", r)
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether the context is still live, logging
// when a batch loop is being cut short.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.Warn("context canceled, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}

// TruncateText returns at most max runes of s. Truncation is a plain
// prefix cut so repeated runs produce identical model input.
func TruncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
