// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tenantry Contributors

package errutil

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"
)

// correlated is implemented by public errors that carry a per-instance id.
type correlated interface {
	CorrelationID() string
}

// LogError logs an error with structured context if it's an oops error.
// For oops errors, it extracts and logs the message, code and context.
// For standard errors, it logs the error string.
// Errors carrying a correlation id log it as error_id.
func LogError(logger *slog.Logger, msg string, err error) {
	LogErrorContext(context.Background(), logger, msg, err)
}

// LogErrorContext is LogError with a context, so handlers that read trace
// data from the context can decorate the record.
func LogErrorContext(ctx context.Context, logger *slog.Logger, msg string, err error) {
	attrs := errorAttrs(err)
	logger.ErrorContext(ctx, msg, attrs...)
}

func errorAttrs(err error) []any {
	var attrs []any
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
	} else {
		attrs = append(attrs, "error", err)
	}
	var c correlated
	if errors.As(err, &c) {
		attrs = append(attrs, "error_id", c.CorrelationID())
	}
	return attrs
}
