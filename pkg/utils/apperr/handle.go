package apperr

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs an application error with full detail before a summarized
// message is sent to the API consumer. Attached goerr values (project,
// database, userId) are flattened into the log record.
func Handle(ctx context.Context, err error) {
	logger := ctxlog.From(ctx)

	var goErr *goerr.Error
	if errors.As(err, &goErr) {
		attrs := []any{"error", err}
		for key, value := range goErr.Values() {
			attrs = append(attrs, key, value)
		}
		logger.Error("application error", attrs...)
		return
	}

	logger.Error("application error", "error", err)
}
