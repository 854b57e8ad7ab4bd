package composables

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/hivehr/hivehr/pkg/constants"
)

// UseLogger returns the request-scoped logger entry. Falls back to the
// standard logger outside a request (background jobs, tests).
func UseLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(constants.LoggerKey)
	if logger == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logger.(*logrus.Entry)
}
