package utils

import (
	"io"

	"github.com/MrSnakeDoc/delicious2fluid/internal/logger"
)

// Close closes c and ignores any error.
// Use for response bodies where the payload has already been consumed.
func Close(c io.Closer) {
	_ = c.Close()
}

// MustClose closes c and logs any error.
// Use for defer statements where we want to track close errors.
func MustClose(c io.Closer, log logger.Logger, what string) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
	}
}
