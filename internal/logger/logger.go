// Package logger provides logging initialization functionality.
package logger

import (
	"github.com/rs/zerolog"
	"os"
	"time"
)

// InitLog initializes a zerolog logger writing to stderr.
func InitLog() *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	Logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	return &Logger
}
