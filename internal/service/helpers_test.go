package service

import (
	"io"
	"log/slog"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
