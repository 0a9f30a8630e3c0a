package logging

import (
	"log/slog"
	"os"
)

// Setup installs a JSON slog logger as the process default. The service
// attribute tags every line so both binaries can share one log pipeline.
func Setup(service string, level slog.Level) {
	logger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	).With(slog.String("service", service))

	slog.SetDefault(logger)
}
