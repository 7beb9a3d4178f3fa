// Package logger builds log/slog loggers for the example programs.
package logger
