// Package logging provides structured logging for the autocare client.
//
// It wraps log/slog with a JSON handler writing to a size-rotated file under
// the user's config directory. Commands and the TUI never print internal
// failures to the terminal; they log them here and show a short user message.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	reqLog := logger.WithUser("42").WithRequest(requestID)
//	reqLog.Warn("token refresh failed", "error", err)
//
// All types are safe for concurrent use. Child loggers created with With*
// share the parent's writer.
package logging
