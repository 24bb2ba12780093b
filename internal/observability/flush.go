package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry runs before process exit. It writes the metrics textfile when
// textfilePath is set. Log syncing stays with the caller.
func FlushTelemetry(ctx context.Context, logger *zap.Logger, textfilePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if textfilePath == "" {
		return nil
	}
	if err := WriteTextfile(textfilePath); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	if logger != nil {
		logger.Debug("metrics textfile written", zap.String("path", textfilePath))
	}
	return nil
}
