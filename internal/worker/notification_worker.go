package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/owaste/rewards-service/internal/service"
)

// Start registers notification handlers and, once ctx is done, closes every
// open scan flow so no timer outlives the server. The returned channel is
// closed after cleanup.
func Start(ctx context.Context, notifications *service.NotificationService, scans *service.ScanService, logger *zap.Logger) <-chan struct{} {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		if scans != nil {
			scans.Shutdown()
		}
		if logger != nil {
			logger.Info("background workers stopped")
		}
	}()
	return done
}
