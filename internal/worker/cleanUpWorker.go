package worker

import (
	"context"
	"time"

	"github.com/ds124wfegd/image-editor/internal/service"

	"github.com/sirupsen/logrus"
)

type SessionCleanupWorker struct {
	editorService service.EditorService
	interval      time.Duration
	sessionTTL    time.Duration
}

func NewSessionCleanupWorker(editorService service.EditorService, interval, sessionTTL time.Duration) *SessionCleanupWorker {
	return &SessionCleanupWorker{
		editorService: editorService,
		interval:      interval,
		sessionTTL:    sessionTTL,
	}
}

func (w *SessionCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Session cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Session cleanup worker stopped")
			return
		case <-ticker.C:
			w.cleanupExpiredSessions(ctx)
		}
	}
}

// cleanupExpiredSessions удаляет сессии, к которым давно не обращались
func (w *SessionCleanupWorker) cleanupExpiredSessions(ctx context.Context) {
	expiredSessions, err := w.editorService.ListExpiredSessions(w.sessionTTL)
	if err != nil {
		logrus.Errorf("Failed to list expired sessions: %v", err)
		return
	}

	if len(expiredSessions) == 0 {
		return
	}

	logrus.Infof("Found %d expired sessions for cleanup", len(expiredSessions))

	successCount := 0
	failedCount := 0

	for _, expired := range expiredSessions {
		// Проверяем, не был ли контекст отменен во время обработки
		select {
		case <-ctx.Done():
			logrus.Info("Cleanup interrupted by context cancellation")
			return
		default:
		}

		if err := w.editorService.Reset(expired.ID); err != nil {
			logrus.Errorf("Failed to remove expired session %s: %v", expired.ID, err)
			failedCount++
			continue
		}

		logrus.Debugf("Removed expired session %s (last touched %s)",
			expired.ID, expired.UpdatedAt.Format(time.RFC3339))
		successCount++
	}

	logrus.Infof("Expired sessions cleanup completed: %d removed, %d failed",
		successCount, failedCount)

	if failedCount > 0 {
		logrus.Warnf("%d sessions failed to clean up", failedCount)
	}
}
