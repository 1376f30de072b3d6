package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/pjecz/casiopea/pkg/logger"
)

// RecordAudit logs the supplied entry while tolerating audit failures.
func RecordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("failed to record audit entry",
			zap.String("module_name", entry.ModuleName),
			zap.String("description", entry.Description),
			zap.Error(err),
		)
	}
}
