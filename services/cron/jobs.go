package cron

import (
	"fmt"
	"time"

	"github.com/edstack/institute-api/model"
)

const (
	// auditRetention is how long institute audit rows are kept
	auditRetention = 90 * 24 * time.Hour
	// cronLogRetention is how long cron job logs are kept
	cronLogRetention = 30 * 24 * time.Hour
)

// PruneAuditLogs removes institute audit rows older than the retention window
func (m *CronManager) PruneAuditLogs() {
	jobName := "prune_audit_logs"
	cutoff := time.Now().Add(-auditRetention)

	result := m.db.Where("created_at < ?", cutoff).Delete(&model.InstituteAuditLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to prune audit logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Pruned %d audit rows", result.RowsAffected))
}

// CleanupCronLogs removes finished cron job logs older than the retention window
func (m *CronManager) CleanupCronLogs() {
	jobName := "cleanup_cron_logs"
	cutoff := time.Now().Add(-cronLogRetention)

	result := m.db.Where("started_at < ? AND status <> ?", cutoff, "started").
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		m.logJobError(jobName, fmt.Errorf("failed to cleanup cron logs: %w", result.Error))
		return
	}

	m.logJobComplete(jobName, fmt.Sprintf("Removed %d cron log rows", result.RowsAffected))
}
