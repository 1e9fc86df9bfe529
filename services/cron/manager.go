package cron

import (
	"log"
	"time"

	"github.com/edstack/institute-api/model"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron: c,
		db:   db,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Daily at 2 AM: prune audit rows past the retention window
	_, err := m.cron.AddFunc("0 0 2 * * *", func() {
		m.logJobStart("prune_audit_logs")
		m.PruneAuditLogs()
	})
	if err != nil {
		return err
	}

	// Sunday at 3 AM: prune old cron job logs
	_, err = m.cron.AddFunc("0 0 3 * * 0", func() {
		m.logJobStart("cleanup_cron_logs")
		m.CleanupCronLogs()
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// logJobStart records that a job started
func (m *CronManager) logJobStart(jobName string) {
	entry := model.CronJobLog{
		JobName:   jobName,
		Status:    "started",
		StartedAt: time.Now(),
	}
	if err := m.db.Create(&entry).Error; err != nil {
		log.Printf("[CRON] Failed to log start of %s: %v", jobName, err)
	}
}

// logJobComplete records a successful job run
func (m *CronManager) logJobComplete(jobName string, message string) {
	m.finishJob(jobName, "completed", message, "")
}

// logJobError records a failed job run
func (m *CronManager) logJobError(jobName string, jobErr error) {
	log.Printf("[CRON] %s failed: %v", jobName, jobErr)
	m.finishJob(jobName, "failed", "", jobErr.Error())
}

func (m *CronManager) finishJob(jobName, status, message, errMsg string) {
	var entry model.CronJobLog
	err := m.db.Where("job_name = ? AND status = ?", jobName, "started").
		Order("started_at DESC").
		First(&entry).Error
	if err != nil {
		log.Printf("[CRON] No started log entry for %s: %v", jobName, err)
		return
	}

	now := time.Now()
	entry.Status = status
	entry.CompletedAt = &now
	entry.Duration = int(now.Sub(entry.StartedAt).Milliseconds())
	entry.Message = message
	entry.ErrorMsg = errMsg

	if err := m.db.Save(&entry).Error; err != nil {
		log.Printf("[CRON] Failed to update log entry for %s: %v", jobName, err)
	}
}
