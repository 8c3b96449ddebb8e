package models

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
)

// AuditLog is append-only: one entry per mutating call. Entries are never
// updated or deleted here; retention cleanup is an external job.
type AuditLog struct {
	ID            int       `gorm:"primary_key" json:"id"`
	CrouId        string    `gorm:"type:char(36);index" json:"crou_id"`
	ActorId       int       `gorm:"index;not null" json:"actor_id"`
	ActorName     string    `gorm:"size:100" json:"actor_name"`
	Action        string    `gorm:"size:20;not null" json:"action"`
	Resource      string    `gorm:"size:100;not null" json:"resource"`
	ResourceId    string    `gorm:"size:36;index" json:"resource_id"`
	OldValues     string    `gorm:"type:text" json:"old_values"`
	NewValues     string    `gorm:"type:text" json:"new_values"`
	Success       *bool     `gorm:"not null;default:true" json:"success"`
	Reason        string    `gorm:"type:text" json:"reason"`
	CorrelationId string    `gorm:"size:36" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// auditWriter drains a buffered channel into the audit_logs table. Writes are
// fire-and-forget: a full buffer or a failed insert is logged and dropped so
// audit can never block or fail the operation being audited.
type auditWriter struct {
	entries chan AuditLog
	done    chan struct{}
}

var (
	writer     *auditWriter
	writerOnce sync.Once
)

func StartAuditWriter() {
	writerOnce.Do(func() {
		writer = &auditWriter{
			entries: make(chan AuditLog, 1024),
			done:    make(chan struct{}),
		}
		go writer.run()
	})
}

func StopAuditWriter() {
	if writer != nil {
		close(writer.entries)
		<-writer.done
	}
}

func (w *auditWriter) run() {
	defer close(w.done)
	logger := config.GetLogger()
	for entry := range w.entries {
		db := config.GetDB()
		if db == nil {
			continue
		}
		// bypass tenant guard: the entry already carries its crou_id
		ctx := utils.SetSkipTenantScopeInContext(context.Background(), true)
		if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
			config.LogError(logger, "auditLog.go", "run", "insert audit entry", entry.Resource, err)
		}
	}
}

// RecordAudit enqueues an audit entry. Never blocks, never returns an error.
func RecordAudit(ctx context.Context, action AuditAction, resource string, resourceId string, oldValues interface{}, newValues interface{}, success bool, reason string) {
	if config.DisableAuditTrail() {
		return
	}

	entry := AuditLog{
		Action:     string(action),
		Resource:   resource,
		ResourceId: resourceId,
		Success:    &success,
		Reason:     reason,
	}
	if crouId, ok := utils.GetCrouIdFromContext(ctx); ok {
		entry.CrouId = crouId
	}
	if userId, ok := utils.GetUserIdFromContext(ctx); ok {
		entry.ActorId = userId
	}
	if userName, ok := utils.GetUserNameFromContext(ctx); ok {
		entry.ActorName = userName
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok {
		entry.CorrelationId = correlationId
	}
	if oldValues != nil {
		if b, err := json.Marshal(oldValues); err == nil {
			entry.OldValues = string(b)
		}
	}
	if newValues != nil {
		if b, err := json.Marshal(newValues); err == nil {
			entry.NewValues = string(b)
		}
	}

	if writer == nil {
		return
	}
	select {
	case writer.entries <- entry:
	default:
		// buffer full; drop rather than block the request
		config.GetLogger().Warn("audit buffer full; dropping entry for " + resource)
	}
}
