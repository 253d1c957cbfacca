package management

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"rng/internal/logger"
	"rng/pkg/errors"
)

// Auditor records configuration changes.
type Auditor interface {
	LogChange(ctx context.Context, entry AuditLogEntry) error
	ListChanges(ctx context.Context, subjectType, subject string, limit int) ([]AuditLogEntry, error)
}

type AuditLogEntry struct {
	ID          string      `json:"id"`
	SubjectType string      `json:"subject_type"`
	Subject     string      `json:"subject"`
	Action      string      `json:"action"`
	OldValue    interface{} `json:"old_value,omitempty"`
	NewValue    interface{} `json:"new_value,omitempty"`
	ChangedBy   string      `json:"changed_by"`
	Timestamp   time.Time   `json:"timestamp"`
}

const (
	SubjectEventType          = "event_type"
	SubjectEntityType         = "entity_type"
	SubjectRegistrationStatus = "registration_status"
)

type AuditLogger struct {
	db *sql.DB
}

func NewAuditLogger(db *sql.DB) *AuditLogger {
	return &AuditLogger{db: db}
}

func (a *AuditLogger) LogChange(ctx context.Context, entry AuditLogEntry) error {
	query := `
		INSERT INTO config_audit_logs (id, subject_type, subject, action, old_value, new_value, changed_by, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	id := entry.ID
	if id == "" {
		id = uuid.New().String()
	}

	oldValueJSON, err := json.Marshal(entry.OldValue)
	if err != nil {
		return fmt.Errorf("failed to marshal old value: %w", err)
	}
	newValueJSON, err := json.Marshal(entry.NewValue)
	if err != nil {
		return fmt.Errorf("failed to marshal new value: %w", err)
	}

	changedBy := entry.ChangedBy
	if changedBy == "" {
		changedBy = ChangedBy(ctx)
	}

	timestamp := entry.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	if _, err := a.db.ExecContext(ctx, query,
		id, entry.SubjectType, entry.Subject, entry.Action,
		oldValueJSON, newValueJSON, changedBy, timestamp,
	); err != nil {
		return fmt.Errorf("failed to log audit entry: %w", err)
	}

	return nil
}

func (a *AuditLogger) ListChanges(ctx context.Context, subjectType, subject string, limit int) ([]AuditLogEntry, error) {
	query := `
		SELECT id, subject_type, subject, action, old_value, new_value, changed_by, timestamp
		FROM config_audit_logs
		WHERE ($1 = '' OR subject_type = $1) AND ($2 = '' OR subject = $2)
		ORDER BY timestamp DESC
		LIMIT $3
	`

	rows, err := a.db.QueryContext(ctx, query, subjectType, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]AuditLogEntry, 0)
	for rows.Next() {
		var (
			entry          AuditLogEntry
			oldRaw, newRaw []byte
		)
		if err := rows.Scan(&entry.ID, &entry.SubjectType, &entry.Subject, &entry.Action,
			&oldRaw, &newRaw, &entry.ChangedBy, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entry.OldValue = decodeJSON(oldRaw)
		entry.NewValue = decodeJSON(newRaw)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func decodeJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return string(raw)
	}
	return out
}

// AuditHandler serves GET /api/v1/audit.
type AuditHandler struct {
	BaseHandler
	auditor Auditor
}

func NewAuditHandler(auditor Auditor, log logger.Logger) *AuditHandler {
	return &AuditHandler{BaseHandler: BaseHandler{Logger: log}, auditor: auditor}
}

func (h *AuditHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/v1/audit", h.ListChanges)
}

// ListChanges godoc
// @Summary      List configuration changes
// @Description  Audit trail of event type, entity type and registration status changes
// @Tags         audit
// @Produce      json
// @Param        subject_type  query     string  false  "event_type, entity_type or registration_status"
// @Param        subject       query     string  false  "Entity type name"
// @Param        limit         query     int     false  "Maximum entries"
// @Success      200  {array}   AuditLogEntry
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /audit [get]
func (h *AuditHandler) ListChanges(c *gin.Context) {
	entries, err := h.auditor.ListChanges(c.Request.Context(), c.Query("subject_type"), c.Query("subject"), Limit(c))
	if err != nil {
		h.HandleError(c, errors.Wrap(err, errors.ErrInternal))
		return
	}
	c.JSON(http.StatusOK, entries)
}
