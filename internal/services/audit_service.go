package services

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"github.com/sjperalta/modular-erp-api/internal/models"
	"github.com/sjperalta/modular-erp-api/internal/repository"
	"github.com/sjperalta/modular-erp-api/pkg/logger"
)

// AuditService writes the activity log
type AuditService struct {
	repo repository.ActivityLogRepository
}

// NewAuditService creates a new audit service
func NewAuditService(repo repository.ActivityLogRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Subject identifies the record an activity refers to
type Subject struct {
	Type string
	ID   uuid.UUID
}

// Log records an activity entry for the actor found in ctx
func (s *AuditService) Log(ctx context.Context, eventType, description string, subject *Subject, properties map[string]any) error {
	actor := ActorFromContext(ctx)
	entry := &models.ActivityLog{
		UserID:      actor.UserID,
		EventType:   eventType,
		Description: description,
		Properties:  properties,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	}
	if subject != nil {
		modelType := subject.Type
		modelID := subject.ID
		entry.ModelType = &modelType
		entry.ModelID = &modelID
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		logger.Error("Failed to write activity log", "event_type", eventType, "error", err)
		return err
	}
	return nil
}

// LogCreated records the creation of a record with its attributes
func (s *AuditService) LogCreated(ctx context.Context, subject Subject, attributes any) error {
	return s.Log(ctx, models.ActivityCreated,
		fmt.Sprintf("Created %s", subject.Type),
		&subject,
		map[string]any{"attributes": snapshot(attributes)})
}

// LogUpdated records an update with old and new values and the changed keys
func (s *AuditService) LogUpdated(ctx context.Context, subject Subject, before, after any) error {
	old := snapshot(before)
	updated := snapshot(after)
	return s.Log(ctx, models.ActivityUpdated,
		fmt.Sprintf("Updated %s", subject.Type),
		&subject,
		map[string]any{
			"old":     old,
			"new":     updated,
			"changes": Changes(old, updated),
		})
}

// LogDeleted records the deletion of a record with its last attributes
func (s *AuditService) LogDeleted(ctx context.Context, subject Subject, attributes any) error {
	return s.Log(ctx, models.ActivityDeleted,
		fmt.Sprintf("Deleted %s", subject.Type),
		&subject,
		map[string]any{"attributes": snapshot(attributes)})
}

// LogModuleActivated records a module activation for the current user
func (s *AuditService) LogModuleActivated(ctx context.Context, module *models.Module) error {
	return s.Log(ctx, models.ActivityModuleActivated,
		fmt.Sprintf("Activated module %s", module.Name),
		&Subject{Type: "module", ID: module.ID},
		map[string]any{"module_slug": module.Slug})
}

// LogModuleDeactivated records a module deactivation for the current user
func (s *AuditService) LogModuleDeactivated(ctx context.Context, module *models.Module) error {
	return s.Log(ctx, models.ActivityModuleDeactivated,
		fmt.Sprintf("Deactivated module %s", module.Name),
		&Subject{Type: "module", ID: module.ID},
		map[string]any{"module_slug": module.Slug})
}

// List retrieves activity logs with filters
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.ActivityLog, int64, error) {
	return s.repo.List(ctx, query)
}

// UserActivity returns the latest activity of a user
func (s *AuditService) UserActivity(ctx context.Context, userID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// History returns every activity recorded for a subject
func (s *AuditService) History(ctx context.Context, subject Subject) ([]models.ActivityLog, error) {
	return s.repo.ListBySubject(ctx, subject.Type, subject.ID)
}

// snapshot converts a value to its JSON object form
func snapshot(v any) map[string]any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"value": string(raw)}
	}
	return out
}

// Changes returns the keys of after whose value differs from before
func Changes(before, after map[string]any) map[string]any {
	changes := make(map[string]any)
	for key, value := range after {
		if key == "updated_at" {
			continue
		}
		if prev, ok := before[key]; !ok || !reflect.DeepEqual(prev, value) {
			changes[key] = value
		}
	}
	return changes
}
