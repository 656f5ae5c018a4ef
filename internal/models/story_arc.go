package models

import (
	"time"

	"github.com/google/uuid"
)

// ArcStatus is the lifecycle state of a story arc.
type ArcStatus string

const (
	ArcStatusActive    ArcStatus = "active"
	ArcStatusPaused    ArcStatus = "paused"
	ArcStatusCompleted ArcStatus = "completed"
)

// StoryArc is one user's serialized narrative instance. A user has at most
// one active arc at a time; CurrentDay is monotonically non-decreasing and
// never exceeds TotalDays+1.
type StoryArc struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	TemplateID  string     `json:"templateId" db:"template_id"`
	Status      ArcStatus  `json:"status" db:"status"`
	CurrentDay  int        `json:"currentDay" db:"current_day"`
	TotalDays   int        `json:"totalDays" db:"total_days"`
	StartedAt   time.Time  `json:"startedAt" db:"started_at"`
	CompletedAt *time.Time `json:"completedAt,omitempty" db:"completed_at"`
}

// IsActive reports whether the arc accepts generation requests.
func (a *StoryArc) IsActive() bool {
	return a.Status == ArcStatusActive
}
