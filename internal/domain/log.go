package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityActivity Severity = "activity"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
)

// SystemLog is one audit entry.
type SystemLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID *uuid.UUID `gorm:"type:uuid;index" json:"business_id"`
	Severity   Severity   `gorm:"type:varchar(10);not null" json:"severity"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

type LogRepo interface {
	Append(ctx context.Context, entry *SystemLog) error
}
