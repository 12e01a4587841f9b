// Package audit records business activity to the system log.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/stockroom/internal/domain"
)

// Logger persists audit entries and mirrors them to the process log. Write
// failures are logged and dropped; they never fail the caller.
type Logger struct {
	repo domain.LogRepo
	now  func() time.Time
}

func New(repo domain.LogRepo) *Logger {
	return &Logger{repo: repo, now: time.Now}
}

func (l *Logger) Log(ctx context.Context, msg string, severity domain.Severity, businessID uuid.UUID) {
	entry := &domain.SystemLog{
		ID:        uuid.New(),
		Severity:  severity,
		Message:   msg,
		CreatedAt: l.now(),
	}
	if businessID != uuid.Nil {
		entry.BusinessID = &businessID
	}

	ev := log.WithLevel(levelOf(severity)).Str("severity", string(severity))
	if entry.BusinessID != nil {
		ev = ev.Str("business_id", businessID.String())
	}
	ev.Msg(msg)

	if l.repo == nil {
		return
	}
	if err := l.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		log.Warn().Err(err).Str("severity", string(severity)).Msg("audit log write failed")
	}
}

func levelOf(s domain.Severity) zerolog.Level {
	switch s {
	case domain.SeverityWarning:
		return zerolog.WarnLevel
	case domain.SeverityError:
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}
