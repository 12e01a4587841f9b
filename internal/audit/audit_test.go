package audit

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/stockroom/internal/adapters/repo/memory"
	"github.com/phenrril/stockroom/internal/domain"
)

func TestLogPersistsEntry(t *testing.T) {
	st := memory.NewStore()
	l := New(st.Logs())
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	biz := uuid.New()
	l.Log(context.Background(), "Modified location inventory x", domain.SeverityActivity, biz)
	l.Log(context.Background(), "boot", domain.SeverityWarning, uuid.Nil)

	logs := st.SystemLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, "Modified location inventory x", logs[0].Message)
	assert.Equal(t, domain.SeverityActivity, logs[0].Severity)
	require.NotNil(t, logs[0].BusinessID)
	assert.Equal(t, biz, *logs[0].BusinessID)
	assert.Equal(t, fixed, logs[0].CreatedAt)
	assert.Nil(t, logs[1].BusinessID)
}

func TestLogFailureIsSwallowed(t *testing.T) {
	st := memory.NewStore()
	st.FailLogs = true
	l := New(st.Logs())

	assert.NotPanics(t, func() {
		l.Log(context.Background(), "lost", domain.SeverityActivity, uuid.New())
	})
	assert.Empty(t, st.SystemLogs())
}

func TestLogCanceledContextStillWrites(t *testing.T) {
	st := memory.NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	New(st.Logs()).Log(ctx, "late", domain.SeverityActivity, uuid.New())
	assert.Len(t, st.SystemLogs(), 1)
}

func TestNilRepo(t *testing.T) {
	assert.NotPanics(t, func() {
		New(nil).Log(context.Background(), "x", domain.SeverityError, uuid.Nil)
	})
}
