//go:build integration

package management

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rng/internal/testinfra"
)

func TestAuditLoggerRoundTrip(t *testing.T) {
	infra := testinfra.Postgres(t)
	auditor := NewAuditLogger(infra.PostgresDB)
	ctx := WithChangedBy(context.Background(), "alice")

	created := time.Now().Add(-time.Minute).UTC()
	require.NoError(t, auditor.LogChange(ctx, AuditLogEntry{
		SubjectType: SubjectEventType,
		Subject:     "conference",
		Action:      "create",
		NewValue:    map[string]interface{}{"enabled": true},
		Timestamp:   created,
	}))
	require.NoError(t, auditor.LogChange(ctx, AuditLogEntry{
		SubjectType: SubjectEventType,
		Subject:     "conference",
		Action:      "delete",
		OldValue:    map[string]interface{}{"enabled": true},
	}))
	require.NoError(t, auditor.LogChange(ctx, AuditLogEntry{
		SubjectType: SubjectEntityType,
		Subject:     "class",
		Action:      "create",
		ChangedBy:   "bob",
	}))

	entries, err := auditor.ListChanges(ctx, SubjectEventType, "conference", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "delete", entries[0].Action)
	assert.Equal(t, map[string]interface{}{"enabled": true}, entries[0].OldValue)
	assert.Nil(t, entries[0].NewValue)
	assert.Equal(t, "alice", entries[0].ChangedBy)

	assert.Equal(t, "create", entries[1].Action)
	assert.Nil(t, entries[1].OldValue)
	assert.Equal(t, map[string]interface{}{"enabled": true}, entries[1].NewValue)

	all, err := auditor.ListChanges(ctx, "", "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := auditor.ListChanges(ctx, "", "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
