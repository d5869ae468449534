package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"picvault/internal/domain"
	"picvault/internal/repository"
)

func newTestAuditRepo(t *testing.T) repository.AuditRepository {
	t.Helper()
	repo := NewAuditRepository(newTestDB(t))
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func TestAuditCreateAssignsIDAndTime(t *testing.T) {
	repo := newTestAuditRepo(t)
	ctx := context.Background()

	entry := &domain.AuditEntry{
		OperatorID:   1,
		OperatorName: "alice",
		SystemID:     domain.SystemUser,
		EventType:    domain.EventUserLogin,
		ObjectType:   domain.ObjectNone,
		IPAddress:    "127.0.0.1",
	}
	require.NoError(t, repo.Create(ctx, entry))
	require.NotEmpty(t, entry.ID)
	require.False(t, entry.CreatedAt.IsZero())

	entries, page, err := repo.List(ctx, repository.AuditFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, page.TotalSize)
	require.Equal(t, domain.EventUserLogin, entries[0].EventType)
	require.Equal(t, "alice", entries[0].OperatorName)
}

func TestAuditListFilters(t *testing.T) {
	repo := newTestAuditRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seed := []domain.AuditEntry{
		{OperatorID: 1, SystemID: domain.SystemUser, EventType: domain.EventUserLogin, CreatedAt: base},
		{OperatorID: 1, SystemID: domain.SystemImage, EventType: domain.EventImageUpload, CreatedAt: base.Add(time.Minute)},
		{OperatorID: 2, SystemID: domain.SystemUser, EventType: domain.EventUserLogin, CreatedAt: base.Add(2 * time.Minute)},
		{OperatorID: 2, SystemID: domain.SystemImage, EventType: domain.EventImageDelete, CreatedAt: base.Add(3 * time.Minute)},
	}
	for i := range seed {
		require.NoError(t, repo.Create(ctx, &seed[i]))
	}

	entries, page, err := repo.List(ctx, repository.AuditFilter{}, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	require.Equal(t, 4, page.TotalSize)
	// Newest first.
	require.Equal(t, domain.EventImageDelete, entries[0].EventType)

	op := int64(1)
	entries, _, err = repo.List(ctx, repository.AuditFilter{OperatorID: &op}, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, _, err = repo.List(ctx, repository.AuditFilter{EventType: domain.EventUserLogin}, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, _, err = repo.List(ctx, repository.AuditFilter{SystemID: domain.SystemImage, OperatorID: &op}, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.EventImageUpload, entries[0].EventType)
}
