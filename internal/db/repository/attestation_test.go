package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditchain/internal/db"
	"auditchain/internal/domain"
)

func testAttestation(tenant string, start, end *time.Time) *domain.Attestation {
	lastHash := "abc123"
	sig := "sig456"
	return &domain.Attestation{
		TenantID:    tenant,
		Start:       start,
		End:         end,
		LastHash:    &lastHash,
		OK:          true,
		Count:       3,
		Version:     domain.AttestationVersion,
		Algorithm:   domain.AttestationAlgorithm,
		Signature:   &sig,
		GeneratedAt: repoBase,
	}
}

func TestAttestationRepo_CreateAndGet(t *testing.T) {
	t.Parallel()

	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewAttestationRepo(writeDB)

	start := repoBase.Add(-24 * time.Hour)
	end := repoBase.Add(-time.Nanosecond)
	created, err := repo.Create(context.Background(), testAttestation("t1", &start, &end))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.OK)
	assert.Equal(t, int64(3), got.Count)
	require.NotNil(t, got.Start)
	assert.True(t, start.Equal(*got.Start))
	require.NotNil(t, got.End)
	assert.True(t, end.Equal(*got.End))
	require.NotNil(t, got.Signature)
	assert.Equal(t, "sig456", *got.Signature)
}

func TestAttestationRepo_GetByIDNotFound(t *testing.T) {
	t.Parallel()

	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewAttestationRepo(writeDB)

	_, err := repo.GetByID(context.Background(), "nope")
	var nerr *domain.NotFoundError
	require.ErrorAs(t, err, &nerr)
}

func TestAttestationRepo_WindowUniqueness(t *testing.T) {
	t.Parallel()

	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewAttestationRepo(writeDB)

	start := repoBase
	end := repoBase.Add(time.Hour)
	_, err := repo.Create(context.Background(), testAttestation("t1", &start, &end))
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), testAttestation("t1", &start, &end))
	var cerr *domain.ConflictError
	require.ErrorAs(t, err, &cerr)

	// A different tenant or window is fine.
	_, err = repo.Create(context.Background(), testAttestation("t2", &start, &end))
	require.NoError(t, err)
	later := end.Add(time.Hour)
	_, err = repo.Create(context.Background(), testAttestation("t1", &start, &later))
	require.NoError(t, err)
}

func TestAttestationRepo_GetByWindow(t *testing.T) {
	t.Parallel()

	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewAttestationRepo(writeDB)

	start := repoBase
	end := repoBase.Add(time.Hour)
	created, err := repo.Create(context.Background(), testAttestation("t1", &start, &end))
	require.NoError(t, err)

	got, err := repo.GetByWindow(context.Background(), "t1", &start, &end)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)

	// Open-ended windows match on NULL bounds, not on any row.
	got, err = repo.GetByWindow(context.Background(), "t1", nil, nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	full, err := repo.Create(context.Background(), testAttestation("t1", nil, nil))
	require.NoError(t, err)
	got, err = repo.GetByWindow(context.Background(), "t1", nil, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, full.ID, got.ID)
}

func TestAttestationRepo_ListNewestFirst(t *testing.T) {
	t.Parallel()

	writeDB, _ := db.OpenTestSQLite(t)
	repo := NewAttestationRepo(writeDB)

	for i := 0; i < 3; i++ {
		start := repoBase.AddDate(0, 0, -i-1)
		end := repoBase.AddDate(0, 0, -i)
		a := testAttestation("t1", &start, &end)
		a.GeneratedAt = repoBase.AddDate(0, 0, -i)
		_, err := repo.Create(context.Background(), a)
		require.NoError(t, err)
	}
	other := testAttestation("t2", nil, nil)
	_, err := repo.Create(context.Background(), other)
	require.NoError(t, err)

	tenant := "t1"
	got, total, err := repo.List(context.Background(), domain.AttestationFilter{TenantID: &tenant})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, got, 3)
	assert.True(t, got[0].GeneratedAt.After(got[1].GeneratedAt))
	assert.True(t, got[1].GeneratedAt.After(got[2].GeneratedAt))
}
