package repo_test

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/noteagent/internal/pkg/errs"
	"github.com/xxxsen/noteagent/internal/repo"
	"github.com/xxxsen/noteagent/test/testutil"
)

const embeddingDim = 768

// axisVector returns a unit vector along one axis; cosine distance between
// different axes is exactly 1.
func axisVector(axis int) []float32 {
	v := make([]float32, embeddingDim)
	v[axis] = 1
	return v
}

// blendVector returns the normalized sum of two axis vectors; its cosine
// distance to either axis is 1 - 1/sqrt(2), roughly 0.29.
func blendVector(a, b int) []float32 {
	v := make([]float32, embeddingDim)
	norm := float32(1 / math.Sqrt2)
	v[a] = norm
	v[b] = norm
	return v
}

func TestNoteRepoSearchOrderingAndThreshold(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	ctx := context.Background()
	userID := uuid.New()
	session, err := repo.OpenSession(ctx, conn, userID)
	require.NoError(t, err)
	defer session.Close()

	notes := repo.NewNoteRepo(session.Conn())
	exact, err := notes.Create(ctx, userID, "exact match", axisVector(0))
	require.NoError(t, err)
	near, err := notes.Create(ctx, userID, "near match", blendVector(0, 1))
	require.NoError(t, err)
	_, err = notes.Create(ctx, userID, "unrelated", axisVector(1))
	require.NoError(t, err)

	found, err := notes.SearchByEmbedding(ctx, axisVector(0), 0.5, 5)
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, exact.ID, found[0].ID)
	require.Equal(t, near.ID, found[1].ID)
}

func TestNoteRepoSearchLimit(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	ctx := context.Background()
	userID := uuid.New()
	session, err := repo.OpenSession(ctx, conn, userID)
	require.NoError(t, err)
	defer session.Close()

	notes := repo.NewNoteRepo(session.Conn())
	for i := 0; i < 4; i++ {
		_, err := notes.Create(ctx, userID, "note", axisVector(0))
		require.NoError(t, err)
	}

	found, err := notes.SearchByEmbedding(ctx, axisVector(0), 0.5, 2)
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestNoteRepoRowSecurityIsolation(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	ownerSession, err := repo.OpenSession(ctx, conn, owner)
	require.NoError(t, err)
	note, err := repo.NewNoteRepo(ownerSession.Conn()).Create(ctx, owner, "private", axisVector(0))
	require.NoError(t, err)
	require.NoError(t, ownerSession.Close())

	strangerSession, err := repo.OpenSession(ctx, conn, stranger)
	require.NoError(t, err)
	defer strangerSession.Close()
	strangerNotes := repo.NewNoteRepo(strangerSession.Conn())

	_, err = strangerNotes.Get(ctx, note.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)

	found, err := strangerNotes.SearchByEmbedding(ctx, axisVector(0), 0.5, 5)
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestNoteRepoGetNotFound(t *testing.T) {
	conn, cleanup := testutil.OpenTestDB(t)
	defer cleanup()
	testutil.ResetTables(t, conn)

	ctx := context.Background()
	session, err := repo.OpenSession(ctx, conn, uuid.New())
	require.NoError(t, err)
	defer session.Close()

	_, err = repo.NewNoteRepo(session.Conn()).Get(ctx, 999999)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
