package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"character-hub/internal/domain"
	"character-hub/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "charhub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAccountRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	repo := NewAccountRepository(db)
	require.NoError(t, repo.Init(ctx))

	account := &domain.Account{Username: "alice01", Password: "Abc123", Email: "alice@example.com"}
	id, err := repo.Create(ctx, account)
	require.NoError(t, err)
	require.Positive(t, id)

	byName, err := repo.FindByUsername(ctx, "alice01")
	require.NoError(t, err)
	require.Equal(t, "Abc123", byName.Password)
	require.Equal(t, "alice@example.com", byName.Email)

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "alice01", byEmail.Username)

	_, err = repo.FindByUsername(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.Create(ctx, &domain.Account{Username: "alice01", Password: "x12345", Email: "other@example.com"})
	require.ErrorContains(t, err, "already exists")

	_, err = repo.Create(ctx, &domain.Account{Username: "bob02", Password: "x12345", Email: "alice@example.com"})
	require.ErrorContains(t, err, "already exists")
}

func TestCharacterRepository_Search(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	repo := NewCharacterRepository(db)
	require.NoError(t, repo.Init(ctx))

	names := []string{"Mulan", "Mulberry", "Ariel", "Muriel"}
	for _, name := range names {
		_, err := repo.Create(ctx, &domain.Character{Name: name, Desc: "d", Avatar: "a", Background: "b"})
		require.NoError(t, err)
	}

	total, page, err := repo.Search(ctx, "Mu", 2, 0)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 2)
	require.Equal(t, "Mulan", page[0].Name)

	total, page, err = repo.Search(ctx, "Mu", 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 1)
	require.Equal(t, "Muriel", page[0].Name)

	total, page, err = repo.Search(ctx, "zzz", 10, 0)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, page)
}

func TestCharacterRepository_GetByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)
	repo := NewCharacterRepository(db)
	require.NoError(t, repo.Init(ctx))

	id, err := repo.Create(ctx, &domain.Character{Name: "哪吒", Desc: "rebel", Background: "spirit pearl"})
	require.NoError(t, err)

	ch, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "哪吒", ch.Name)
	require.Equal(t, "spirit pearl", ch.Background)

	_, err = repo.GetByID(ctx, id+1)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFavoriteLinkRepository_InsertIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)

	characters := NewCharacterRepository(db)
	require.NoError(t, characters.Init(ctx))
	links := NewFavoriteLinkRepository(db)
	require.NoError(t, links.Init(ctx))

	id, err := characters.Create(ctx, &domain.Character{Name: "Mulan"})
	require.NoError(t, err)

	require.NoError(t, links.Insert(ctx, "alice01", id))
	require.NoError(t, links.Insert(ctx, "alice01", id))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorite_links`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestFavoriteLinkRepository_RejectsUnknownCharacter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := openTestDB(t)

	characters := NewCharacterRepository(db)
	require.NoError(t, characters.Init(ctx))
	links := NewFavoriteLinkRepository(db)
	require.NoError(t, links.Init(ctx))

	require.Error(t, links.Insert(ctx, "alice01", 12345))
}
