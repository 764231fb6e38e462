package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"character-hub/internal/domain"
	"character-hub/internal/repository"
)

const createCharactersTable = `
CREATE TABLE IF NOT EXISTS characters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	avatar TEXT NOT NULL DEFAULT '',
	background TEXT NOT NULL DEFAULT ''
);
`

type CharacterRepository struct {
	db *sql.DB
}

func NewCharacterRepository(db *sql.DB) repository.CharacterRepository {
	return &CharacterRepository{db: db}
}

func (r *CharacterRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCharactersTable); err != nil {
		return fmt.Errorf("create characters table: %w", err)
	}
	return nil
}

func (r *CharacterRepository) Create(ctx context.Context, character *domain.Character) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO characters (name, description, avatar, background)
VALUES (?, ?, ?, ?)`,
		character.Name,
		character.Desc,
		character.Avatar,
		character.Background,
	)
	if err != nil {
		return 0, fmt.Errorf("insert character: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("character last insert id: %w", err)
	}
	character.ID = id
	return id, nil
}

// Search returns the total number of name matches plus one page of them.
func (r *CharacterRepository) Search(ctx context.Context, keyword string, limit, offset int) (int, []domain.Character, error) {
	pattern := "%" + keyword + "%"

	var total int
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM characters WHERE name LIKE ?`, pattern).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count characters: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, description, avatar, background
FROM characters
WHERE name LIKE ?
ORDER BY id
LIMIT ? OFFSET ?`,
		pattern, limit, offset,
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search characters: %w", err)
	}
	defer rows.Close()

	var characters []domain.Character
	for rows.Next() {
		var ch domain.Character
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Desc, &ch.Avatar, &ch.Background); err != nil {
			return 0, nil, fmt.Errorf("scan character: %w", err)
		}
		characters = append(characters, ch)
	}
	if err := rows.Err(); err != nil {
		return 0, nil, fmt.Errorf("iterate characters: %w", err)
	}

	return total, characters, nil
}

func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*domain.Character, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, description, avatar, background
FROM characters
WHERE id = ?`,
		id,
	)

	var ch domain.Character
	if err := row.Scan(&ch.ID, &ch.Name, &ch.Desc, &ch.Avatar, &ch.Background); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan character: %w", err)
	}
	return &ch, nil
}
