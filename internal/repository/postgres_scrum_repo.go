package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dharshini/agiletrack/internal/model"
)

// PostgresScrumRepo はPostgreSQLを使用したスクラムリポジトリ。
type PostgresScrumRepo struct {
	db *sql.DB
}

// NewPostgresScrumRepo はPostgresScrumRepoを生成する。
func NewPostgresScrumRepo(db *sql.DB) *PostgresScrumRepo {
	return &PostgresScrumRepo{db: db}
}

// List は全スクラムを作成日時昇順で返す。
func (r *PostgresScrumRepo) List(ctx context.Context) ([]model.Scrum, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM scrums ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list scrums: %w", err)
	}
	defer rows.Close()

	scrums := []model.Scrum{}
	for rows.Next() {
		var scrum model.Scrum
		if err := rows.Scan(&scrum.ID, &scrum.Name, &scrum.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scrum row: %w", err)
		}
		scrums = append(scrums, scrum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scrum rows: %w", err)
	}

	return scrums, nil
}

// FindByID は指定IDのスクラムを取得する。見つからない場合はnilを返す。
func (r *PostgresScrumRepo) FindByID(ctx context.Context, id string) (*model.Scrum, error) {
	scrum := &model.Scrum{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM scrums WHERE id = $1`,
		id,
	).Scan(&scrum.ID, &scrum.Name, &scrum.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scrum by ID: %w", err)
	}

	return scrum, nil
}

// Create はスクラムを作成する。
// 名前の一意性はlower(name)上の一意インデックスが裁定する。
func (r *PostgresScrumRepo) Create(ctx context.Context, scrum *model.Scrum) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scrums (id, name, created_at) VALUES ($1, $2, $3)`,
		scrum.ID, scrum.Name, scrum.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.NewDuplicateScrumError(scrum.Name)
		}
		return fmt.Errorf("failed to insert scrum: %w", err)
	}

	return nil
}

// compile-time interface check
var _ ScrumRepository = (*PostgresScrumRepo)(nil)
