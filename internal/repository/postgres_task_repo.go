package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dharshini/agiletrack/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
// ステータス履歴はJSONB列に追記済みの完全な配列として保存される。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

const taskColumns = `id, title, description, status, scrum_id, assigned_to, history, created_at`

// List は全タスクを作成日時昇順で返す。
func (r *PostgresTaskRepo) List(ctx context.Context) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ListByScrumID は指定スクラムに属するタスクを返す。
func (r *PostgresTaskRepo) ListByScrumID(ctx context.Context, scrumID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE scrum_id = $1 ORDER BY created_at`,
		scrumID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by scrum: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// ListByAssignee は指定ユーザーに割り当てられたタスクを返す。
func (r *PostgresTaskRepo) ListByAssignee(ctx context.Context, userID string) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE assigned_to = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by assignee: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`,
		id,
	)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}

	return task, nil
}

// Create はタスクを作成する。
func (r *PostgresTaskRepo) Create(ctx context.Context, task *model.Task) error {
	historyJSON, err := json.Marshal(task.History)
	if err != nil {
		return fmt.Errorf("failed to marshal task history: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, scrum_id, assigned_to, history, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		task.ID, task.Title, task.Description, task.Status, task.ScrumID, task.AssignedTo, historyJSON, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// UpdateStatus は指定タスクのステータスと履歴のみを更新する。
func (r *PostgresTaskRepo) UpdateStatus(ctx context.Context, id, status string, history []model.HistoryEntry) (*model.Task, error) {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task history: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`UPDATE tasks SET status = $2, history = $3 WHERE id = $1
		 RETURNING `+taskColumns,
		id, status, historyJSON,
	)

	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	return task, nil
}

// rowScanner はsql.Rowとsql.Rowsの共通Scanインターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask は1行をタスクへ変換する。history列はJSONBからデコードする。
func scanTask(row rowScanner) (*model.Task, error) {
	task := &model.Task{}
	var historyJSON []byte
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.Status,
		&task.ScrumID, &task.AssignedTo, &historyJSON, &task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(historyJSON, &task.History); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task history: %w", err)
	}

	return task, nil
}

// scanTasks は結果行をタスクのスライスへ変換する。
func scanTasks(rows *sql.Rows) ([]model.Task, error) {
	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task rows: %w", err)
	}
	return tasks, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
