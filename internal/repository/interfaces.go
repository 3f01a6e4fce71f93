// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/dharshini/agiletrack/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// List は全ユーザーを作成日時昇順で返す。
	List(ctx context.Context) ([]model.User, error)

	// ListByEmail はメールアドレス完全一致でユーザーを検索する。
	ListByEmail(ctx context.Context, email string) ([]model.User, error)

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスの一意制約違反は
	// DuplicateEmailエラーを返す。
	Create(ctx context.Context, user *model.User) error
}

// ScrumRepository はスクラムデータの永続化インターフェース。
type ScrumRepository interface {
	// List は全スクラムを作成日時昇順で返す。
	List(ctx context.Context) ([]model.Scrum, error)

	// FindByID は指定IDのスクラムを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Scrum, error)

	// Create はスクラムを作成する。名前の一意制約（大文字小文字を区別しない）
	// 違反はDuplicateScrumエラーを返す。
	Create(ctx context.Context, scrum *model.Scrum) error
}

// TaskRepository はタスクデータの永続化インターフェース。
type TaskRepository interface {
	// List は全タスクを作成日時昇順で返す。
	List(ctx context.Context) ([]model.Task, error)

	// ListByScrumID は指定スクラムに属するタスクを返す。
	ListByScrumID(ctx context.Context, scrumID string) ([]model.Task, error)

	// ListByAssignee は指定ユーザーに割り当てられたタスクを返す。
	ListByAssignee(ctx context.Context, userID string) ([]model.Task, error)

	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// Create はタスクを作成する。
	Create(ctx context.Context, task *model.Task) error

	// UpdateStatus は指定タスクのステータスと履歴のみを更新する。
	// 更新後のレコードを返す。見つからない場合はnilを返す。
	UpdateStatus(ctx context.Context, id, status string, history []model.HistoryEntry) (*model.Task, error)
}
