// Package store はリソースストアへのクライアントを提供する。
// ストアはusers・scrums・tasksの3コレクションを持つリクエスト/レスポンス型の
// リソースAPIであり、コアはこのパッケージの契約のみに依存する。
// コレクションをまたぐトランザクションは存在しないため、複数リソースの
// 合成とその部分失敗の扱いはアグリゲートマネージャが担う。
package store

import (
	"context"
	"errors"

	"github.com/dharshini/agiletrack/internal/model"
)

// ErrNotFound は指定IDのレコードがストアに存在しないことを表す。
var ErrNotFound = errors.New("store: record not found")

// UserStore はusersコレクションへの操作契約。
type UserStore interface {
	// List は全ユーザーを返す。
	List(ctx context.Context) ([]model.User, error)

	// ListByEmail はメールアドレス完全一致でユーザーを検索する。
	// 一意性の事前チェックとログイン時の照合に使用される。
	ListByEmail(ctx context.Context, email string) ([]model.User, error)

	// Get は指定IDのユーザーを取得する。存在しない場合はErrNotFoundを返す。
	Get(ctx context.Context, id string) (*model.User, error)

	// Create はユーザーを作成し、ストアが採番したIDを含むレコードを返す。
	// メールアドレス重複をストアが検出した場合はDuplicateEmailエラーを返す。
	Create(ctx context.Context, user model.User) (*model.User, error)
}

// ScrumStore はscrumsコレクションへの操作契約。
type ScrumStore interface {
	// List は全スクラムを返す。
	List(ctx context.Context) ([]model.Scrum, error)

	// Get は指定IDのスクラムを取得する。存在しない場合はErrNotFoundを返す。
	Get(ctx context.Context, id string) (*model.Scrum, error)

	// Create はスクラムを作成し、ストアが採番したIDを含むレコードを返す。
	// 名前重複（大文字小文字を区別しない）をストアが検出した場合は
	// DuplicateScrumエラーを返す。
	Create(ctx context.Context, scrum model.Scrum) (*model.Scrum, error)
}

// TaskStore はtasksコレクションへの操作契約。
type TaskStore interface {
	// ListByScrumID は指定スクラムに属するタスクを返す。
	ListByScrumID(ctx context.Context, scrumID string) ([]model.Task, error)

	// ListByAssignee は指定ユーザーに割り当てられたタスクを返す。
	ListByAssignee(ctx context.Context, userID string) ([]model.Task, error)

	// Get は指定IDのタスクを取得する。存在しない場合はErrNotFoundを返す。
	Get(ctx context.Context, id string) (*model.Task, error)

	// Create はタスクを作成し、ストアが採番したIDを含むレコードを返す。
	Create(ctx context.Context, task model.Task) (*model.Task, error)

	// UpdateStatus はタスクのステータスと履歴のみを部分更新する。
	// 履歴は呼び出し側が追記済みの完全な配列を渡す。
	UpdateStatus(ctx context.Context, id, status string, history []model.HistoryEntry) (*model.Task, error)
}
