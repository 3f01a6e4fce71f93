// Package scrum はスクラムとタスクのアグリゲートマネージャを提供する。
// 複数リソースにまたがる作成（スクラム＋初回タスク）の一意性保証と
// 部分失敗の扱い、ステータス更新の履歴追記、およびセッションローカルな
// キャッシュの管理を担う。
package scrum

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dharshini/agiletrack/internal/model"
	"github.com/dharshini/agiletrack/internal/security"
	"github.com/dharshini/agiletrack/internal/store"
	"github.com/dharshini/agiletrack/internal/validate"
)

// MetricsRecorder はアグリゲート操作のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordScrumCreated()
	RecordOrphanScrum()
	RecordTaskStatusUpdated()
}

// Snapshot はキャッシュのある時点の複製。
// プロジェクタはこの複製に対してのみ動作し、キャッシュ本体を変更しない。
type Snapshot struct {
	Scrums []model.Scrum
	Users  []model.User
	Tasks  []model.Task
}

// CreateScrumInput はスクラム＋初回タスクの複合作成の入力。
type CreateScrumInput struct {
	Name            string
	TaskTitle       string
	TaskDescription string
	TaskAssignedTo  string
	InitialStatus   string // 空の場合は "To Do" が補われる
}

// Service はスクラム/タスクのアグリゲートマネージャ。
// リソースストアには1呼び出しずつ順に問い合わせ、成功後に
// ローカルキャッシュを全量再読込で同期する。
type Service struct {
	scrumStore store.ScrumStore
	taskStore  store.TaskStore
	userStore  store.UserStore
	sanitizer  security.TextSanitizerService
	metrics    MetricsRecorder
	now        func() time.Time

	mu     sync.RWMutex
	scrums []model.Scrum
	users  []model.User
	tasks  []model.Task
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(
	scrumStore store.ScrumStore,
	taskStore store.TaskStore,
	userStore store.UserStore,
	sanitizer security.TextSanitizerService,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		scrumStore: scrumStore,
		taskStore:  taskStore,
		userStore:  userStore,
		sanitizer:  sanitizer,
		metrics:    metrics,
		now:        time.Now,
	}
}

// RefreshAll はスクラム・ユーザー・全スクラムのタスクをストアから再読込し、
// キャッシュを置き換える。
func (s *Service) RefreshAll(ctx context.Context) error {
	scrums, err := s.scrumStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scrums: %w", err)
	}

	users, err := s.userStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	var tasks []model.Task
	for _, scrum := range scrums {
		scrumTasks, err := s.taskStore.ListByScrumID(ctx, scrum.ID)
		if err != nil {
			return fmt.Errorf("failed to list tasks for scrum %s: %w", scrum.ID, err)
		}
		tasks = append(tasks, scrumTasks...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrums = scrums
	s.users = users
	s.tasks = tasks

	return nil
}

// RefreshScrums はスクラム一覧のみをストアから再読込する。
func (s *Service) RefreshScrums(ctx context.Context) error {
	scrums, err := s.scrumStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list scrums: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrums = scrums
	return nil
}

// RefreshUsers はユーザー一覧のみをストアから再読込する。
func (s *Service) RefreshUsers(ctx context.Context) error {
	users, err := s.userStore.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
	return nil
}

// RefreshTasksForScrum は指定スクラムのタスクをストアから再読込し、
// キャッシュ内の同スクラムのタスクを置き換える。
func (s *Service) RefreshTasksForScrum(ctx context.Context, scrumID string) error {
	fetched, err := s.taskStore.ListByScrumID(ctx, scrumID)
	if err != nil {
		return fmt.Errorf("failed to list tasks for scrum %s: %w", scrumID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ScrumID != scrumID {
			kept = append(kept, t)
		}
	}
	s.tasks = append(kept, fetched...)
	return nil
}

// RefreshTasksForUser は指定ユーザーに割り当てられたタスクをストアから再読込し、
// キャッシュへIDでマージする。
func (s *Service) RefreshTasksForUser(ctx context.Context, userID string) error {
	fetched, err := s.taskStore.ListByAssignee(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list tasks for user %s: %w", userID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byID := make(map[string]int, len(s.tasks))
	for i, t := range s.tasks {
		byID[t.ID] = i
	}
	for _, t := range fetched {
		if i, ok := byID[t.ID]; ok {
			s.tasks[i] = t
		} else {
			s.tasks = append(s.tasks, t)
		}
	}
	return nil
}

// Snapshot はキャッシュの現在の複製を返す。
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Scrums: make([]model.Scrum, len(s.scrums)),
		Users:  make([]model.User, len(s.users)),
		Tasks:  make([]model.Task, len(s.tasks)),
	}
	copy(snap.Scrums, s.scrums)
	copy(snap.Users, s.users)
	copy(snap.Tasks, s.tasks)
	return snap
}

// ScrumByID はキャッシュから指定IDのスクラムを返す。見つからない場合はnilを返す。
func (s *Service) ScrumByID(id string) *model.Scrum {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, scrum := range s.scrums {
		if scrum.ID == id {
			found := scrum
			return &found
		}
	}
	return nil
}

// CreateScrumWithTask はスクラムと初回タスクを複合作成する。
//
// 一意性チェックはクライアントに見えている現在のスクラム集合に対する
// 事前チェックであり、レースの最終裁定はストアの一意制約が行う。
// どちらで検出されてもDuplicateScrumエラーとして返る。
//
// スクラム作成成功後のタスク作成失敗では補償削除を行わない
// （ストア契約に削除が存在しない）。孤児スクラムはWARNログと
// メトリクスで運用者に可視化し、エラーは呼び出し元へ報告する。
// 成功時はスクラム一覧と新スクラムのタスクをストアから再読込する。
func (s *Service) CreateScrumWithTask(ctx context.Context, input CreateScrumInput) (*model.Scrum, *model.Task, error) {
	if err := validate.ScrumForm(input.Name, input.TaskTitle, input.TaskDescription, input.TaskAssignedTo); err != nil {
		return nil, nil, err
	}

	status := input.InitialStatus
	if status == "" {
		status = model.StatusToDo
	}

	// 事前チェック: 大文字小文字を区別しない名前比較
	s.mu.RLock()
	for _, existing := range s.scrums {
		if strings.EqualFold(existing.Name, input.Name) {
			s.mu.RUnlock()
			return nil, nil, model.NewDuplicateScrumError(input.Name)
		}
	}
	s.mu.RUnlock()

	scrum, err := s.scrumStore.Create(ctx, model.Scrum{Name: input.Name})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scrum: %w", err)
	}

	task := model.Task{
		Title:       s.sanitizer.Sanitize(input.TaskTitle),
		Description: s.sanitizer.Sanitize(input.TaskDescription),
		Status:      status,
		ScrumID:     scrum.ID,
		AssignedTo:  input.TaskAssignedTo,
		History: []model.HistoryEntry{
			model.NewHistoryEntry(status, s.now()),
		},
	}

	createdTask, err := s.taskStore.Create(ctx, task)
	if err != nil {
		// 孤児スクラム: スクラムは作成済みだがタスクが作れなかった。
		if s.metrics != nil {
			s.metrics.RecordOrphanScrum()
		}
		slog.Warn("scrum created without its initial task",
			slog.String("scrum_id", scrum.ID),
			slog.String("scrum_name", scrum.Name),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("failed to create initial task (scrum %s has no task): %w", scrum.ID, err)
	}

	// 成功後はストアを正としてキャッシュを再読込する
	if err := s.RefreshScrums(ctx); err != nil {
		slog.Warn("failed to refresh scrums after creation",
			slog.String("error", err.Error()),
		)
	}
	if err := s.RefreshTasksForScrum(ctx, scrum.ID); err != nil {
		slog.Warn("failed to refresh tasks after creation",
			slog.String("error", err.Error()),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordScrumCreated()
	}
	slog.Info("scrum created with initial task",
		slog.String("scrum_id", scrum.ID),
		slog.String("task_id", createdTask.ID),
	)

	return scrum, createdTask, nil
}

// UpdateTaskStatus はタスクのステータスを更新し、履歴へ1件追記する。
//
// 対象タスクは現在のキャッシュに存在しなければならない。
// キャッシュを楽観的に先行更新してからストアへ永続化し、
// リモート書き込みが失敗した場合はキャッシュを更新前の状態へ巻き戻す。
// 成功1回につき履歴エントリはちょうど1件追加される。
func (s *Service) UpdateTaskStatus(ctx context.Context, taskID, newStatus string) (*model.Task, error) {
	if err := validate.Required("status", newStatus); err != nil {
		return nil, err
	}

	// 楽観的更新: キャッシュを先に書き換える
	s.mu.Lock()
	idx := -1
	for i, t := range s.tasks {
		if t.ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil, model.NewTaskNotFoundError(taskID)
	}

	prev := s.tasks[idx]
	updated := prev
	updated.History = prev.AppendHistory(newStatus, s.now())
	updated.Status = newStatus
	s.tasks[idx] = updated
	s.mu.Unlock()

	persisted, err := s.taskStore.UpdateStatus(ctx, taskID, newStatus, updated.History)
	if err != nil {
		// 巻き戻し: 楽観的更新を取り消してキャッシュとストアの乖離を防ぐ
		s.mu.Lock()
		for i, t := range s.tasks {
			if t.ID == taskID {
				s.tasks[i] = prev
				break
			}
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	// ストアの返したレコードを正としてキャッシュへ反映する
	s.mu.Lock()
	for i, t := range s.tasks {
		if t.ID == taskID {
			s.tasks[i] = *persisted
			break
		}
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordTaskStatusUpdated()
	}
	slog.Info("task status updated",
		slog.String("task_id", taskID),
		slog.String("status", newStatus),
	)

	return persisted, nil
}
