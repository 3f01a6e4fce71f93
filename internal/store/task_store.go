package store

import (
	"context"
	"net/url"
	"time"

	"github.com/dharshini/agiletrack/internal/model"
)

// taskRecord はtasksコレクションのワイヤ表現。
type taskRecord struct {
	ID          string               `json:"id,omitempty"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      string               `json:"status"`
	ScrumID     string               `json:"scrumId"`
	AssignedTo  string               `json:"assignedTo"`
	History     []model.HistoryEntry `json:"history"`
	CreatedAt   time.Time            `json:"createdAt,omitempty"`
}

func (r taskRecord) toModel() model.Task {
	return model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		ScrumID:     r.ScrumID,
		AssignedTo:  r.AssignedTo,
		History:     r.History,
		CreatedAt:   r.CreatedAt,
	}
}

// taskPatch はPATCH tasks/{id}の部分更新ボディ。
// 変更されるのはstatusとhistoryのみ。
type taskPatch struct {
	Status  string               `json:"status"`
	History []model.HistoryEntry `json:"history"`
}

// HTTPTaskStore はリソースストアのtasksコレクションへのHTTPクライアント。
type HTTPTaskStore struct {
	client *Client
}

// NewHTTPTaskStore はHTTPTaskStoreを生成する。
func NewHTTPTaskStore(client *Client) *HTTPTaskStore {
	return &HTTPTaskStore{client: client}
}

// ListByScrumID は指定スクラムに属するタスクを返す。
func (s *HTTPTaskStore) ListByScrumID(ctx context.Context, scrumID string) ([]model.Task, error) {
	query := url.Values{}
	query.Set("scrumId", scrumID)
	return s.listTasks(ctx, query)
}

// ListByAssignee は指定ユーザーに割り当てられたタスクを返す。
func (s *HTTPTaskStore) ListByAssignee(ctx context.Context, userID string) ([]model.Task, error) {
	query := url.Values{}
	query.Set("assignedTo", userID)
	return s.listTasks(ctx, query)
}

func (s *HTTPTaskStore) listTasks(ctx context.Context, query url.Values) ([]model.Task, error) {
	var records []taskRecord
	if err := s.client.list(ctx, "tasks", query, &records); err != nil {
		return nil, err
	}
	tasks := make([]model.Task, len(records))
	for i, r := range records {
		tasks[i] = r.toModel()
	}
	return tasks, nil
}

// Get は指定IDのタスクを取得する。存在しない場合はErrNotFoundを返す。
func (s *HTTPTaskStore) Get(ctx context.Context, id string) (*model.Task, error) {
	var record taskRecord
	if err := s.client.get(ctx, "tasks", id, &record); err != nil {
		return nil, err
	}
	task := record.toModel()
	return &task, nil
}

// Create はタスクを作成し、ストアが採番したIDを含むレコードを返す。
func (s *HTTPTaskStore) Create(ctx context.Context, task model.Task) (*model.Task, error) {
	body := taskRecord{
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		ScrumID:     task.ScrumID,
		AssignedTo:  task.AssignedTo,
		History:     task.History,
	}

	var record taskRecord
	if err := s.client.create(ctx, "tasks", body, &record); err != nil {
		return nil, err
	}
	created := record.toModel()
	return &created, nil
}

// UpdateStatus はタスクのステータスと履歴のみを部分更新する。
func (s *HTTPTaskStore) UpdateStatus(ctx context.Context, id, status string, history []model.HistoryEntry) (*model.Task, error) {
	body := taskPatch{Status: status, History: history}

	var record taskRecord
	if err := s.client.patch(ctx, "tasks", id, body, &record); err != nil {
		return nil, err
	}
	updated := record.toModel()
	return &updated, nil
}

// compile-time interface check
var _ TaskStore = (*HTTPTaskStore)(nil)
