package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dharshini/agiletrack/internal/middleware"
	"github.com/dharshini/agiletrack/internal/model"
	"github.com/dharshini/agiletrack/internal/projection"
	"github.com/dharshini/agiletrack/internal/scrum"
)

// ScrumServiceInterface はスクラムハンドラーが必要とするアグリゲートマネージャのインターフェース。
type ScrumServiceInterface interface {
	// RefreshScrums はスクラム一覧をストアから再読込する。
	RefreshScrums(ctx context.Context) error
	// RefreshTasksForScrum は指定スクラムのタスクをストアから再読込する。
	RefreshTasksForScrum(ctx context.Context, scrumID string) error
	// RefreshTasksForUser は指定ユーザーのタスクをストアから再読込する。
	RefreshTasksForUser(ctx context.Context, userID string) error
	// RefreshUsers はユーザー一覧をストアから再読込する。
	RefreshUsers(ctx context.Context) error
	// Snapshot はキャッシュの現在の複製を返す。
	Snapshot() scrum.Snapshot
	// CreateScrumWithTask はスクラムと初回タスクを複合作成する。
	CreateScrumWithTask(ctx context.Context, input scrum.CreateScrumInput) (*model.Scrum, *model.Task, error)
	// UpdateTaskStatus はタスクのステータスを更新し履歴へ追記する。
	UpdateTaskStatus(ctx context.Context, taskID, newStatus string) (*model.Task, error)
}

// ScrumHandler はスクラムとタスクのHTTPハンドラー。
type ScrumHandler struct {
	service ScrumServiceInterface
}

// NewScrumHandler はScrumHandlerを生成する。
func NewScrumHandler(service ScrumServiceInterface) *ScrumHandler {
	return &ScrumHandler{service: service}
}

// createScrumRequest はスクラム作成リクエストのボディ。
// スクラムは初回タスクとともに作成される。
type createScrumRequest struct {
	Name string `json:"name"`
	Task struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		AssignedTo  string `json:"assignedTo"`
		Status      string `json:"status"`
	} `json:"task"`
}

// updateTaskStatusRequest はタスクステータス更新リクエストのボディ。
type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

// createScrumResponse はスクラム複合作成のレスポンス。
type createScrumResponse struct {
	Scrum scrumResponse `json:"scrum"`
	Task  taskResponse  `json:"task"`
}

// scrumBoardResponse はスクラム詳細（タスクと担当ユーザー）のレスポンス。
type scrumBoardResponse struct {
	Scrum         scrumResponse  `json:"scrum"`
	Tasks         []taskResponse `json:"tasks"`
	AssignedUsers []userResponse `json:"assignedUsers"`
}

// ListScrums はスクラム一覧を返す。
// GET /api/scrums
func (h *ScrumHandler) ListScrums(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RefreshScrums(r.Context()); err != nil {
		handleServiceError(w, err)
		return
	}

	snap := h.service.Snapshot()
	scrums := make([]scrumResponse, 0, len(snap.Scrums))
	for i := range snap.Scrums {
		scrums = append(scrums, toScrumResponse(&snap.Scrums[i]))
	}

	writeJSON(w, http.StatusOK, scrums)
}

// CreateScrum はスクラムと初回タスクの複合作成を処理する。管理者のみ実行できる。
// POST /api/scrums
func (h *ScrumHandler) CreateScrum(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}
	if !user.IsAdmin() {
		writeForbidden(w)
		return
	}

	var req createScrumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	created, task, err := h.service.CreateScrumWithTask(r.Context(), scrum.CreateScrumInput{
		Name:            req.Name,
		TaskTitle:       req.Task.Title,
		TaskDescription: req.Task.Description,
		TaskAssignedTo:  req.Task.AssignedTo,
		InitialStatus:   req.Task.Status,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	slog.Info("scrum creation handled",
		slog.String("scrum_id", created.ID),
		slog.String("admin_id", user.ID),
	)

	writeJSON(w, http.StatusCreated, createScrumResponse{
		Scrum: toScrumResponse(created),
		Task:  toTaskResponse(task),
	})
}

// GetScrum はスクラム詳細（タスク一覧と担当ユーザー）を返す。
// GET /api/scrums/{id}
func (h *ScrumHandler) GetScrum(w http.ResponseWriter, r *http.Request) {
	scrumID := chi.URLParam(r, "id")

	if err := h.service.RefreshTasksForScrum(r.Context(), scrumID); err != nil {
		handleServiceError(w, err)
		return
	}

	snap := h.service.Snapshot()
	board := projection.BoardForScrum(snap, scrumID)
	if board == nil {
		writeAPIErrorResponse(w, http.StatusNotFound, model.NewScrumNotFoundError(scrumID))
		return
	}

	writeJSON(w, http.StatusOK, scrumBoardResponse{
		Scrum:         toScrumResponse(&board.Scrum),
		Tasks:         toTaskResponses(board.Tasks),
		AssignedUsers: toUserResponses(projection.UsersAssignedToScrum(snap, scrumID)),
	})
}

// UpdateTaskStatus はタスクのステータス更新を処理する。管理者のみ実行できる。
// PATCH /api/tasks/{id}/status
func (h *ScrumHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}
	if !user.IsAdmin() {
		writeForbidden(w)
		return
	}

	taskID := chi.URLParam(r, "id")

	var req updateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	task, err := h.service.UpdateTaskStatus(r.Context(), taskID, req.Status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTaskResponse(task))
}

// MyTasks は現在ユーザーに割り当てられたタスク一覧を返す。
// GET /api/me/tasks
func (h *ScrumHandler) MyTasks(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	if err := h.service.RefreshTasksForUser(r.Context(), user.ID); err != nil {
		handleServiceError(w, err)
		return
	}

	tasks := projection.ForEmployee(h.service.Snapshot(), user.ID)
	writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}

// UserTasks は指定ユーザーに割り当てられたタスク一覧を返す。管理者のみ実行できる。
// GET /api/users/{id}/tasks
func (h *ScrumHandler) UserTasks(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}
	if !user.IsAdmin() {
		writeForbidden(w)
		return
	}

	targetID := chi.URLParam(r, "id")

	if err := h.service.RefreshTasksForUser(r.Context(), targetID); err != nil {
		handleServiceError(w, err)
		return
	}

	tasks := projection.ForEmployee(h.service.Snapshot(), targetID)
	writeJSON(w, http.StatusOK, toTaskResponses(tasks))
}
