// Package storeserver はリソースストアのHTTPサーバーを提供する。
// users・scrums・tasksの3コレクションをフラットなリソースAPIとして公開し、
// 一意性制約（メールアドレス、スクラム名）の最終裁定を担う。
// コレクションをまたぐトランザクションは提供しない。
package storeserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dharshini/agiletrack/internal/model"
	"github.com/dharshini/agiletrack/internal/repository"
)

// Handler はリソースストアのHTTPハンドラー。
type Handler struct {
	users  repository.UserRepository
	scrums repository.ScrumRepository
	tasks  repository.TaskRepository
	now    func() time.Time
}

// NewHandler はHandlerを生成する。
func NewHandler(users repository.UserRepository, scrums repository.ScrumRepository, tasks repository.TaskRepository) *Handler {
	return &Handler{
		users:  users,
		scrums: scrums,
		tasks:  tasks,
		now:    time.Now,
	}
}

// Router は全コレクションのルーティングを構成したchi.Routerを返す。
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", h.Health)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
	})

	r.Route("/scrums", func(r chi.Router) {
		r.Get("/", h.ListScrums)
		r.Post("/", h.CreateScrum)
		r.Get("/{id}", h.GetScrum)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks)
		r.Post("/", h.CreateTask)
		r.Get("/{id}", h.GetTask)
		r.Patch("/{id}", h.PatchTask)
	})

	return r
}

// --- ワイヤ表現 ---

// userRecord はusersコレクションのワイヤ表現。
type userRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserRecord(user model.User) userRecord {
	return userRecord{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Password:  user.Password,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

// scrumRecord はscrumsコレクションのワイヤ表現。
type scrumRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toScrumRecord(scrum model.Scrum) scrumRecord {
	return scrumRecord{
		ID:        scrum.ID,
		Name:      scrum.Name,
		CreatedAt: scrum.CreatedAt,
	}
}

// taskRecord はtasksコレクションのワイヤ表現。
type taskRecord struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      string               `json:"status"`
	ScrumID     string               `json:"scrumId"`
	AssignedTo  string               `json:"assignedTo"`
	History     []model.HistoryEntry `json:"history"`
	CreatedAt   time.Time            `json:"createdAt"`
}

func toTaskRecord(task model.Task) taskRecord {
	history := task.History
	if history == nil {
		history = []model.HistoryEntry{}
	}
	return taskRecord{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		ScrumID:     task.ScrumID,
		AssignedTo:  task.AssignedTo,
		History:     history,
		CreatedAt:   task.CreatedAt,
	}
}

// taskPatchRequest はPATCH /tasks/{id}の部分更新ボディ。
type taskPatchRequest struct {
	Status  string               `json:"status"`
	History []model.HistoryEntry `json:"history"`
}

// errorResponse は統一エラーフォーマットのレスポンス。
type errorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
	Field    string `json:"field,omitempty"`
}

// --- ハンドラー ---

// Health はヘルスチェックに応答する。
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListUsers は全ユーザー、またはemailクエリ指定時は完全一致するユーザーを返す。
// GET /users?email=
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var (
		users []model.User
		err   error
	)
	if email := r.URL.Query().Get("email"); email != "" {
		users, err = h.users.ListByEmail(r.Context(), email)
	} else {
		users, err = h.users.List(r.Context())
	}
	if err != nil {
		handleRepoError(w, err)
		return
	}

	records := make([]userRecord, len(users))
	for i, u := range users {
		records[i] = toUserRecord(u)
	}
	writeJSON(w, http.StatusOK, records)
}

// CreateUser はユーザーを作成する。IDはサーバーが採番する。
// POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, model.NewValidationError("user", "name, email and password are required"))
		return
	}
	if req.Role == "" {
		req.Role = string(model.RoleEmployee)
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      model.Role(req.Role),
		CreatedAt: h.now(),
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		handleRepoError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserRecord(*user))
}

// GetUser は指定IDのユーザーを返す。
// GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleRepoError(w, err)
		return
	}
	if user == nil {
		writeNotFound(w, "user")
		return
	}
	writeJSON(w, http.StatusOK, toUserRecord(*user))
}

// ListScrums は全スクラムを返す。
// GET /scrums
func (h *Handler) ListScrums(w http.ResponseWriter, r *http.Request) {
	scrums, err := h.scrums.List(r.Context())
	if err != nil {
		handleRepoError(w, err)
		return
	}

	records := make([]scrumRecord, len(scrums))
	for i, s := range scrums {
		records[i] = toScrumRecord(s)
	}
	writeJSON(w, http.StatusOK, records)
}

// CreateScrum はスクラムを作成する。IDはサーバーが採番する。
// 名前の一意性（大文字小文字を区別しない）はデータベースの一意インデックスが裁定し、
// 違反時は409を返す。
// POST /scrums
func (h *Handler) CreateScrum(w http.ResponseWriter, r *http.Request) {
	var req scrumRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, model.NewValidationError("name", "name is required"))
		return
	}

	scrum := &model.Scrum{
		ID:        uuid.NewString(),
		Name:      req.Name,
		CreatedAt: h.now(),
	}
	if err := h.scrums.Create(r.Context(), scrum); err != nil {
		handleRepoError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toScrumRecord(*scrum))
}

// GetScrum は指定IDのスクラムを返す。
// GET /scrums/{id}
func (h *Handler) GetScrum(w http.ResponseWriter, r *http.Request) {
	scrum, err := h.scrums.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleRepoError(w, err)
		return
	}
	if scrum == nil {
		writeNotFound(w, "scrum")
		return
	}
	writeJSON(w, http.StatusOK, toScrumRecord(*scrum))
}

// ListTasks は全タスク、またはクエリでフィルタしたタスクを返す。
// GET /tasks?scrumId=&assignedTo=
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	var (
		tasks []model.Task
		err   error
	)
	switch {
	case r.URL.Query().Get("scrumId") != "":
		tasks, err = h.tasks.ListByScrumID(r.Context(), r.URL.Query().Get("scrumId"))
	case r.URL.Query().Get("assignedTo") != "":
		tasks, err = h.tasks.ListByAssignee(r.Context(), r.URL.Query().Get("assignedTo"))
	default:
		tasks, err = h.tasks.List(r.Context())
	}
	if err != nil {
		handleRepoError(w, err)
		return
	}

	records := make([]taskRecord, len(tasks))
	for i, t := range tasks {
		records[i] = toTaskRecord(t)
	}
	writeJSON(w, http.StatusOK, records)
}

// CreateTask はタスクを作成する。IDはサーバーが採番する。
// POST /tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRecord
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.Title == "" || req.ScrumID == "" || req.AssignedTo == "" {
		writeError(w, http.StatusBadRequest, model.NewValidationError("task", "title, scrumId and assignedTo are required"))
		return
	}
	if req.Status == "" {
		req.Status = model.StatusToDo
	}
	if req.History == nil {
		req.History = []model.HistoryEntry{}
	}

	task := &model.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		ScrumID:     req.ScrumID,
		AssignedTo:  req.AssignedTo,
		History:     req.History,
		CreatedAt:   h.now(),
	}
	if err := h.tasks.Create(r.Context(), task); err != nil {
		handleRepoError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTaskRecord(*task))
}

// GetTask は指定IDのタスクを返す。
// GET /tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleRepoError(w, err)
		return
	}
	if task == nil {
		writeNotFound(w, "task")
		return
	}
	writeJSON(w, http.StatusOK, toTaskRecord(*task))
}

// PatchTask はタスクのステータスと履歴のみを部分更新する。
// 他のフィールドは変更されない。履歴はボディに含まれる場合のみ置換し、
// 省略された場合は保存済みの履歴を維持する。
// PATCH /tasks/{id}
func (h *Handler) PatchTask(w http.ResponseWriter, r *http.Request) {
	var req taskPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, model.NewValidationError("status", "status is required"))
		return
	}

	// 履歴が省略されたPATCHで保存済みの履歴をnullで潰さない
	if req.History == nil {
		existing, err := h.tasks.FindByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			handleRepoError(w, err)
			return
		}
		if existing == nil {
			writeNotFound(w, "task")
			return
		}
		req.History = existing.History
	}

	task, err := h.tasks.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.History)
	if err != nil {
		handleRepoError(w, err)
		return
	}
	if task == nil {
		writeNotFound(w, "task")
		return
	}
	writeJSON(w, http.StatusOK, toTaskRecord(*task))
}

// --- ヘルパー関数 ---

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// writeError は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, errorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
		Field:    apiErr.Field,
	})
}

// writeInvalidRequest は解析できないリクエストボディへの応答を書き込む。
func writeInvalidRequest(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// writeNotFound はレコード未検出の応答を書き込む。
func writeNotFound(w http.ResponseWriter, collection string) {
	writeError(w, http.StatusNotFound, &model.APIError{
		Code:     "NOT_FOUND",
		Message:  "指定されたレコードが見つかりません。",
		Category: collection,
		Action:   "IDを確認してください。",
	})
}

// handleRepoError はリポジトリ層から返されたエラーを適切なHTTPステータスコードに変換する。
// 一意制約違反は409を返し、クライアント側で重複エラーとして復元される。
func handleRepoError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case model.ErrCodeDuplicateEmail, model.ErrCodeDuplicateScrum:
			writeError(w, http.StatusConflict, apiErr)
		case model.ErrCodeValidationFailed:
			writeError(w, http.StatusBadRequest, apiErr)
		default:
			writeError(w, http.StatusInternalServerError, apiErr)
		}
		return
	}

	slog.Error("store internal error", slog.String("error", err.Error()))
	writeError(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}
