package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dharshini/agiletrack/internal/middleware"
	"github.com/dharshini/agiletrack/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// CreateUser は管理者操作としてロールを指定してユーザーを作成する。
	CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	// List は全ユーザーを返す。
	List(ctx context.Context) ([]model.User, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。すべて管理者専用。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// createUserRequest は管理者によるユーザー作成リクエストのボディ。
type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ListUsers はユーザー一覧を返す。管理者ロールのユーザーは含まれない。
// GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}
	if !user.IsAdmin() {
		writeForbidden(w)
		return
	}

	users, err := h.service.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 管理者一覧への他の管理者の露出は避ける
	visible := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.IsAdmin() {
			continue
		}
		visible = append(visible, u)
	}

	writeJSON(w, http.StatusOK, toUserResponses(visible))
}

// CreateUser は管理者によるユーザー作成を処理する。
// POST /api/users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}
	if !user.IsAdmin() {
		writeForbidden(w)
		return
	}

	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequest(w)
		return
	}

	role := model.Role(req.Role)
	if role == "" {
		role = model.RoleEmployee
	}
	if role != model.RoleAdmin && role != model.RoleEmployee {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewValidationError("role", "ロールはadminまたはemployeeを指定してください"))
		return
	}

	created, err := h.service.CreateUser(r.Context(), req.Name, req.Email, req.Password, role)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(created))
}
