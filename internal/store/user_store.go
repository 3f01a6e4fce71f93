package store

import (
	"context"
	"net/url"
	"time"

	"github.com/dharshini/agiletrack/internal/model"
)

// userRecord はusersコレクションのワイヤ表現。
type userRecord struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (r userRecord) toModel() model.User {
	return model.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.Password,
		Role:      model.Role(r.Role),
		CreatedAt: r.CreatedAt,
	}
}

// HTTPUserStore はリソースストアのusersコレクションへのHTTPクライアント。
type HTTPUserStore struct {
	client *Client
}

// NewHTTPUserStore はHTTPUserStoreを生成する。
func NewHTTPUserStore(client *Client) *HTTPUserStore {
	return &HTTPUserStore{client: client}
}

// List は全ユーザーを返す。
func (s *HTTPUserStore) List(ctx context.Context) ([]model.User, error) {
	var records []userRecord
	if err := s.client.list(ctx, "users", nil, &records); err != nil {
		return nil, err
	}
	users := make([]model.User, len(records))
	for i, r := range records {
		users[i] = r.toModel()
	}
	return users, nil
}

// ListByEmail はメールアドレス完全一致でユーザーを検索する。
func (s *HTTPUserStore) ListByEmail(ctx context.Context, email string) ([]model.User, error) {
	query := url.Values{}
	query.Set("email", email)

	var records []userRecord
	if err := s.client.list(ctx, "users", query, &records); err != nil {
		return nil, err
	}
	users := make([]model.User, len(records))
	for i, r := range records {
		users[i] = r.toModel()
	}
	return users, nil
}

// Get は指定IDのユーザーを取得する。存在しない場合はErrNotFoundを返す。
func (s *HTTPUserStore) Get(ctx context.Context, id string) (*model.User, error) {
	var record userRecord
	if err := s.client.get(ctx, "users", id, &record); err != nil {
		return nil, err
	}
	user := record.toModel()
	return &user, nil
}

// Create はユーザーを作成し、ストアが採番したIDを含むレコードを返す。
func (s *HTTPUserStore) Create(ctx context.Context, user model.User) (*model.User, error) {
	body := userRecord{
		Name:     user.Name,
		Email:    user.Email,
		Password: user.Password,
		Role:     string(user.Role),
	}

	var record userRecord
	if err := s.client.create(ctx, "users", body, &record); err != nil {
		return nil, err
	}
	created := record.toModel()
	return &created, nil
}

// compile-time interface check
var _ UserStore = (*HTTPUserStore)(nil)
