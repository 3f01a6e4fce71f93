// Package user はユーザー登録と管理者によるユーザー作成を提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dharshini/agiletrack/internal/model"
	"github.com/dharshini/agiletrack/internal/store"
	"github.com/dharshini/agiletrack/internal/validate"
)

// Service はユーザーの作成と照会を提供する。
//
// メール一意性の事前チェックはストアへの完全一致検索で行い、
// レースの最終裁定はストアの一意制約が担う。どちらで検出されても
// DuplicateEmailエラーとして返る。
type Service struct {
	userStore store.UserStore
}

// NewService はServiceを生成する。
func NewService(userStore store.UserStore) *Service {
	return &Service{userStore: userStore}
}

// SignUp は一般ユーザーとして新規登録する。ロールは常にemployee。
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*model.User, error) {
	return s.create(ctx, name, email, password, model.RoleEmployee)
}

// CreateUser は管理者操作としてロールを指定してユーザーを作成する。
func (s *Service) CreateUser(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	return s.create(ctx, name, email, password, role)
}

// create はユーザー作成の共通処理。
// 入力の形式検証に失敗した場合、ストアへの呼び出しは一切行わない。
// メール重複の事前チェックで既存ユーザーが見つかった場合も作成呼び出しは行わない。
func (s *Service) create(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if err := validate.UserForm(name, email, password); err != nil {
		return nil, err
	}

	existing, err := s.userStore.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if len(existing) > 0 {
		return nil, model.NewDuplicateEmailError(email)
	}

	created, err := s.userStore.Create(ctx, model.User{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created",
		slog.String("user_id", created.ID),
		slog.String("role", string(created.Role)),
	)

	return created, nil
}

// Get は指定IDのユーザーを返す。
func (s *Service) Get(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userStore.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}
	return user, nil
}

// List は全ユーザーを返す。
func (s *Service) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
