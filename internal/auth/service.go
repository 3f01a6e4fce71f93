// Package auth はメールアドレスとパスワードによる認証機能を提供する。
package auth

import (
	"context"
	"log/slog"

	"github.com/dharshini/agiletrack/internal/model"
	"github.com/dharshini/agiletrack/internal/session"
	"github.com/dharshini/agiletrack/internal/store"
	"github.com/dharshini/agiletrack/internal/validate"
)

// Service はログイン・ログアウトと現在ユーザーの照会を提供する。
//
// 認証はリソースストアへのメール完全一致検索と、取得レコードに対する
// パスワード照合の2段階で行う。どの段階で失敗したかはエラーのFieldで
// 呼び出し元に区別して返す。
type Service struct {
	userStore store.UserStore
	sessions  *session.Manager
}

// NewService はServiceを生成する。
func NewService(userStore store.UserStore, sessions *session.Manager) *Service {
	return &Service{
		userStore: userStore,
		sessions:  sessions,
	}
}

// Login はメールアドレスとパスワードを検証し、セッションを発行する。
//
// 入力の形式検証で失敗した場合、ストアへの問い合わせは行わない。
// メールに一致するユーザーが存在しない場合はField="email"、
// パスワード不一致の場合はField="password"のエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	if err := validate.LoginForm(email, password); err != nil {
		return nil, "", err
	}

	users, err := s.userStore.ListByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if len(users) == 0 {
		slog.Info("login failed", slog.String("reason", "unknown email"))
		return nil, "", model.NewInvalidCredentialsError("email", "メールアドレスが登録されていません")
	}

	user := users[0]
	if user.Password != password {
		slog.Info("login failed",
			slog.String("reason", "password mismatch"),
			slog.String("user_id", user.ID),
		)
		return nil, "", model.NewInvalidCredentialsError("password", "パスワードが正しくありません")
	}

	sessionID, err := s.sessions.Login(user)
	if err != nil {
		return nil, "", err
	}

	slog.Info("login succeeded",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &user, sessionID, nil
}

// Logout は指定セッションを破棄する。
func (s *Service) Logout(sessionID string) {
	s.sessions.Logout(sessionID)
	slog.Info("logout")
}

// CurrentUser は指定セッションIDの現在ユーザーを返す。
// 未ログインまたは期限切れの場合はnilを返す。
func (s *Service) CurrentUser(sessionID string) *model.User {
	return s.sessions.Current(sessionID)
}
