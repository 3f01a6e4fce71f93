// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleAdmin は管理者。スクラムとタスクの作成・更新権限を持つ。
	RoleAdmin Role = "admin"
	// RoleEmployee は一般従業員。自分に割り当てられたタスクの閲覧のみ可能。
	RoleEmployee Role = "employee"
)

// User はサービス利用ユーザーを表す。
// Emailはストア全体で一意（コアの事前チェックとストアの一意制約で保証する）。
// Passwordは現行仕様どおり平文のまま保持し、ログイン時に逐語比較される。
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Role      Role
	CreatedAt time.Time
}

// IsAdmin はユーザーが管理者権限を持つかを返す。
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
