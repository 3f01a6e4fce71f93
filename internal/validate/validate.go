// Package validate はフォーム入力のフィールド単位バリデーションを提供する。
// バリデーションはリモート呼び出しの前にローカルで実行され、
// 違反がある場合はストアへのリクエストは一切行われない。
package validate

import (
	"regexp"
	"strings"

	"github.com/dharshini/agiletrack/internal/model"
)

// emailPattern はメールアドレス形式の検証パターン。
// ローカル部・ドメイン部に空白と@を含まず、ドメインにドットを1つ以上含むこと。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// パスワード複雑性の各要件パターン。
var (
	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`[0-9]`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*]`)
)

// passwordMinLength はパスワードの最小文字数。
const passwordMinLength = 8

// Required はフィールドが空でないことを検証する。
func Required(field, value string) *model.APIError {
	if strings.TrimSpace(value) == "" {
		return model.NewValidationError(field, field+" is required")
	}
	return nil
}

// Email はメールアドレスの形式を検証する。
func Email(value string) *model.APIError {
	if err := Required("email", value); err != nil {
		return err
	}
	if !emailPattern.MatchString(value) {
		return model.NewValidationError("email", "invalid email format")
	}
	return nil
}

// Password はパスワードの複雑性要件を検証する。
// 要件: 8文字以上、大文字・小文字・数字・記号（!@#$%^&*）を各1文字以上含むこと。
func Password(value string) *model.APIError {
	if err := Required("password", value); err != nil {
		return err
	}
	if len(value) < passwordMinLength {
		return model.NewValidationError("password", "password must be at least 8 characters")
	}
	if !upperPattern.MatchString(value) {
		return model.NewValidationError("password", "password must contain at least one uppercase letter")
	}
	if !lowerPattern.MatchString(value) {
		return model.NewValidationError("password", "password must contain at least one lowercase letter")
	}
	if !digitPattern.MatchString(value) {
		return model.NewValidationError("password", "password must contain at least one number")
	}
	if !specialPattern.MatchString(value) {
		return model.NewValidationError("password", "password must contain at least one special character (!@#$%^&*)")
	}
	return nil
}

// UserForm はユーザー作成フォーム（サインアップ・管理者によるユーザー作成）を検証する。
// 最初に検出した違反を返し、違反がなければnilを返す。
func UserForm(name, email, password string) *model.APIError {
	if err := Required("name", name); err != nil {
		return err
	}
	if err := Email(email); err != nil {
		return err
	}
	if err := Password(password); err != nil {
		return err
	}
	return nil
}

// LoginForm はログインフォームを検証する。
// ログインではパスワード複雑性は要求されない（存在チェックのみ）。
func LoginForm(email, password string) *model.APIError {
	if err := Email(email); err != nil {
		return err
	}
	if err := Required("password", password); err != nil {
		return err
	}
	return nil
}

// ScrumForm はスクラム作成フォーム（スクラム＋初回タスク）を検証する。
// ステータスは自由形式のため検証しない（空の場合は呼び出し側が既定値を補う）。
func ScrumForm(name, taskTitle, taskDescription, assignedTo string) *model.APIError {
	if err := Required("scrumName", name); err != nil {
		return err
	}
	if err := Required("taskTitle", taskTitle); err != nil {
		return err
	}
	if err := Required("taskDescription", taskDescription); err != nil {
		return err
	}
	if err := Required("taskAssignedTo", assignedTo); err != nil {
		return err
	}
	return nil
}
