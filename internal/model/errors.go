// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, scrum, task, user, system
	Action   string // ユーザー向け対処方法
	Field    string // バリデーションエラーの場合の対象フィールド名（任意）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateScrum     = "DUPLICATE_SCRUM"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeTaskNotFound       = "TASK_NOT_FOUND"
	ErrCodeScrumNotFound      = "SCRUM_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeRemoteUnavailable  = "REMOTE_UNAVAILABLE"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
)

// NewDuplicateScrumError はスクラム名重複エラーを生成する。
// 事前チェックによる検出とストアの一意制約違反（レース負け）の双方で使用され、
// 呼び出し側は両者を区別できない（どちらも回復可能なエラーとして扱う）。
func NewDuplicateScrumError(name string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateScrum,
		Message:  fmt.Sprintf("同名のスクラムチームが既に存在します: %s", name),
		Category: "scrum",
		Action:   "別のスクラム名を指定してください。大文字小文字の違いは同名とみなされます。",
		Field:    "scrumName",
	}
}

// NewDuplicateEmailError はメールアドレス重複エラーを生成する。
func NewDuplicateEmailError(email string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  fmt.Sprintf("このメールアドレスは既に登録されています: %s", email),
		Category: "user",
		Action:   "別のメールアドレスを使用してください。",
		Field:    "email",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "task",
		Action:   "タスクIDを確認し、一覧を再読み込みしてください。",
	}
}

// NewScrumNotFoundError はスクラム未検出エラーを生成する。
func NewScrumNotFoundError(scrumID string) *APIError {
	return &APIError{
		Code:     ErrCodeScrumNotFound,
		Message:  fmt.Sprintf("指定されたスクラムが見つかりません: %s", scrumID),
		Category: "scrum",
		Action:   "スクラムIDを確認し、一覧を再読み込みしてください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// fieldには原因となったフォームフィールド（email または password）を指定する。
func NewInvalidCredentialsError(field, message string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  message,
		Category: "auth",
		Action:   "メールアドレスとパスワードを確認してください。",
		Field:    field,
	}
}

// NewRemoteUnavailableError はリソースストアへの到達失敗エラーを生成する。
// ネットワーク障害やストアの予期しない応答を包み、セッションを落とさずに
// 呼び出し元へ失敗として報告するために使用する。
func NewRemoteUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeRemoteUnavailable,
		Message:  fmt.Sprintf("リソースストアへのアクセスに失敗しました: %s", reason),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewValidationError はフィールド単位のバリデーションエラーを生成する。
// バリデーションエラーはリモート呼び出しの前にローカルで解決され、
// ストアへ送信されることはない。
func NewValidationError(field, message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		Category: "validation",
		Action:   "入力内容を修正して再度送信してください。",
		Field:    field,
	}
}
