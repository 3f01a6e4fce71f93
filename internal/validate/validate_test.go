package validate

import (
	"testing"

	"github.com/dharshini/agiletrack/internal/model"
)

// TestEmail_ValidFormats は有効なメールアドレスが通過することを検証する。
func TestEmail_ValidFormats(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@example.co.jp",
		"user+tag@sub.example.org",
	}
	for _, email := range valid {
		if err := Email(email); err != nil {
			t.Errorf("Email(%q) = %v, want nil", email, err)
		}
	}
}

// TestEmail_InvalidFormats は不正なメールアドレスが拒否されることを検証する。
func TestEmail_InvalidFormats(t *testing.T) {
	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@example",
		"user name@example.com",
	}
	for _, email := range invalid {
		err := Email(email)
		if err == nil {
			t.Errorf("Email(%q) = nil, want validation error", email)
			continue
		}
		if err.Code != model.ErrCodeValidationFailed {
			t.Errorf("Email(%q) code = %q, want %q", email, err.Code, model.ErrCodeValidationFailed)
		}
		if err.Field != "email" {
			t.Errorf("Email(%q) field = %q, want %q", email, err.Field, "email")
		}
	}
}

// TestPassword_Complexity はパスワード複雑性要件の各違反が検出されることを検証する。
func TestPassword_Complexity(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Passw0rd!", false},
		{"too short", "Pw0rd!", true},
		{"no uppercase", "passw0rd!", true},
		{"no lowercase", "PASSW0RD!", true},
		{"no digit", "Password!", true},
		{"no special", "Passw0rdX", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Password(tt.password)
			if tt.wantErr && err == nil {
				t.Errorf("Password(%q) = nil, want validation error", tt.password)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Password(%q) = %v, want nil", tt.password, err)
			}
		})
	}
}

// TestUserForm_FirstViolationWins はUserFormが最初の違反フィールドを報告することを検証する。
func TestUserForm_FirstViolationWins(t *testing.T) {
	err := UserForm("", "bad-email", "short")
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if err.Field != "name" {
		t.Errorf("field = %q, want %q", err.Field, "name")
	}
}

// TestScrumForm_AllFieldsRequired はスクラム作成フォームの必須フィールドを検証する。
func TestScrumForm_AllFieldsRequired(t *testing.T) {
	if err := ScrumForm("Team A", "T1", "desc", "user-1"); err != nil {
		t.Errorf("ScrumForm(valid) = %v, want nil", err)
	}

	tests := []struct {
		name      string
		scrum     string
		title     string
		desc      string
		assignee  string
		wantField string
	}{
		{"missing scrum name", "", "T1", "d", "u", "scrumName"},
		{"missing title", "Team", "", "d", "u", "taskTitle"},
		{"missing description", "Team", "T1", "", "u", "taskDescription"},
		{"missing assignee", "Team", "T1", "d", "", "taskAssignedTo"},
		{"whitespace only", "   ", "T1", "d", "u", "scrumName"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ScrumForm(tt.scrum, tt.title, tt.desc, tt.assignee)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if err.Field != tt.wantField {
				t.Errorf("field = %q, want %q", err.Field, tt.wantField)
			}
		})
	}
}

// TestLoginForm はログインフォームの検証を確認する。
func TestLoginForm(t *testing.T) {
	if err := LoginForm("user@example.com", "anything"); err != nil {
		t.Errorf("LoginForm(valid) = %v, want nil", err)
	}
	// ログインではパスワード複雑性を要求しない
	if err := LoginForm("user@example.com", "weak"); err != nil {
		t.Errorf("LoginForm(weak password) = %v, want nil", err)
	}
	if err := LoginForm("not-an-email", "anything"); err == nil {
		t.Error("expected validation error for invalid email, got nil")
	}
}
