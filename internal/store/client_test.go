package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dharshini/agiletrack/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, nil))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, &http.Client{Timeout: 5 * time.Second}, testLogger(), nil)
	return client, server
}

// TestHTTPUserStore_ListByEmail_SendsExactMatchQuery はemailクエリパラメータが
// 完全一致検索として送信されることを検証する。
func TestHTTPUserStore_ListByEmail_SendsExactMatchQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("email")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]userRecord{
			{ID: "u1", Name: "Alice", Email: "alice@example.com", Role: "employee"},
		})
	}))

	users, err := NewHTTPUserStore(client).ListByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("ListByEmail returned error: %v", err)
	}
	if gotQuery != "alice@example.com" {
		t.Errorf("email query = %q, want %q", gotQuery, "alice@example.com")
	}
	if len(users) != 1 || users[0].ID != "u1" {
		t.Errorf("unexpected users: %+v", users)
	}
	if users[0].Role != model.RoleEmployee {
		t.Errorf("role = %q, want %q", users[0].Role, model.RoleEmployee)
	}
}

// TestHTTPTaskStore_ListByScrumID はscrumIdフィルタ付きのタスク一覧取得を検証する。
func TestHTTPTaskStore_ListByScrumID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("scrumId"); got != "s1" {
			t.Errorf("scrumId query = %q, want %q", got, "s1")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]taskRecord{
			{ID: "t1", Title: "T1", ScrumID: "s1", AssignedTo: "u1", Status: model.StatusToDo,
				History: []model.HistoryEntry{{Status: model.StatusToDo, Date: "2026-08-31"}}},
		})
	}))

	tasks, err := NewHTTPTaskStore(client).ListByScrumID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("ListByScrumID returned error: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}
	if len(tasks[0].History) != 1 || tasks[0].History[0].Status != model.StatusToDo {
		t.Errorf("unexpected history: %+v", tasks[0].History)
	}
}

// TestHTTPTaskStore_UpdateStatus_SendsPatch はPATCHボディにstatusとhistoryのみが
// 含まれることを検証する。
func TestHTTPTaskStore_UpdateStatus_SendsPatch(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]json.RawMessage
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(taskRecord{
			ID: "t1", Status: model.StatusDone,
			History: []model.HistoryEntry{
				{Status: model.StatusToDo, Date: "2026-08-30"},
				{Status: model.StatusDone, Date: "2026-08-31"},
			},
		})
	}))

	history := []model.HistoryEntry{
		{Status: model.StatusToDo, Date: "2026-08-30"},
		{Status: model.StatusDone, Date: "2026-08-31"},
	}
	task, err := NewHTTPTaskStore(client).UpdateStatus(context.Background(), "t1", model.StatusDone, history)
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	if gotMethod != http.MethodPatch {
		t.Errorf("method = %q, want PATCH", gotMethod)
	}
	if gotPath != "/tasks/t1" {
		t.Errorf("path = %q, want /tasks/t1", gotPath)
	}
	if len(gotBody) != 2 {
		t.Errorf("patch body has %d fields, want 2 (status, history): %v", len(gotBody), gotBody)
	}
	if task.Status != model.StatusDone {
		t.Errorf("status = %q, want %q", task.Status, model.StatusDone)
	}
	if len(task.History) != 2 {
		t.Errorf("len(history) = %d, want 2", len(task.History))
	}
}

// TestClient_Conflict_RestoresDuplicateError はストアの409応答が
// 回復可能なDuplicate系APIErrorへ復元されることを検証する。
func TestClient_Conflict_RestoresDuplicateError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(errorBody{
			Code:     model.ErrCodeDuplicateScrum,
			Message:  "duplicate",
			Category: "scrum",
			Field:    "scrumName",
		})
	}))

	_, err := NewHTTPScrumStore(client).Create(context.Background(), model.Scrum{Name: "Team"})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *model.APIError: %v", err)
	}
	if apiErr.Code != model.ErrCodeDuplicateScrum {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeDuplicateScrum)
	}
}

// TestClient_Get_NotFound は404応答がErrNotFoundへ変換されることを検証する。
func TestClient_Get_NotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := NewHTTPUserStore(client).Get(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestClient_TransportFailure_ReturnsRemoteUnavailable は接続不能時に
// RemoteUnavailableエラーが返ることを検証する。
func TestClient_TransportFailure_ReturnsRemoteUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // 接続拒否させる

	client := NewClient(server.URL, &http.Client{Timeout: time.Second}, testLogger(), nil)

	_, err := NewHTTPScrumStore(client).List(context.Background())
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *model.APIError: %v", err)
	}
	if apiErr.Code != model.ErrCodeRemoteUnavailable {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeRemoteUnavailable)
	}
}

// TestHTTPScrumStore_Create_ReturnsAssignedID はストア採番のIDが返ることを検証する。
func TestHTTPScrumStore_Create_ReturnsAssignedID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body scrumRecord
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(scrumRecord{ID: "assigned-id", Name: body.Name})
	}))

	scrum, err := NewHTTPScrumStore(client).Create(context.Background(), model.Scrum{Name: "Alpha"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if scrum.ID != "assigned-id" {
		t.Errorf("id = %q, want %q", scrum.ID, "assigned-id")
	}
	if scrum.Name != "Alpha" {
		t.Errorf("name = %q, want %q", scrum.Name, "Alpha")
	}
}
