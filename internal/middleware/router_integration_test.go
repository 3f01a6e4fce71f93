package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dharshini/agiletrack/internal/model"
)

// TestRouterIntegration_ProtectedRoute_WithMiddlewareChain は
// Session -> RateLimit のミドルウェアチェーンがchi.Routerで正しく動作することを検証する。
func TestRouterIntegration_ProtectedRoute_WithMiddlewareChain(t *testing.T) {
	finder := mapSessionFinder{
		"router-test-session": {ID: "user-router-test", Role: model.RoleEmployee},
	}

	cfg := RateLimiterConfig{
		GeneralRate:        10,
		GeneralBurst:       20,
		ScrumCreationRate:  1,
		ScrumCreationBurst: 1,
		CleanupInterval:    1 * time.Minute,
	}
	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	r := chi.NewRouter()

	// 認証不要のヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// 認証が必要なルートグループ
	r.Group(func(r chi.Router) {
		r.Use(NewSessionMiddleware(finder))
		r.Use(rl.GeneralMiddleware())

		r.Get("/api/scrums", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := UserIDFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"user_id": userID})
		})

		// スクラム作成は追加のレート制限つき
		r.With(rl.ScrumCreationMiddleware()).Post("/api/scrums", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := UserIDFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"user_id": userID, "action": "created"})
		})
	})

	// テスト1: GET /api/scrums は認証ありで通る
	t.Run("GET_scrums_with_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/scrums", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "router-test-session"})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}

		var body map[string]string
		json.NewDecoder(w.Result().Body).Decode(&body)
		if body["user_id"] != "user-router-test" {
			t.Errorf("user_id = %q, want %q", body["user_id"], "user-router-test")
		}
	})

	// テスト2: GET /api/scrums は認証なしで401
	t.Run("GET_scrums_no_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/scrums", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
		}
	})

	// テスト3: POST /api/scrums は認証ありで通り、2回目は作成レート制限で429
	t.Run("POST_scrums_rate_limited", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/scrums", nil)
		req.AddCookie(&http.Cookie{Name: "session_id", Value: "router-test-session"})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("first POST: status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}

		req2 := httptest.NewRequest(http.MethodPost, "/api/scrums", nil)
		req2.AddCookie(&http.Cookie{Name: "session_id", Value: "router-test-session"})
		w2 := httptest.NewRecorder()

		r.ServeHTTP(w2, req2)

		if w2.Result().StatusCode != http.StatusTooManyRequests {
			t.Errorf("second POST: status = %d, want %d", w2.Result().StatusCode, http.StatusTooManyRequests)
		}
	})

	// テスト4: POST /api/scrums は認証なしで401（レート制限の前にセッションチェック）
	t.Run("POST_scrums_no_session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/scrums", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
		}
	})

	// テスト5: ヘルスチェックは認証不要
	t.Run("Health_endpoint_no_auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		r.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
		}
	})
}
