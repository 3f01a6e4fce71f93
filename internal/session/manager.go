// Package session はログインセッションの保持を提供する。
// プロセスグローバルな現在ユーザー状態を、ライフサイクルの明確な
// 注入可能オブジェクトとして再設計したもの。ログイン時に設定され、
// ログアウト時に破棄され、それ以外の箇所からは読み取り専用で参照される。
package session

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/dharshini/agiletrack/internal/model"
)

// entry はセッション1件を表す。
type entry struct {
	user      model.User
	expiresAt time.Time
}

// Manager はセッションの発行・照会・破棄を管理する。
// セッションはプロセス内メモリに保持され、再起動で失われる。
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]entry

	maxAge          time.Duration
	cleanupInterval time.Duration
	stopCh          chan struct{}
}

// NewManager は新しいManagerを生成する。
// バックグラウンドで期限切れセッションのクリーンアップを開始する。
func NewManager(maxAge, cleanupInterval time.Duration) *Manager {
	m := &Manager{
		sessions:        make(map[string]entry),
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
		stopCh:          make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (m *Manager) Stop() {
	close(m.stopCh)
}

// Login はユーザーのセッションを発行し、セッションIDを返す。
func (m *Manager) Login(user model.User) (string, error) {
	id, err := generateSessionID()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = entry{
		user:      user,
		expiresAt: time.Now().Add(m.maxAge),
	}

	return id, nil
}

// Current は指定セッションIDの現在ユーザーを返す。
// セッションが存在しない、または期限切れの場合はnilを返す。
func (m *Manager) Current(sessionID string) *model.User {
	m.mu.RLock()
	e, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return nil
	}

	user := e.user
	return &user
}

// Logout は指定セッションを破棄する。存在しないIDは何もしない。
func (m *Manager) Logout(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Count は現在保持しているセッション数を返す。テストおよびメトリクス用。
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// cleanupLoop はバックグラウンドで期限切れセッションを定期的に削除する。
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.stopCh:
			return
		}
	}
}

// cleanup は期限切れセッションを削除する。
func (m *Manager) cleanup() {
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.sessions {
		if now.After(e.expiresAt) {
			delete(m.sessions, id)
		}
	}
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
