package model

import "time"

// タスクステータスの既定値。
// ステータスは自由形式の文字列であり、以下の3値はUIが提示するデフォルトに過ぎない。
// 遷移グラフは存在せず、任意のステータスから任意のステータスへ変更できる。
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// historyDateFormat は履歴エントリの日付形式（YYYY-MM-DD）。
const historyDateFormat = "2006-01-02"

// HistoryEntry はタスクのステータス変更イベント1件を表すイミュータブルなレコード。
type HistoryEntry struct {
	Status string `json:"status"`
	Date   string `json:"date"`
}

// NewHistoryEntry は指定時刻の日付を持つ履歴エントリを生成する。
func NewHistoryEntry(status string, at time.Time) HistoryEntry {
	return HistoryEntry{
		Status: status,
		Date:   at.Format(historyDateFormat),
	}
}

// Task は作業単位を表す。
// ScrumIDとAssignedToは作成時に設定され、以後変更されない。
// Historyは追記専用で、History[0]は作成時のステータス、
// History[len-1]は常に現在のStatusと一致する。
type Task struct {
	ID          string
	Title       string
	Description string
	Status      string
	ScrumID     string
	AssignedTo  string
	History     []HistoryEntry
	CreatedAt   time.Time
}

// AppendHistory はステータス変更を履歴に追記し、現在ステータスを上書きした
// 新しい履歴スライスを返す。元のスライスは変更しない。
func (t *Task) AppendHistory(status string, at time.Time) []HistoryEntry {
	history := make([]HistoryEntry, 0, len(t.History)+1)
	history = append(history, t.History...)
	history = append(history, NewHistoryEntry(status, at))
	return history
}
