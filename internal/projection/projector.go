// Package projection はキャッシュのスナップショットからロール別の
// 読み取りビューを導出する。すべての関数は純粋で、入力を変更せず、
// 同一スナップショットに対して常に同一の結果を返す。
package projection

import (
	"github.com/dharshini/agiletrack/internal/model"
	"github.com/dharshini/agiletrack/internal/scrum"
)

// ScrumBoard は1スクラムとそれに属するタスクの組。
type ScrumBoard struct {
	Scrum model.Scrum
	Tasks []model.Task
}

// AdminView は管理者向けビュー。全スクラムのボードと、
// 管理者自身を除いたユーザー一覧を含む。
type AdminView struct {
	Boards []ScrumBoard
	Users  []model.User
}

// ForAdmin は管理者向けビューを導出する。
// ユーザー一覧には管理者ロールのユーザーは含まれない。
func ForAdmin(snap scrum.Snapshot) AdminView {
	view := AdminView{
		Boards: make([]ScrumBoard, 0, len(snap.Scrums)),
		Users:  make([]model.User, 0, len(snap.Users)),
	}

	for _, s := range snap.Scrums {
		board := ScrumBoard{Scrum: s}
		for _, t := range snap.Tasks {
			if t.ScrumID == s.ID {
				board.Tasks = append(board.Tasks, t)
			}
		}
		view.Boards = append(view.Boards, board)
	}

	for _, u := range snap.Users {
		if u.IsAdmin() {
			continue
		}
		view.Users = append(view.Users, u)
	}

	return view
}

// ForEmployee は指定ユーザーに割り当てられたタスクのみを返す。
// 他のユーザーのタスクは結果に含まれない。
func ForEmployee(snap scrum.Snapshot, userID string) []model.Task {
	tasks := make([]model.Task, 0)
	for _, t := range snap.Tasks {
		if t.AssignedTo == userID {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// BoardForScrum は指定スクラムのボードを導出する。
// スクラムがスナップショットに存在しない場合はnilを返す。
func BoardForScrum(snap scrum.Snapshot, scrumID string) *ScrumBoard {
	for _, s := range snap.Scrums {
		if s.ID == scrumID {
			board := ScrumBoard{Scrum: s}
			for _, t := range snap.Tasks {
				if t.ScrumID == scrumID {
					board.Tasks = append(board.Tasks, t)
				}
			}
			return &board
		}
	}
	return nil
}

// UsersAssignedToScrum は指定スクラムのタスクに割り当てられている
// ユーザーを返す。複数タスクを担当するユーザーも1回だけ現れる。
func UsersAssignedToScrum(snap scrum.Snapshot, scrumID string) []model.User {
	byID := make(map[string]model.User, len(snap.Users))
	for _, u := range snap.Users {
		byID[u.ID] = u
	}

	seen := make(map[string]bool)
	users := make([]model.User, 0)
	for _, t := range snap.Tasks {
		if t.ScrumID != scrumID || seen[t.AssignedTo] {
			continue
		}
		seen[t.AssignedTo] = true
		if u, ok := byID[t.AssignedTo]; ok {
			users = append(users, u)
		}
	}
	return users
}
