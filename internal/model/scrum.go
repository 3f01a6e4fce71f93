package model

import "time"

// Scrum はタスクを所有するスクラムチームを表す。
// Nameは全スクラム間で一意（大文字小文字を区別しない比較）。
// 一意性は作成時にアグリゲートマネージャの事前チェックと
// ストアの一意インデックスの両方で担保される。
type Scrum struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
