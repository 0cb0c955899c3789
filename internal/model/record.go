package model

import "time"

// SessionRecord はセッションに中断・課題作業・学習記録をLEFT JOINした集計入力行。
// 子レコードが存在しない場合も空スライスで保持される。
type SessionRecord struct {
	ID           string
	UserID       string
	Title        string
	Datetime     time.Time
	Distractions []DistractionRecord
	Works        []WorkRecord
	Studies      []StudyRecord
}

// DistractionRecord は集計用の中断記録。
type DistractionRecord struct {
	ID        string
	Type      string
	TimeTaken int
}

// WorkRecord は集計用の課題作業記録。課題と授業を展開済み。
type WorkRecord struct {
	ID         string
	Time       int
	Assignment AssignmentRef
}

// AssignmentRef は集計結果に含める課題の要約。
type AssignmentRef struct {
	ID    string
	Title string
	Class ClassRef
}

// ClassRef は集計結果に含める授業の要約。
type ClassRef struct {
	ID        string
	ClassCode string
	Professor string
}

// StudyRecord は集計用の学習記録。
type StudyRecord struct {
	ID            string
	What          string
	Understanding int
	Time          int
}
