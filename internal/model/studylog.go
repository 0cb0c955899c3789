package model

import "time"

// MaxMinutes は1件の記録で許容される最大分数（1日分）。
const MaxMinutes = 1440

// StudySession はユーザーが記録した1回の学習ブロックを表す。
// Study / Distraction / AssignmentWork の親となる。
type StudySession struct {
	ID        string
	UserID    string
	Title     string
	Datetime  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Study はセッション内の学習内容の記録を表す。
type Study struct {
	ID            string
	SessionID     string
	What          string
	Understanding int // 理解度（0-10）
	Time          int // 分
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Distraction はセッション中の中断の記録を表す。
type Distraction struct {
	ID        string
	SessionID string
	Type      string // 例: "phone", "snack"
	TimeTaken int    // 分
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignmentWork はセッション内で特定の課題に費やした時間を表す。
// (assignment, session) で一意。
type AssignmentWork struct {
	ID           string
	AssignmentID string
	SessionID    string
	Time         int // 分
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AssignmentWorkWithAssignment は課題作業と対象課題を結合したモデル。
type AssignmentWorkWithAssignment struct {
	AssignmentWork
	Assignment Assignment
}
