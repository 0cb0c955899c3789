package model

import "time"

// Season は学期の季節区分を表す。
type Season string

const (
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
	SeasonFall   Season = "Fall"
	SeasonWinter Season = "Winter"
)

// Seasons は有効な季節区分の一覧。
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter}

// IsValid は季節区分が定義済みの値かどうかを返す。
func (s Season) IsValid() bool {
	for _, v := range Seasons {
		if s == v {
			return true
		}
	}
	return false
}

// Semester はユーザーの学期を表す。(user, season, year) で一意。
type Semester struct {
	ID        string
	UserID    string
	Season    Season
	Year      int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Class は学期に属する授業を表す。(semester, class_code) で一意。
type Class struct {
	ID         string
	SemesterID string
	ClassCode  string // 例: "CS180"
	Professor  string
	Grade      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Assignment は授業に属する課題を表す。
type Assignment struct {
	ID        string
	ClassID   string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssignmentWithClass は課題と所属授業を結合したモデル。
type AssignmentWithClass struct {
	Assignment
	Class Class
}
