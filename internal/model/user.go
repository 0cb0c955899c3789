package model

import "time"

// User はサービス利用ユーザーを表す。所有関係の根となる。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	StartYear    *int
	School       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
