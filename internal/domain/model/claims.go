package model

import "time"

type Role string

// 認証サービスが発行するrole
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// AuthClaimsは検証済みトークンの中身。保存はしない（リクエストごとに復元）。
type AuthClaims struct {
	Subject   string
	Role      Role
	ExpiresAt time.Time
}
