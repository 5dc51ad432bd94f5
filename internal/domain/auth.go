package domain

import "time"

// SubjectType identifies who a token was issued to.
type SubjectType string

const (
	SubjectTypeUser SubjectType = "USER"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	ExpiresAt time.Time
	IssuedAt  time.Time
}
