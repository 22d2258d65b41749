package models

import (
	"time"
)

// Token issued by TokenManager on registration or login
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}
