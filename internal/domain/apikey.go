package domain

import "time"

// APIKey is a legacy secondary credential owned by a user. The bearer-token
// middleware never consults keys; they are generated, listed and revoked only.
type APIKey struct {
	ID        int64
	Data      string
	Requests  int64
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
