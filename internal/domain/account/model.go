package account

import "time"

// Account is the single persisted credential record. Only the salt and the
// derived key are stored, never the password.
type Account struct {
	Email     string    `json:"email"`
	Salt      string    `json:"salt"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the identity signal the planner core depends on.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}
