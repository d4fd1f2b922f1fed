package monitor

import "time"

type Status struct {
	PostgreSQL   bool      `json:"postgresql"`
	SessionStore bool      `json:"session_store"`
	LastCheck    time.Time `json:"last_check"`
}
