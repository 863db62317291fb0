package entity

import "time"

// Player - a registered participant. The connection handle lives in the
// connection registry, not here; re-registration overwrites the handle there.
type Player struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}
