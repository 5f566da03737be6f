package models

import "time"

// User rappresenta un utente verificato tramite credenziali Basic
type User struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
