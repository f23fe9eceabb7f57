package models

import "time"

// Faculty represents an academic faculty or school within the institution.
type Faculty struct {
	Code            string    `db:"code" json:"code"`
	Name            string    `db:"name" json:"name"`
	Address         string    `db:"address" json:"address"`
	Phone           string    `db:"phone" json:"phone"`
	Email           string    `db:"email" json:"email"`
	Website         string    `db:"website" json:"website"`
	Dean            string    `db:"dean" json:"dean"`
	EstablishedDate time.Time `db:"established_date" json:"established_date"`
	Description     *string   `db:"description" json:"description,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
