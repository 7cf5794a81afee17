package models

import (
	"time"

	"github.com/google/uuid"
)

type Table struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Seats     int       `db:"seats" json:"seats"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
