package subject

import (
	"time"

	"github.com/uptrace/bun"
)

type Subject struct {
	bun.BaseModel `bun:"table:subjects,alias:sub"`

	ID          int       `bun:"id,pk,autoincrement" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Code        string    `bun:"code,unique,notnull" json:"code"`
	Description *string   `bun:"description" json:"description"`
	Credits     int       `bun:"credits,notnull" json:"credits"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type CreateSubjectInput struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Code        string  `json:"code" validate:"required,max=20"`
	Description *string `json:"description"`
	Credits     int     `json:"credits" validate:"required,gt=0"`
}
