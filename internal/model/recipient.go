// internal/model/recipient.go
package model

import "time"

type Recipient struct {
	ID           int        `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         *string    `db:"name" json:"name,omitempty"`
	GroupID      *int       `db:"group_id" json:"group_id,omitempty"`
	OptOut       bool       `db:"opt_out" json:"opt_out"`
	OptOutReason *string    `db:"opt_out_reason" json:"opt_out_reason,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
