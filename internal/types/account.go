package types

import (
	"time"

	"github.com/google/uuid"
)

type AccountRole string

const (
	RoleUser  AccountRole = "USER"
	RoleAdmin AccountRole = "ADMIN"
)

type Account struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string      `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string      `gorm:"not null;column:password" json:"-"`
	Role      AccountRole `gorm:"not null;default:'USER';column:role" json:"role"`
	Profiles  []*Profile  `gorm:"constraint:OnDelete:CASCADE;foreignKey:AccountID;references:ID" json:"profiles,omitempty"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time   `gorm:"not null" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}
