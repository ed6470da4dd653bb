package types

import (
	"time"

	"github.com/google/uuid"
)

type ProfileType string

const (
	ProfileParent ProfileType = "PARENT"
	ProfileChild  ProfileType = "CHILD"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Profile is a persona under an account; it is the identity that actually
// takes tests. Demographic fields are optional and filled in before the
// first session.
type Profile struct {
	ID                uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID         uuid.UUID   `gorm:"type:uuid;not null;index" json:"account_id"`
	Account           *Account    `gorm:"constraint:OnDelete:CASCADE;foreignKey:AccountID;references:ID" json:"account,omitempty"`
	ProfileType       ProfileType `gorm:"not null;column:profile_type" json:"profile_type"`
	Name              *string     `gorm:"column:name" json:"name,omitempty"`
	YearOfBirth       *int        `gorm:"column:year_of_birth" json:"year_of_birth,omitempty"`
	Gender            *Gender     `gorm:"column:gender" json:"gender,omitempty"`
	MotherTongue      *string     `gorm:"column:mother_tongue" json:"mother_tongue,omitempty"`
	OfficialDiagnosis *bool       `gorm:"column:official_diagnosis" json:"official_diagnosis,omitempty"`
	CreatedAt         time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time   `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}
