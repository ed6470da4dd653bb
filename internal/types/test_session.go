package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/lexiscreen/screening-backend/internal/scoring"
)

// TestSession owns at most one CategoryTest per category. It is frozen once
// all three categories complete: end_time, score and classification are
// written exactly once and never mutated afterwards.
type TestSession struct {
	ID             uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID      uuid.UUID               `gorm:"type:uuid;not null;index" json:"profile_id"`
	Profile        *Profile                `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProfileID;references:ID" json:"profile,omitempty"`
	StartTime      time.Time               `gorm:"not null;column:start_time" json:"start_time"`
	EndTime        *time.Time              `gorm:"column:end_time" json:"end_time,omitempty"`
	Completed      bool                    `gorm:"not null;default:false" json:"completed"`
	Score          *float64                `gorm:"column:score" json:"score,omitempty"`
	Classification *scoring.Classification `gorm:"column:classification" json:"classification,omitempty"`
	CategoryTests  []*CategoryTest         `gorm:"constraint:OnDelete:CASCADE;foreignKey:TestSessionID;references:ID" json:"category_tests,omitempty"`
	CreatedAt      time.Time               `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time               `gorm:"not null" json:"updated_at"`
}

func (TestSession) TableName() string {
	return "test_session"
}
