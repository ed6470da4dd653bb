package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/lexiscreen/screening-backend/internal/progress"
)

// CategoryTest tracks one category's ordered progression within a session.
// Created lazily on category start, at most once per category per session.
type CategoryTest struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TestSessionID uuid.UUID         `gorm:"type:uuid;not null;index:idx_session_category,unique" json:"test_session_id"`
	TestSession   *TestSession      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TestSessionID;references:ID" json:"test_session,omitempty"`
	Category      progress.Category `gorm:"not null;index:idx_session_category,unique;column:category" json:"category"`
	Progress      progress.Stage    `gorm:"not null;column:progress" json:"progress"`
	Rating        *int              `gorm:"column:rating" json:"rating,omitempty"`
	Score         *float64          `gorm:"column:score" json:"score,omitempty"`
	CreatedAt     time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"not null" json:"updated_at"`
}

func (CategoryTest) TableName() string {
	return "category_test"
}
