package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/lexiscreen/screening-backend/internal/progress"
)

// FeatureRecord is the append-only payload captured for one sub-question.
// The unique index on (test_session_id, category, sub_question) is the
// at-most-once guarantee for concurrent duplicate submissions.
type FeatureRecord struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TestSessionID uuid.UUID         `gorm:"type:uuid;not null;index:idx_session_sub_question,unique" json:"test_session_id"`
	TestSession   *TestSession      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TestSessionID;references:ID" json:"test_session,omitempty"`
	Category      progress.Category `gorm:"not null;index:idx_session_sub_question,unique;column:category" json:"category"`
	SubQuestion   progress.Stage    `gorm:"not null;index:idx_session_sub_question,unique;column:sub_question" json:"sub_question"`
	StartTime     time.Time         `gorm:"not null;column:start_time" json:"start_time"`
	EndTime       time.Time         `gorm:"not null;column:end_time" json:"end_time"`
	Correct       *bool             `gorm:"column:correct" json:"correct,omitempty"`
	Payload       datatypes.JSON    `gorm:"type:jsonb;column:payload" json:"payload"`
	CreatedAt     time.Time         `gorm:"not null" json:"created_at"`
}

func (FeatureRecord) TableName() string {
	return "feature_record"
}
