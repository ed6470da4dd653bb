package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MinigameNumber string

const (
	MinigameOne   MinigameNumber = "one"
	MinigameTwo   MinigameNumber = "two"
	MinigameThree MinigameNumber = "three"
	MinigameFour  MinigameNumber = "four"
	MinigameFive  MinigameNumber = "five"
)

func ValidMinigameNumber(n MinigameNumber) bool {
	switch n {
	case MinigameOne, MinigameTwo, MinigameThree, MinigameFour, MinigameFive:
		return true
	}
	return false
}

// Minigame is one logged attempt at a practice minigame. Score arrives
// precomputed from the client (over 5); the server only persists it.
type Minigame struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"profile_id"`
	Profile        *Profile       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProfileID;references:ID" json:"profile,omitempty"`
	MinigameNumber MinigameNumber `gorm:"not null;column:minigame_number" json:"minigame_number"`
	AttemptedAt    time.Time      `gorm:"not null;column:attempted_at" json:"attempted_at"`
	Score          float64        `gorm:"not null;column:score" json:"score"`
	Details        datatypes.JSON `gorm:"type:jsonb;column:details" json:"details"`
}

func (Minigame) TableName() string {
	return "minigame"
}
