package progress

import (
	"fmt"
	"net/http"

	"github.com/lexiscreen/screening-backend/internal/apierr"
)

type Category string

const (
	CategoryAuditory Category = "AUDITORY"
	CategoryVisual   Category = "VISUAL"
	CategoryLanguage Category = "LANGUAGE"
)

func Categories() []Category {
	return []Category{CategoryAuditory, CategoryVisual, CategoryLanguage}
}

func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryAuditory, CategoryVisual, CategoryLanguage:
		return Category(s), nil
	}
	return "", apierr.Newf(http.StatusBadRequest, apierr.CodeBadRequest, "invalid category %q", s)
}

// Stage is the progress cursor value: the next expected sub-question
// identifier, or one of the trailing FEEDBACK / COMPLETED stages.
type Stage string

const (
	StageFeedback  Stage = "FEEDBACK"
	StageCompleted Stage = "COMPLETED"
)

// Auditory sub-questions, in submission order.
const (
	StageFreq4Cards    Stage = "FREQ_4_CARDS"
	StageFreqPairs     Stage = "FREQ_PAIRS"
	StagePhonemeMatch  Stage = "PHONEME_MATCH"
	StagePhonemeBlend  Stage = "PHONEME_BLEND"
	StageSyllableCount Stage = "SYLLABLE_COUNT"
	StageRhymeMatch    Stage = "RHYME_MATCH"
	StageWordRepeat    Stage = "WORD_REPEAT"
	StageToneSequence  Stage = "TONE_SEQUENCE"
)

// Visual sub-questions, in submission order.
const (
	StageSymbol4Cards   Stage = "SYMBOL_4_CARDS"
	StageSymbolPairs    Stage = "SYMBOL_PAIRS"
	StageLetterMirror   Stage = "LETTER_MIRROR"
	StageLetterSequence Stage = "LETTER_SEQUENCE"
	StageShapeMatch     Stage = "SHAPE_MATCH"
	StagePatternRecall  Stage = "PATTERN_RECALL"
	StageCrowdingGrid   Stage = "CROWDING_GRID"
	StageVisualSearch   Stage = "VISUAL_SEARCH"
)

// Language sub-questions, in submission order.
const (
	StageVowels           Stage = "VOWELS"
	StageConsonants       Stage = "CONSONANTS"
	StageWordPictureMatch Stage = "WORD_PICTURE_MATCH"
	StageSentenceOrder    Stage = "SENTENCE_ORDER"
	StageNonwordReading   Stage = "NONWORD_READING"
	StageComprehension    Stage = "COMPREHENSION"
)

var sequences = map[Category][]Stage{
	CategoryAuditory: {
		StageFreq4Cards,
		StageFreqPairs,
		StagePhonemeMatch,
		StagePhonemeBlend,
		StageSyllableCount,
		StageRhymeMatch,
		StageWordRepeat,
		StageToneSequence,
	},
	CategoryVisual: {
		StageSymbol4Cards,
		StageSymbolPairs,
		StageLetterMirror,
		StageLetterSequence,
		StageShapeMatch,
		StagePatternRecall,
		StageCrowdingGrid,
		StageVisualSearch,
	},
	CategoryLanguage: {
		StageVowels,
		StageConsonants,
		StageWordPictureMatch,
		StageSentenceOrder,
		StageNonwordReading,
		StageComprehension,
	},
}

// Sequence returns the ordered sub-question stages of a category,
// excluding the trailing FEEDBACK and COMPLETED stages.
func Sequence(cat Category) []Stage {
	seq := sequences[cat]
	out := make([]Stage, len(seq))
	copy(out, seq)
	return out
}

func Initial(cat Category) Stage {
	return sequences[cat][0]
}

func IsSubQuestion(cat Category, s Stage) bool {
	for _, stage := range sequences[cat] {
		if stage == s {
			return true
		}
	}
	return false
}

// Machine is the per-category ordered state machine. The cursor only ever
// advances through the category's fixed sequence, then FEEDBACK, then
// COMPLETED. A Machine is a value; transitions return the advanced copy.
type Machine struct {
	Category Category
	Cursor   Stage
}

func NewMachine(cat Category) Machine {
	return Machine{Category: cat, Cursor: Initial(cat)}
}

// Submit validates sub against the cursor and advances. When requireRating
// is false the last sub-question advances straight to COMPLETED, skipping
// the feedback stage.
func (m Machine) Submit(sub Stage, requireRating bool) (Machine, error) {
	if m.Cursor == StageCompleted {
		return m, apierr.Conflict(apierr.CodeAlreadyCompleted,
			fmt.Errorf("%s test is already completed", m.Category))
	}
	if m.Cursor == StageFeedback {
		return m, apierr.Conflict(apierr.CodeOutOfOrder,
			fmt.Errorf("%s test expects a rating, not a submission", m.Category))
	}
	if sub != m.Cursor {
		return m, apierr.Conflict(apierr.CodeOutOfOrder,
			fmt.Errorf("expected sub-question %s, got %s", m.Cursor, sub))
	}
	seq := sequences[m.Category]
	for i, stage := range seq {
		if stage != sub {
			continue
		}
		if i+1 < len(seq) {
			m.Cursor = seq[i+1]
		} else if requireRating {
			m.Cursor = StageFeedback
		} else {
			m.Cursor = StageCompleted
		}
		return m, nil
	}
	return m, apierr.Newf(http.StatusBadRequest, apierr.CodeBadRequest,
		"sub-question %s does not belong to category %s", sub, m.Category)
}

// SubmitRating advances FEEDBACK to COMPLETED. Rating bounds are validated
// here; whether a rating was already recorded is the caller's check since
// the machine does not hold the rating itself.
func (m Machine) SubmitRating(value int) (Machine, error) {
	if value < 1 || value > 5 {
		return m, apierr.Newf(http.StatusBadRequest, apierr.CodeBadRequest,
			"rating must be between 1 and 5, got %d", value)
	}
	if m.Cursor == StageCompleted {
		return m, apierr.Conflict(apierr.CodeAlreadyRated,
			fmt.Errorf("%s test is already completed", m.Category))
	}
	if m.Cursor != StageFeedback {
		return m, apierr.Conflict(apierr.CodeNotAtFeedbackStage,
			fmt.Errorf("expected sub-question %s before rating", m.Cursor))
	}
	m.Cursor = StageCompleted
	return m, nil
}

func (m Machine) Completed() bool {
	return m.Cursor == StageCompleted
}
