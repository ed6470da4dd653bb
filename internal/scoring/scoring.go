package scoring

import (
	"fmt"
	"net/http"

	"github.com/lexiscreen/screening-backend/internal/apierr"
	"github.com/lexiscreen/screening-backend/internal/progress"
)

type Classification string

// Correct-count policy buckets.
const (
	ClassNonRisk   Classification = "NON_RISK"
	ClassUncertain Classification = "UNCERTAIN"
	ClassRisk      Classification = "RISK"
)

// Averaged-category policy buckets.
const (
	ClassNonDyslexic   Classification = "NON_DYSLEXIC"
	ClassMaybeDyslexic Classification = "MAYBE_DYSLEXIC"
	ClassDyslexic      Classification = "DYSLEXIC"
)

type PolicyName string

const (
	PolicyCorrectCount     PolicyName = "correct_count"
	PolicyAveragedCategory PolicyName = "averaged_category"
)

// CategoryOutcome summarizes one finished category: how many of its graded
// sub-questions were answered correctly.
type CategoryOutcome struct {
	Category progress.Category
	Correct  int
	Total    int
}

// Policy turns three category outcomes into a final session score and
// classification. Both observed product variants are kept behind this
// interface and selected by configuration.
type Policy interface {
	Name() PolicyName
	CategoryScore(o CategoryOutcome) float64
	Final(outcomes []CategoryOutcome) (float64, Classification)
}

func NewPolicy(name PolicyName) (Policy, error) {
	switch name {
	case PolicyCorrectCount:
		return correctCountPolicy{}, nil
	case PolicyAveragedCategory:
		return averagedCategoryPolicy{}, nil
	}
	return nil, apierr.New(http.StatusInternalServerError, apierr.CodeInternal,
		fmt.Errorf("unknown scoring policy %q", name))
}

// bracket lower bounds are inclusive; each bracket is [lower, next lower)
// with the top bracket open-ended upward.
type bracket struct {
	lower float64
	class Classification
}

func classify(score float64, brackets []bracket) Classification {
	for _, b := range brackets {
		if score >= b.lower {
			return b.class
		}
	}
	return brackets[len(brackets)-1].class
}

// correctCountPolicy scores a session by the raw number of correct answers
// across all categories.
type correctCountPolicy struct{}

func (correctCountPolicy) Name() PolicyName { return PolicyCorrectCount }

func (correctCountPolicy) CategoryScore(o CategoryOutcome) float64 {
	return float64(o.Correct)
}

func (correctCountPolicy) Final(outcomes []CategoryOutcome) (float64, Classification) {
	total := 0
	for _, o := range outcomes {
		total += o.Correct
	}
	score := float64(total)
	return score, classify(score, []bracket{
		{lower: 7, class: ClassNonRisk},
		{lower: 4, class: ClassUncertain},
		{lower: 0, class: ClassRisk},
	})
}

// averagedCategoryPolicy scores each category 0-100 and takes the
// arithmetic mean of the three.
type averagedCategoryPolicy struct{}

func (averagedCategoryPolicy) Name() PolicyName { return PolicyAveragedCategory }

func (averagedCategoryPolicy) CategoryScore(o CategoryOutcome) float64 {
	if o.Total == 0 {
		return 0
	}
	return 100 * float64(o.Correct) / float64(o.Total)
}

func (p averagedCategoryPolicy) Final(outcomes []CategoryOutcome) (float64, Classification) {
	if len(outcomes) == 0 {
		return 0, ClassDyslexic
	}
	sum := 0.0
	for _, o := range outcomes {
		sum += p.CategoryScore(o)
	}
	mean := sum / float64(len(outcomes))
	return mean, classify(mean, []bracket{
		{lower: 75, class: ClassNonDyslexic},
		{lower: 50, class: ClassMaybeDyslexic},
		{lower: 0, class: ClassDyslexic},
	})
}
