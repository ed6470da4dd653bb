package scoring

import (
	"testing"

	"github.com/lexiscreen/screening-backend/internal/progress"
)

func outcomes(auditory, visual, language int) []CategoryOutcome {
	return []CategoryOutcome{
		{Category: progress.CategoryAuditory, Correct: auditory, Total: 8},
		{Category: progress.CategoryVisual, Correct: visual, Total: 8},
		{Category: progress.CategoryLanguage, Correct: language, Total: 6},
	}
}

func TestNewPolicy(t *testing.T) {
	for _, name := range []PolicyName{PolicyCorrectCount, PolicyAveragedCategory} {
		p, err := NewPolicy(name)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", name, err)
		}
		if p.Name() != name {
			t.Fatalf("name: want=%s got=%s", name, p.Name())
		}
	}
	if _, err := NewPolicy("median"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestCorrectCountBrackets(t *testing.T) {
	p, err := NewPolicy(PolicyCorrectCount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		correct [3]int
		score   float64
		class   Classification
	}{
		{[3]int{8, 8, 6}, 22, ClassNonRisk},
		{[3]int{3, 2, 2}, 7, ClassNonRisk},
		{[3]int{2, 2, 2}, 6, ClassUncertain},
		{[3]int{2, 1, 1}, 4, ClassUncertain},
		{[3]int{1, 1, 1}, 3, ClassRisk},
		{[3]int{0, 0, 0}, 0, ClassRisk},
	}
	for _, tc := range cases {
		score, class := p.Final(outcomes(tc.correct[0], tc.correct[1], tc.correct[2]))
		if score != tc.score {
			t.Fatalf("correct=%v score: want=%v got=%v", tc.correct, tc.score, score)
		}
		if class != tc.class {
			t.Fatalf("score=%v class: want=%s got=%s", score, tc.class, class)
		}
	}
}

func TestAveragedCategoryBrackets(t *testing.T) {
	p, err := NewPolicy(PolicyAveragedCategory)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// All categories exactly at a bracket edge; the lower bound is inclusive.
	edge := []CategoryOutcome{
		{Category: progress.CategoryAuditory, Correct: 3, Total: 4},
		{Category: progress.CategoryVisual, Correct: 3, Total: 4},
		{Category: progress.CategoryLanguage, Correct: 3, Total: 4},
	}
	if score, class := p.Final(edge); score != 75 || class != ClassNonDyslexic {
		t.Fatalf("edge 75: got score=%v class=%s", score, class)
	}
	half := []CategoryOutcome{
		{Category: progress.CategoryAuditory, Correct: 2, Total: 4},
		{Category: progress.CategoryVisual, Correct: 2, Total: 4},
		{Category: progress.CategoryLanguage, Correct: 2, Total: 4},
	}
	if score, class := p.Final(half); score != 50 || class != ClassMaybeDyslexic {
		t.Fatalf("edge 50: got score=%v class=%s", score, class)
	}
	if score, class := p.Final(outcomes(0, 0, 0)); score != 0 || class != ClassDyslexic {
		t.Fatalf("zero: got score=%v class=%s", score, class)
	}
	if score, class := p.Final(outcomes(8, 8, 6)); score != 100 || class != ClassNonDyslexic {
		t.Fatalf("perfect: got score=%v class=%s", score, class)
	}
}

func TestAveragedCategoryScoreGuardsZeroTotal(t *testing.T) {
	p := averagedCategoryPolicy{}
	if got := p.CategoryScore(CategoryOutcome{Correct: 0, Total: 0}); got != 0 {
		t.Fatalf("zero total: want=0 got=%v", got)
	}
}

func TestCorrectCountCategoryScoreIsRawCount(t *testing.T) {
	p := correctCountPolicy{}
	if got := p.CategoryScore(CategoryOutcome{Correct: 5, Total: 8}); got != 5 {
		t.Fatalf("want=5 got=%v", got)
	}
}
