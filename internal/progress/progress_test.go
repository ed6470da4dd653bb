package progress

import (
	"errors"
	"testing"

	"github.com/lexiscreen/screening-backend/internal/apierr"
)

func TestSequencesHaveExpectedLengths(t *testing.T) {
	cases := map[Category]int{
		CategoryAuditory: 8,
		CategoryVisual:   8,
		CategoryLanguage: 6,
	}
	for cat, want := range cases {
		if got := len(Sequence(cat)); got != want {
			t.Fatalf("%s sequence length: want=%d got=%d", cat, want, got)
		}
	}
}

func TestInOrderWalkEndsAtFeedbackThenCompleted(t *testing.T) {
	for _, cat := range Categories() {
		m := NewMachine(cat)
		for _, sub := range Sequence(cat) {
			if m.Cursor != sub {
				t.Fatalf("%s cursor: want=%s got=%s", cat, sub, m.Cursor)
			}
			var err error
			m, err = m.Submit(sub, true)
			if err != nil {
				t.Fatalf("%s submit %s: unexpected error %v", cat, sub, err)
			}
		}
		if m.Cursor != StageFeedback {
			t.Fatalf("%s after last sub-question: want=%s got=%s", cat, StageFeedback, m.Cursor)
		}
		if m.Completed() {
			t.Fatalf("%s should not be completed before rating", cat)
		}
		m, err := m.SubmitRating(4)
		if err != nil {
			t.Fatalf("%s rating: unexpected error %v", cat, err)
		}
		if !m.Completed() {
			t.Fatalf("%s should be completed after rating, cursor=%s", cat, m.Cursor)
		}
	}
}

func TestRatingsNotRequiredSkipsFeedback(t *testing.T) {
	m := NewMachine(CategoryLanguage)
	seq := Sequence(CategoryLanguage)
	var err error
	for _, sub := range seq {
		m, err = m.Submit(sub, false)
		if err != nil {
			t.Fatalf("submit %s: unexpected error %v", sub, err)
		}
	}
	if m.Cursor != StageCompleted {
		t.Fatalf("cursor after last sub-question: want=%s got=%s", StageCompleted, m.Cursor)
	}
}

func TestOutOfOrderSubmissionLeavesCursorUnchanged(t *testing.T) {
	m := NewMachine(CategoryAuditory)
	before := m.Cursor
	got, err := m.Submit(StagePhonemeBlend, true)
	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apierr.Error, got=%T", err)
	}
	if apiErr.Code != apierr.CodeOutOfOrder {
		t.Fatalf("code: want=%s got=%s", apierr.CodeOutOfOrder, apiErr.Code)
	}
	if got.Cursor != before {
		t.Fatalf("cursor changed on rejected submission: want=%s got=%s", before, got.Cursor)
	}
}

func TestSubmitAtFeedbackStageIsOutOfOrder(t *testing.T) {
	m := Machine{Category: CategoryVisual, Cursor: StageFeedback}
	_, err := m.Submit(StageSymbol4Cards, true)
	if !apierr.Is(err, apierr.CodeOutOfOrder) {
		t.Fatalf("expected %s, got %v", apierr.CodeOutOfOrder, err)
	}
}

func TestSubmitAfterCompletionFails(t *testing.T) {
	m := Machine{Category: CategoryVisual, Cursor: StageCompleted}
	_, err := m.Submit(StageSymbol4Cards, true)
	if !apierr.Is(err, apierr.CodeAlreadyCompleted) {
		t.Fatalf("expected %s, got %v", apierr.CodeAlreadyCompleted, err)
	}
}

func TestRatingOutsideFeedbackStage(t *testing.T) {
	m := NewMachine(CategoryAuditory)
	if _, err := m.SubmitRating(3); !apierr.Is(err, apierr.CodeNotAtFeedbackStage) {
		t.Fatalf("expected %s, got %v", apierr.CodeNotAtFeedbackStage, err)
	}
	done := Machine{Category: CategoryAuditory, Cursor: StageCompleted}
	if _, err := done.SubmitRating(3); !apierr.Is(err, apierr.CodeAlreadyRated) {
		t.Fatalf("expected %s, got %v", apierr.CodeAlreadyRated, err)
	}
}

func TestRatingBounds(t *testing.T) {
	m := Machine{Category: CategoryAuditory, Cursor: StageFeedback}
	for _, v := range []int{0, 6, -1} {
		if _, err := m.SubmitRating(v); !apierr.Is(err, apierr.CodeBadRequest) {
			t.Fatalf("rating %d: expected %s, got %v", v, apierr.CodeBadRequest, err)
		}
	}
	for v := 1; v <= 5; v++ {
		if _, err := m.SubmitRating(v); err != nil {
			t.Fatalf("rating %d: unexpected error %v", v, err)
		}
	}
}

func TestSubmitForeignSubQuestion(t *testing.T) {
	m := NewMachine(CategoryLanguage)
	if _, err := m.Submit(StageFreq4Cards, true); !apierr.Is(err, apierr.CodeOutOfOrder) {
		t.Fatalf("expected %s, got %v", apierr.CodeOutOfOrder, err)
	}
}

func TestParseCategory(t *testing.T) {
	if _, err := ParseCategory("AUDITORY"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseCategory("auditory"); err == nil {
		t.Fatal("expected error for lowercase category")
	}
	if _, err := ParseCategory("SMELL"); err == nil {
		t.Fatal("expected error for unknown category")
	}
}
