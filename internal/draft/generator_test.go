package draft

import (
	"encoding/json"
	"testing"

	"tutorhub_backend/internal/model"
)

func TestVocabularyBecomesMatching(t *testing.T) {
	sections := []Section{VocabularySection{Words: []VocabularyWord{
		{Word: "cat", Translation: "gato"},
		{Word: "dog", Translation: "perro"},
		{Word: "bird", Translation: "pájaro"},
		{Word: "fish", Translation: "pez"},
		{Word: "cow", Translation: "vaca"},
		{Word: "horse", Translation: "caballo"},
	}}}

	got := FromLesson(sections)
	if len(got) != 1 {
		t.Fatalf("got %d exercises, want 1", len(got))
	}
	ex := got[0]
	if ex.Type != model.ExerciseMatching || ex.Question != MatchingQuestion {
		t.Fatalf("unexpected exercise %+v", ex)
	}
	pairs, err := model.ParsePairs(ex.CorrectAnswer)
	if err != nil {
		t.Fatalf("answer is not a pairs object: %v", err)
	}
	if len(pairs) != 5 || ex.Points != 5 {
		t.Fatalf("got %d pairs worth %d points, want 5/5", len(pairs), ex.Points)
	}
	if _, ok := pairs["horse"]; ok {
		t.Fatalf("only the first five words should be used")
	}
	if err := model.ValidateExercise(&ex); err != nil {
		t.Fatalf("generated exercise is invalid: %v", err)
	}
}

func TestVocabularyNeedsTwoWords(t *testing.T) {
	sections := []Section{
		VocabularySection{Words: []VocabularyWord{{Word: "cat", Translation: "gato"}}},
		VocabularySection{Words: []VocabularyWord{{Word: "cat", Translation: "gato"}, {Word: " ", Translation: "x"}}},
		VocabularySection{},
	}
	if got := FromLesson(sections); len(got) != 0 {
		t.Fatalf("got %d exercises, want none", len(got))
	}
}

func TestGrammarBlanksMidpoint(t *testing.T) {
	sections := []Section{GrammarSection{Examples: []GrammarExample{
		{Sentence: "She goes to school"},
		{Sentence: "Too short"},
		{Sentence: "I am happy"},
		{Sentence: "They have been here"},
	}}}

	got := FromLesson(sections)
	if len(got) != 2 {
		t.Fatalf("got %d exercises, want 2 (first three examples, one too short)", len(got))
	}
	if got[0].Question != "She goes ___ school" || got[0].CorrectAnswer != "to" {
		t.Fatalf("first blank = %q / %q", got[0].Question, got[0].CorrectAnswer)
	}
	if got[1].Question != "I ___ happy" || got[1].CorrectAnswer != "am" {
		t.Fatalf("second blank = %q / %q", got[1].Question, got[1].CorrectAnswer)
	}
	for _, ex := range got {
		if ex.Type != model.ExerciseFillBlank || ex.Points != 1 {
			t.Fatalf("unexpected exercise %+v", ex)
		}
	}
}

func TestDecodeSkipsMalformed(t *testing.T) {
	raw := []RawSection{
		{Type: "intro", Content: json.RawMessage(`{"html_content":"<p>hi</p>"}`)},
		{Type: "vocabulary", Content: json.RawMessage(`{"words": "nope"}`)},
		{Type: "grammar", Content: json.RawMessage(`{"examples":[{"sentence":"We are learning English"}]}`)},
		{Type: "grammar", Content: nil},
	}
	sections := Decode(raw)
	if len(sections) != 4 {
		t.Fatalf("got %d sections, want 4", len(sections))
	}
	if _, ok := sections[1].(OtherSection); !ok {
		t.Fatalf("malformed vocabulary should decode as OtherSection, got %T", sections[1])
	}

	got := FromLesson(sections)
	if len(got) != 1 || got[0].CorrectAnswer != "learning" {
		t.Fatalf("got %+v", got)
	}
}

func TestGrammarRunsOfSpacesAreOneSeparator(t *testing.T) {
	sections := []Section{GrammarSection{Examples: []GrammarExample{
		{Sentence: "I  like   green apples"},
		// two words once the extra spaces collapse
		{Sentence: "Hello  world"},
		{Sentence: "  We eat rice  "},
	}}}

	got := FromLesson(sections)
	if len(got) != 2 {
		t.Fatalf("got %d exercises, want 2", len(got))
	}
	if got[0].Question != "I like ___ apples" || got[0].CorrectAnswer != "green" {
		t.Fatalf("first blank = %q / %q", got[0].Question, got[0].CorrectAnswer)
	}
	if got[1].Question != "We ___ rice" || got[1].CorrectAnswer != "eat" {
		t.Fatalf("second blank = %q / %q", got[1].Question, got[1].CorrectAnswer)
	}
}

func TestVocabularyBlankWordsAreDropped(t *testing.T) {
	sections := []Section{VocabularySection{Words: []VocabularyWord{
		{Word: "sun", Translation: "sol"},
		{Word: "", Translation: "vacío"},
		{Word: "moon", Translation: "luna"},
	}}}

	got := FromLesson(sections)
	if len(got) != 1 {
		t.Fatalf("got %d exercises, want 1", len(got))
	}
	pairs, err := model.ParsePairs(got[0].CorrectAnswer)
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 || got[0].Points != 2 {
		t.Fatalf("pairs = %v worth %d, want sun and moon for 2 points", pairs, got[0].Points)
	}
	if _, ok := pairs[""]; ok {
		t.Fatal("blank word kept")
	}
}
