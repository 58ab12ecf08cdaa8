package grading

import (
	"maps"
	"strings"

	"tutorhub_backend/internal/model"
)

// Key is the answer key of one exercise. Each exercise type maps to exactly one
// variant in KeyFor.
type Key interface {
	Matches(answer string) bool
	Graded() bool
}

// exactKey compares byte for byte.
type exactKey struct{ want string }

func (k exactKey) Matches(answer string) bool { return answer == k.want }
func (exactKey) Graded() bool                 { return true }

// foldedKey ignores surrounding whitespace and case.
type foldedKey struct{ want string }

func (k foldedKey) Matches(answer string) bool { return fold(answer) == k.want }
func (foldedKey) Graded() bool                 { return true }

// pairsKey compares matching answers as sets of key/value pairs.
type pairsKey struct {
	want  map[string]string
	valid bool
}

func (k pairsKey) Matches(answer string) bool {
	if !k.valid {
		return false
	}
	got, err := model.ParsePairs(answer)
	if err != nil {
		return false
	}
	return maps.Equal(got, k.want)
}

func (pairsKey) Graded() bool { return true }

// ungradedKey never awards points.
type ungradedKey struct{}

func (ungradedKey) Matches(string) bool { return false }
func (ungradedKey) Graded() bool        { return false }

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// KeyFor builds the answer key for an exercise type and its stored correct answer.
func KeyFor(t model.ExerciseType, correct string) Key {
	switch t {
	case model.ExerciseFreeText:
		return ungradedKey{}
	case model.ExerciseFillBlank:
		return foldedKey{want: fold(correct)}
	case model.ExerciseMatching:
		pairs, err := model.ParsePairs(correct)
		return pairsKey{want: pairs, valid: err == nil}
	case model.ExerciseMultipleChoice, model.ExerciseTrueFalse, model.ExercisePronunciation:
		return exactKey{want: correct}
	default:
		return ungradedKey{}
	}
}
