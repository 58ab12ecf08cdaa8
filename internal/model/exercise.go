package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"gorm.io/datatypes"
)

type ExerciseType string

const (
	ExerciseMultipleChoice ExerciseType = "multiple_choice"
	ExerciseFillBlank      ExerciseType = "fill_blank"
	ExerciseTrueFalse      ExerciseType = "true_false"
	ExerciseMatching       ExerciseType = "matching"
	ExerciseFreeText       ExerciseType = "free_text"
	ExercisePronunciation  ExerciseType = "pronunciation"
)

var ExerciseTypes = []ExerciseType{
	ExerciseMultipleChoice,
	ExerciseFillBlank,
	ExerciseTrueFalse,
	ExerciseMatching,
	ExerciseFreeText,
	ExercisePronunciation,
}

func (t ExerciseType) Valid() bool {
	return slices.Contains(ExerciseTypes, t)
}

// Exercise is one gradable item. CorrectAnswer holds plain text, except for
// matching where it is a JSON object of left term to right term. Options is
// only set for multiple_choice.
// swagger:model Exercise
type Exercise struct {
	UUIDBase
	AssignmentID  string         `gorm:"index;type:varchar(36);not null" json:"assignmentId"`
	Type          ExerciseType   `gorm:"size:30;not null" json:"type"`
	Question      string         `gorm:"type:text;not null" json:"question"`
	Options       datatypes.JSON `json:"options,omitempty"`
	CorrectAnswer string         `gorm:"type:text" json:"correctAnswer"`
	Points        int            `gorm:"not null" json:"points"`
	OrderIndex    int            `gorm:"not null" json:"orderIndex"`
}

func (Exercise) TableName() string {
	return "assignment_exercises"
}

// OptionList decodes Options; a missing or malformed column yields nil.
func (e *Exercise) OptionList() []string {
	if len(e.Options) == 0 {
		return nil
	}
	var opts []string
	if err := json.Unmarshal(e.Options, &opts); err != nil {
		return nil
	}
	return opts
}

// SetOptions encodes opts into the Options column, clearing it for an empty list.
func (e *Exercise) SetOptions(opts []string) {
	if len(opts) == 0 {
		e.Options = nil
		return
	}
	raw, _ := json.Marshal(opts)
	e.Options = datatypes.JSON(raw)
}

// ParsePairs decodes a matching answer. It fails on anything but a flat JSON object of strings.
func ParsePairs(s string) (map[string]string, error) {
	var pairs map[string]string
	if err := json.Unmarshal([]byte(s), &pairs); err != nil {
		return nil, err
	}
	if pairs == nil {
		return nil, errors.New("pairs must be a JSON object")
	}
	return pairs, nil
}

// ValidateExercise checks the shape invariants an exercise must satisfy before it is stored.
func ValidateExercise(e *Exercise) error {
	if !e.Type.Valid() {
		return fmt.Errorf("unknown exercise type %q", e.Type)
	}
	if strings.TrimSpace(e.Question) == "" {
		return errors.New("question is required")
	}
	if e.Points < 1 {
		return errors.New("points must be at least 1")
	}

	opts := e.OptionList()
	if e.Type != ExerciseMultipleChoice && len(e.Options) > 0 {
		return fmt.Errorf("options are only allowed for %s", ExerciseMultipleChoice)
	}

	switch e.Type {
	case ExerciseMultipleChoice:
		if len(opts) < 2 {
			return errors.New("multiple_choice needs at least two options")
		}
		if !slices.Contains(opts, e.CorrectAnswer) {
			return errors.New("correct answer must be one of the options")
		}
	case ExerciseTrueFalse:
		if e.CorrectAnswer != "true" && e.CorrectAnswer != "false" {
			return errors.New(`true_false answer must be "true" or "false"`)
		}
	case ExerciseMatching:
		pairs, err := ParsePairs(e.CorrectAnswer)
		if err != nil {
			return fmt.Errorf("matching answer must be a JSON object: %w", err)
		}
		if len(pairs) == 0 {
			return errors.New("matching needs at least one pair")
		}
	case ExerciseFillBlank, ExercisePronunciation:
		if strings.TrimSpace(e.CorrectAnswer) == "" {
			return errors.New("correct answer is required")
		}
	case ExerciseFreeText:
		// reference answer is optional
	}
	return nil
}
