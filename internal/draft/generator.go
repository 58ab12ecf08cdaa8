// Package draft derives candidate exercises from lesson content.
//
// The output is a starting point for the tutor to edit, so the heuristics stay
// simple and anything they cannot handle is skipped.
package draft

import (
	"encoding/json"
	"strings"

	"tutorhub_backend/internal/model"
)

const (
	maxMatchingWords   = 5
	maxGrammarExamples = 3
	minSentenceTokens  = 3

	MatchingQuestion = "Match the words with their translations"
	Blank            = "___"
)

// FromLesson returns new exercises for the given sections, in section order.
// OrderIndex is left at zero; callers number exercises when appending them.
func FromLesson(sections []Section) []model.Exercise {
	var out []model.Exercise
	for _, s := range sections {
		switch sec := s.(type) {
		case VocabularySection:
			if ex, ok := matchingFrom(sec); ok {
				out = append(out, ex)
			}
		case GrammarSection:
			out = append(out, blanksFrom(sec)...)
		case OtherSection:
		}
	}
	return out
}

func matchingFrom(sec VocabularySection) (model.Exercise, bool) {
	words := make([]VocabularyWord, 0, len(sec.Words))
	for _, w := range sec.Words {
		if strings.TrimSpace(w.Word) == "" {
			continue
		}
		words = append(words, w)
	}
	if len(words) < 2 {
		return model.Exercise{}, false
	}
	if len(words) > maxMatchingWords {
		words = words[:maxMatchingWords]
	}

	pairs := make(map[string]string, len(words))
	for _, w := range words {
		pairs[w.Word] = w.Translation
	}
	raw, err := json.Marshal(pairs)
	if err != nil {
		return model.Exercise{}, false
	}

	return model.Exercise{
		Type:          model.ExerciseMatching,
		Question:      MatchingQuestion,
		CorrectAnswer: string(raw),
		Points:        len(pairs),
	}, true
}

func blanksFrom(sec GrammarSection) []model.Exercise {
	examples := sec.Examples
	if len(examples) > maxGrammarExamples {
		examples = examples[:maxGrammarExamples]
	}

	var out []model.Exercise
	for _, ex := range examples {
		tokens := strings.Fields(ex.Sentence)
		if len(tokens) < minSentenceTokens {
			continue
		}
		mid := len(tokens) / 2
		answer := tokens[mid]
		tokens[mid] = Blank

		out = append(out, model.Exercise{
			Type:          model.ExerciseFillBlank,
			Question:      strings.Join(tokens, " "),
			CorrectAnswer: answer,
			Points:        1,
		})
	}
	return out
}
