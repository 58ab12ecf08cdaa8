package draft

import (
	"encoding/json"
)

// Section is one lesson section as far as draft generation is concerned.
// Only vocabulary and grammar sections produce exercises.
type Section interface {
	sectionType() string
}

type VocabularyWord struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
}

type VocabularySection struct {
	Words []VocabularyWord `json:"words"`
}

type GrammarExample struct {
	Sentence string `json:"sentence"`
}

type GrammarSection struct {
	Examples []GrammarExample `json:"examples"`
}

// OtherSection stands in for every section type the generator ignores,
// including sections whose content could not be decoded.
type OtherSection struct {
	Type string
}

func (VocabularySection) sectionType() string { return "vocabulary" }
func (GrammarSection) sectionType() string    { return "grammar" }
func (s OtherSection) sectionType() string    { return s.Type }

// RawSection is the wire shape of a lesson section.
type RawSection struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// Decode turns raw sections into typed ones. It never fails.
func Decode(raw []RawSection) []Section {
	out := make([]Section, 0, len(raw))
	for _, r := range raw {
		switch r.Type {
		case "vocabulary":
			var v VocabularySection
			if err := json.Unmarshal(r.Content, &v); err != nil {
				out = append(out, OtherSection{Type: r.Type})
				continue
			}
			out = append(out, v)
		case "grammar":
			var g GrammarSection
			if err := json.Unmarshal(r.Content, &g); err != nil {
				out = append(out, OtherSection{Type: r.Type})
				continue
			}
			out = append(out, g)
		default:
			out = append(out, OtherSection{Type: r.Type})
		}
	}
	return out
}
