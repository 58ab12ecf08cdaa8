// Package grading scores submitted answers against an exercise set.
//
// Grade has no side effects and returns the same result for the same input, so
// it runs inline while a submission request is being handled.
package grading

import "tutorhub_backend/internal/model"

type ItemResult struct {
	ExerciseID string `json:"exerciseId"`
	Answered   bool   `json:"answered"`
	Graded     bool   `json:"graded"`
	Correct    bool   `json:"correct"`
	Awarded    int    `json:"awarded"`
	Points     int    `json:"points"`
}

type Result struct {
	Score    int          `json:"score"`
	MaxScore int          `json:"maxScore"`
	Items    []ItemResult `json:"items"`
}

// Grade awards each exercise its full points when the answer matches its key.
// Every exercise counts toward MaxScore whether or not it was answered or is gradable.
func Grade(exercises []model.Exercise, answers map[string]string) Result {
	res := Result{Items: make([]ItemResult, 0, len(exercises))}

	for _, ex := range exercises {
		res.MaxScore += ex.Points

		key := KeyFor(ex.Type, ex.CorrectAnswer)
		answer, answered := answers[ex.ID]
		item := ItemResult{
			ExerciseID: ex.ID,
			Answered:   answered,
			Graded:     key.Graded(),
			Points:     ex.Points,
		}

		if answered && key.Matches(answer) {
			item.Correct = true
			item.Awarded = ex.Points
			res.Score += ex.Points
		}

		res.Items = append(res.Items, item)
	}

	return res
}

// Ratio returns Score/MaxScore, or 0 for an empty exercise set.
func (r Result) Ratio() float64 {
	if r.MaxScore == 0 {
		return 0
	}
	return float64(r.Score) / float64(r.MaxScore)
}
