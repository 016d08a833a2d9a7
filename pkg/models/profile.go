package models

import (
	"time"

	"github.com/google/uuid"
)

// Big Five trait names. Question.Attribute holds one of these.
const (
	TraitOpenness          = "openness"
	TraitConscientiousness = "conscientiousness"
	TraitExtraversion      = "extraversion"
	TraitAgreeableness     = "agreeableness"
	TraitNeuroticism       = "neuroticism"
)

// TraitScores holds the five running totals derived from questionnaire answers.
type TraitScores struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// ScoresFromSums builds TraitScores from per-attribute sums. Missing traits are zero.
func ScoresFromSums(sums map[string]float64) TraitScores {
	return TraitScores{
		Openness:          sums[TraitOpenness],
		Conscientiousness: sums[TraitConscientiousness],
		Extraversion:      sums[TraitExtraversion],
		Agreeableness:     sums[TraitAgreeableness],
		Neuroticism:       sums[TraitNeuroticism],
	}
}

// AsMap returns the scores keyed by trait name.
func (s TraitScores) AsMap() map[string]float64 {
	return map[string]float64{
		TraitOpenness:          s.Openness,
		TraitConscientiousness: s.Conscientiousness,
		TraitExtraversion:      s.Extraversion,
		TraitAgreeableness:     s.Agreeableness,
		TraitNeuroticism:       s.Neuroticism,
	}
}

// Profile is the per-user personality profile. Stored in profiles table.
type Profile struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Scores    TraitScores `json:"scores"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
