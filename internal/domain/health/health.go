// Package health turns the per-condition results into a single 0-100 score
// plus an ordered list of primary concerns.
package health

import (
	"sort"

	"github.com/skinsight/engine/internal/domain/model"
)

// baseline is the score of a face with no detected conditions.
const baseline = 100.0

// basePenalty is the full deduction each condition costs at severe. The
// ordering doubles as clinical priority: acne outranks cosmetic texture.
var basePenalty = map[string]float64{
	model.ConditionAcne:         45,
	model.ConditionWrinkles:     30,
	model.ConditionPigmentation: 28,
	model.ConditionDarkSpots:    24,
	model.ConditionRedness:      22,
	model.ConditionTexture:      18,
	model.ConditionPores:        15,
}

// severityFactor scales the base penalty down for lighter findings.
var severityFactor = map[model.Severity]float64{
	model.SeverityMild:     0.3,
	model.SeverityModerate: 0.6,
	model.SeveritySevere:   1.0,
}

// maxPrimaryConcerns caps how many conditions are surfaced as headline
// findings.
const maxPrimaryConcerns = 3

// Aggregator computes the overall skin health score.
type Aggregator struct {
	penalties map[string]float64
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithPenalty overrides the base penalty for one condition.
func WithPenalty(condition string, penalty float64) Option {
	return func(a *Aggregator) {
		a.penalties[condition] = penalty
	}
}

// New returns an Aggregator with the default penalty table.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{penalties: make(map[string]float64, len(basePenalty))}
	for name, p := range basePenalty {
		a.penalties[name] = p
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Score computes the health score from the full condition map. Undetected
// conditions cost nothing; the result is clamped to [0, 100] and is
// monotone: raising any single severity never raises the score.
func (a *Aggregator) Score(conditions map[string]model.ConditionResult) float64 {
	score := baseline
	for name, res := range conditions {
		score -= a.penalty(name, res)
	}
	if score < 0 {
		return 0
	}
	if score > baseline {
		return baseline
	}
	return score
}

// PrimaryConcerns returns the detected conditions ordered by their effective
// penalty, heaviest first, capped at three. Ties break on name so the output
// is stable across runs.
func (a *Aggregator) PrimaryConcerns(conditions map[string]model.ConditionResult) []string {
	type weighted struct {
		name    string
		penalty float64
	}
	found := make([]weighted, 0, len(conditions))
	for name, res := range conditions {
		if !res.Detected {
			continue
		}
		found = append(found, weighted{name: name, penalty: a.penalty(name, res)})
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].penalty != found[j].penalty {
			return found[i].penalty > found[j].penalty
		}
		return found[i].name < found[j].name
	})
	if len(found) > maxPrimaryConcerns {
		found = found[:maxPrimaryConcerns]
	}
	concerns := make([]string, len(found))
	for i, f := range found {
		concerns[i] = f.name
	}
	return concerns
}

func (a *Aggregator) penalty(name string, res model.ConditionResult) float64 {
	if !res.Detected {
		return 0
	}
	return a.penalties[name] * severityFactor[res.Severity]
}

// Band is the coarse score bucket the recommendation engine keys off.
type Band string

// Score bands from most to least compromised skin.
const (
	BandCritical Band = "critical" // below 30, treatment-heavy routine
	BandPoor     Band = "poor"     // 30 to 50
	BandFair     Band = "fair"     // 50 to 70
	BandGood     Band = "good"     // above 70, maintenance routine
)

// BandOf buckets a score.
func BandOf(score float64) Band {
	switch {
	case score < 30:
		return BandCritical
	case score < 50:
		return BandPoor
	case score < 70:
		return BandFair
	default:
		return BandGood
	}
}
