// Package recommend ranks catalog products against the analysis outcome.
//
// Ranking is additive: every product starts from its catalog base weight and
// collects bonuses for matching detected conditions, fitting the health
// score band, and suiting the optional age bracket. The result is a ranked,
// category-capped list that is never empty while the catalog has products.
package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skinsight/engine/internal/domain/health"
	"github.com/skinsight/engine/internal/domain/model"
)

const (
	// DefaultTarget is how many recommendations one analysis yields.
	DefaultTarget = 6

	// DefaultCategoryCap bounds products per category in the primary
	// selection pass. Backfill may exceed it when the catalog is narrow.
	DefaultCategoryCap = 2
)

// severityBonus rewards products that target a detected condition, scaled
// by how bad the finding is.
var severityBonus = map[model.Severity]float64{
	model.SeverityMild:     12,
	model.SeverityModerate: 20,
	model.SeveritySevere:   30,
}

// bandAffinity nudges categories by score band: compromised skin leans on
// actives, healthy skin on protection and upkeep.
var bandAffinity = map[health.Band]map[model.Category]float64{
	health.BandCritical: {
		model.CategoryTreatment: 15,
		model.CategorySerum:     10,
		model.CategoryMask:      6,
	},
	health.BandPoor: {
		model.CategoryTreatment: 10,
		model.CategorySerum:     8,
		model.CategoryCleanser:  4,
	},
	health.BandFair: {
		model.CategorySerum:     6,
		model.CategoryExfoliant: 4,
		model.CategoryToner:     3,
	},
	health.BandGood: {
		model.CategorySunscreen:   10,
		model.CategoryMoisturizer: 8,
		model.CategoryCleanser:    6,
	},
}

// ageFocus maps an age bracket to the conditions worth an extra nudge.
var ageFocus = map[string][]string{
	"under_20": {model.ConditionAcne},
	"20s":      {model.ConditionAcne, model.ConditionRedness},
	"30s":      {model.ConditionPigmentation, model.ConditionTexture},
	"40s":      {model.ConditionWrinkles, model.ConditionPigmentation},
	"50s":      {model.ConditionWrinkles, model.ConditionDarkSpots},
	"60_plus":  {model.ConditionWrinkles, model.ConditionDarkSpots},
}

const ageFocusBonus = 6

// activeIngredients maps recognized actives to the conditions they treat.
// A product containing an active for a detected condition earns the
// formulation bonus even when its tags miss that condition.
var activeIngredients = map[string][]string{
	"salicylic acid":   {model.ConditionAcne, model.ConditionPores},
	"benzoyl peroxide": {model.ConditionAcne},
	"niacinamide":      {model.ConditionPores, model.ConditionRedness},
	"azelaic acid":     {model.ConditionRedness, model.ConditionPigmentation},
	"retinol":          {model.ConditionWrinkles, model.ConditionTexture},
	"vitamin c":        {model.ConditionDarkSpots, model.ConditionPigmentation},
	"glycolic acid":    {model.ConditionTexture, model.ConditionDarkSpots},
	"hyaluronic acid":  {model.ConditionWrinkles},
	"centella":         {model.ConditionRedness},
}

const formulationBonus = 8

// Engine ranks products from a fixed catalog.
type Engine struct {
	catalog     []model.Product
	target      int
	categoryCap int
}

// Option configures an Engine.
type Option func(*Engine)

// WithTarget sets how many recommendations to return.
func WithTarget(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.target = n
		}
	}
}

// WithCategoryCap sets the per-category bound for the primary pass.
func WithCategoryCap(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.categoryCap = n
		}
	}
}

// New returns an Engine over the given catalog.
func New(catalog []model.Product, opts ...Option) (*Engine, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("%w: empty product catalog", model.ErrRecommendation)
	}
	e := &Engine{
		catalog:     catalog,
		target:      DefaultTarget,
		categoryCap: DefaultCategoryCap,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

type scored struct {
	product model.Product
	score   float64
	reasons []string
}

// Recommend ranks the catalog against one analysis outcome. The returned
// slice is ordered by score, holds at most the configured target, and is
// never empty.
func (e *Engine) Recommend(conditions map[string]model.ConditionResult, score float64, hints model.Hints) []model.Recommendation {
	band := health.BandOf(score)
	focus := ageFocus[strings.ToLower(strings.TrimSpace(hints.AgeBracket))]

	ranked := make([]scored, 0, len(e.catalog))
	for _, p := range e.catalog {
		ranked = append(ranked, e.scoreProduct(p, conditions, band, focus))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].product.ID < ranked[j].product.ID
	})

	picked := e.pick(ranked)

	out := make([]model.Recommendation, len(picked))
	for i, s := range picked {
		out[i] = model.Recommendation{
			ProductID:   s.product.ID,
			Name:        s.product.Name,
			Category:    s.product.Category,
			Score:       s.score,
			MatchReason: reason(s, band),
		}
	}
	return out
}

// pick fills the target respecting the category cap, then backfills past
// the cap if the catalog cannot otherwise satisfy the target.
func (e *Engine) pick(ranked []scored) []scored {
	picked := make([]scored, 0, e.target)
	perCategory := make(map[model.Category]int)
	taken := make(map[string]bool)

	for _, s := range ranked {
		if len(picked) == e.target {
			return picked
		}
		if perCategory[s.product.Category] >= e.categoryCap {
			continue
		}
		picked = append(picked, s)
		perCategory[s.product.Category]++
		taken[s.product.ID] = true
	}
	for _, s := range ranked {
		if len(picked) == e.target {
			break
		}
		if taken[s.product.ID] {
			continue
		}
		picked = append(picked, s)
	}
	return picked
}

func (e *Engine) scoreProduct(p model.Product, conditions map[string]model.ConditionResult, band health.Band, focus []string) scored {
	s := scored{product: p, score: p.BaseWeight}

	for _, name := range model.ConditionNames() {
		res, ok := conditions[name]
		if !ok || !res.Detected || !targets(p, name) {
			continue
		}
		s.score += severityBonus[res.Severity]
		s.reasons = append(s.reasons, fmt.Sprintf("targets %s %s", res.Severity, strings.ReplaceAll(name, "_", " ")))
	}

	if active, ok := formulationMatch(p, conditions); ok {
		s.score += formulationBonus
		s.reasons = append(s.reasons, fmt.Sprintf("formulated with %s", active))
	}

	s.score += bandAffinity[band][p.Category]

	for _, name := range focus {
		if targets(p, name) {
			s.score += ageFocusBonus
			break
		}
	}

	// Mild affordability nudge so ties break toward cheaper products.
	if p.Price > 0 && p.Price < 100 {
		s.score += (100 - p.Price) / 20
	}
	return s
}

// formulationMatch reports the first recognized active in the product that
// treats any detected condition.
func formulationMatch(p model.Product, conditions map[string]model.ConditionResult) (string, bool) {
	for _, ing := range p.Ingredients {
		treated, ok := activeIngredients[strings.ToLower(ing)]
		if !ok {
			continue
		}
		for _, name := range treated {
			if res, found := conditions[name]; found && res.Detected {
				return ing, true
			}
		}
	}
	return "", false
}

// targets reports whether a product addresses a condition, by tag.
func targets(p model.Product, condition string) bool {
	for _, tag := range p.Tags {
		if tag == condition {
			return true
		}
	}
	return false
}

func reason(s scored, band health.Band) string {
	if len(s.reasons) > 0 {
		return strings.Join(s.reasons, "; ")
	}
	switch band {
	case health.BandGood:
		return "maintains healthy skin as part of a daily routine"
	case health.BandFair:
		return "supports overall skin balance"
	default:
		return "complements the targeted treatments in this routine"
	}
}
