// Package recommend ranks catalog listings against a requirement profile.
//
// Ranking is two-tier. Listings that satisfy every known requirement exactly are returned
// in catalog order. Only when no listing is exact does the scored pass run, giving each
// listing weighted partial credit per matching field. The scored pass only returns
// listings with at least one partial match, so a profile that matches nothing yields an
// empty result.
package recommend

import (
	"math"
	"sort"

	"github.com/righthome-ai/property-copilot/internal/catalog"
	"github.com/righthome-ai/property-copilot/internal/requirement"
)

// Match reason constants
const (
	ReasonCity       = "City match"
	ReasonType       = "Property type match"
	ReasonBedrooms   = "Bedrooms match"
	ReasonStatus     = "Construction status match"
	ReasonBudget     = "Price within 20% of budget"
	ReasonBudgetNear = "Price within 30% of budget"
)

// MaxResults caps the number of recommendations returned.
const MaxResults = 5

// Pass names which tier produced a result.
type Pass string

const (
	PassExact  Pass = "exact"
	PassScored Pass = "scored"
	PassEmpty  Pass = "empty"
)

// Weights is the partial credit per field in the scored pass.
type Weights struct {
	City       float64
	Type       float64
	Bedrooms   float64
	Status     float64
	Budget     float64
	BudgetNear float64
}

// DefaultWeights are the production weights.
var DefaultWeights = Weights{
	City:       2,
	Type:       2,
	Bedrooms:   1.5,
	Status:     1,
	Budget:     2,
	BudgetNear: 1,
}

const (
	budgetTolerance     = 0.2
	budgetNearTolerance = 0.3
)

// Match is a recommended listing with how it matched.
type Match struct {
	catalog.Listing
	Score          float64  `json:"score"`
	Exact          bool     `json:"exact"`
	MatchedReasons []string `json:"matchedReasons"`
}

// Result is an ordered recommendation set.
type Result struct {
	Matches []Match
	Pass    Pass
}

// Listings returns the matched listings without scoring detail.
func (r Result) Listings() []catalog.Listing {
	out := make([]catalog.Listing, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Listing
	}
	return out
}

// Lister is the catalog view the scorer reads.
type Lister interface {
	List() []catalog.Listing
}

// Scorer ranks a catalog against profiles.
type Scorer struct {
	catalog Lister
	weights Weights
}

// NewScorer creates a scorer with the default weights.
func NewScorer(c Lister) *Scorer {
	return &Scorer{catalog: c, weights: DefaultWeights}
}

// NewScorerWithWeights creates a scorer with custom weights.
func NewScorerWithWeights(c Lister, w Weights) *Scorer {
	return &Scorer{catalog: c, weights: w}
}

// Recommend returns up to MaxResults listings for the profile.
func (s *Scorer) Recommend(p requirement.Profile) Result {
	listings := s.catalog.List()

	exact := make([]Match, 0, MaxResults)
	for _, l := range listings {
		if reasons, ok := exactMatch(l, p); ok {
			exact = append(exact, Match{
				Listing:        l,
				Score:          s.score(l, p),
				Exact:          true,
				MatchedReasons: reasons,
			})
			if len(exact) == MaxResults {
				break
			}
		}
	}
	if len(exact) > 0 {
		return Result{Matches: exact, Pass: PassExact}
	}

	scored := make([]Match, 0, len(listings))
	for _, l := range listings {
		score := s.score(l, p)
		if score <= 0 {
			continue
		}
		scored = append(scored, Match{
			Listing:        l,
			Score:          score,
			MatchedReasons: reasons(l, p),
		})
	}
	// Stable keeps catalog order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > MaxResults {
		scored = scored[:MaxResults]
	}
	if len(scored) == 0 {
		return Result{Matches: []Match{}, Pass: PassEmpty}
	}
	return Result{Matches: scored, Pass: PassScored}
}

// exactMatch reports whether the listing satisfies every known field.
// Unknown fields impose no constraint.
func exactMatch(l catalog.Listing, p requirement.Profile) ([]string, bool) {
	if p.Has(requirement.FieldCity) && !l.InCity(p.City) {
		return nil, false
	}
	if p.Has(requirement.FieldType) && l.Category != p.Type {
		return nil, false
	}
	if p.Has(requirement.FieldBedrooms) && !bedroomsMatch(l, p) {
		return nil, false
	}
	if p.Has(requirement.FieldStatus) && l.Status != p.Status {
		return nil, false
	}
	if p.Has(requirement.FieldBudget) && !withinBudget(l, p.Budget, budgetTolerance) {
		return nil, false
	}
	return reasons(l, p), true
}

func (s *Scorer) score(l catalog.Listing, p requirement.Profile) float64 {
	var score float64
	if p.Has(requirement.FieldCity) && l.InCity(p.City) {
		score += s.weights.City
	}
	if p.Has(requirement.FieldType) && l.Category == p.Type {
		score += s.weights.Type
	}
	if p.Has(requirement.FieldBedrooms) && bedroomsMatch(l, p) {
		score += s.weights.Bedrooms
	}
	if p.Has(requirement.FieldStatus) && l.Status == p.Status {
		score += s.weights.Status
	}
	if p.Has(requirement.FieldBudget) {
		switch {
		case withinBudget(l, p.Budget, budgetTolerance):
			score += s.weights.Budget
		case withinBudget(l, p.Budget, budgetNearTolerance):
			score += s.weights.BudgetNear
		}
	}
	return score
}

func reasons(l catalog.Listing, p requirement.Profile) []string {
	out := []string{}
	if p.Has(requirement.FieldCity) && l.InCity(p.City) {
		out = append(out, ReasonCity)
	}
	if p.Has(requirement.FieldType) && l.Category == p.Type {
		out = append(out, ReasonType)
	}
	if p.Has(requirement.FieldBedrooms) && bedroomsMatch(l, p) {
		out = append(out, ReasonBedrooms)
	}
	if p.Has(requirement.FieldStatus) && l.Status == p.Status {
		out = append(out, ReasonStatus)
	}
	if p.Has(requirement.FieldBudget) {
		switch {
		case withinBudget(l, p.Budget, budgetTolerance):
			out = append(out, ReasonBudget)
		case withinBudget(l, p.Budget, budgetNearTolerance):
			out = append(out, ReasonBudgetNear)
		}
	}
	return out
}

// bedroomsMatch treats a listing without a bedroom count ("NA") as never matching.
func bedroomsMatch(l catalog.Listing, p requirement.Profile) bool {
	return l.Bedrooms != nil && p.Bedrooms != nil && *l.Bedrooms == *p.Bedrooms
}

func withinBudget(l catalog.Listing, budget, tolerance float64) bool {
	return math.Abs(l.AbsolutePrice()-budget) <= tolerance*budget
}
