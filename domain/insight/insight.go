// Package insight provides the structured analysis schema extracted from a
// discussion thread, the prompt that requests it, and parsing of the model's
// JSON response.
package insight

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnparseable indicates the model response could not be decoded into the
// analysis schema.
var ErrUnparseable = errors.New("unparseable analysis response")

// PainPoint is a concrete problem surfaced by the thread, with evidence.
type PainPoint struct {
	Pain                    string   `json:"pain"`
	Severity                string   `json:"severity"`
	Frequency               string   `json:"frequency"`
	WhoHasIt                string   `json:"who_has_it"`
	CurrentSolutions        string   `json:"current_solutions"`
	WhyCurrentSolutionsFail string   `json:"why_current_solutions_fail"`
	Quotes                  []string `json:"quotes"`
	Validation              string   `json:"validation"`
}

// BuyingSignal captures explicit willingness to pay.
type BuyingSignal struct {
	Signal      string   `json:"signal"`
	BudgetHints string   `json:"budget_hints"`
	Urgency     string   `json:"urgency"`
	Quotes      []string `json:"quotes"`
}

// UnmetNeed is something commenters want but say does not exist.
type UnmetNeed struct {
	Need        string   `json:"need"`
	WhoNeedsIt  string   `json:"who_needs_it"`
	WhyUnmet    string   `json:"why_unmet"`
	Opportunity string   `json:"opportunity"`
	Quotes      []string `json:"quotes"`
}

// Objection is a hesitation or concern raised in the thread.
type Objection struct {
	Objection     string   `json:"objection"`
	HowToOvercome string   `json:"how_to_overcome"`
	Quotes        []string `json:"quotes"`
}

// Pattern is a recurring theme or behavior.
type Pattern struct {
	Pattern     string `json:"pattern"`
	Frequency   string `json:"frequency"`
	Implication string `json:"implication"`
}

// ProductIdea is a concrete product opportunity grounded in the thread.
type ProductIdea struct {
	Idea           string `json:"idea"`
	TargetCustomer string `json:"target_customer"`
	ProblemSolved  string `json:"problem_solved"`
	Evidence       string `json:"evidence"`
	MVPSuggestion  string `json:"mvp_suggestion"`
	Risk           string `json:"risk"`
}

// Analysis is the full structured insight payload. Immutable once stored in
// the result cache.
type Analysis struct {
	Summary               string         `json:"summary"`
	PainPoints            []PainPoint    `json:"pain_points"`
	BuyingIntent          []BuyingSignal `json:"buying_intent"`
	UnmetNeeds            []UnmetNeed    `json:"unmet_needs"`
	ObjectionsAndConcerns []Objection    `json:"objections_and_concerns"`
	Patterns              []Pattern      `json:"patterns"`
	ProductIdeas          []ProductIdea  `json:"product_ideas"`
	GoldenQuotes          []string       `json:"golden_quotes"`
	RecommendedNextSteps  []string       `json:"recommended_next_steps"`
}

// Parse decodes a model response into an Analysis. The response is expected
// to be a JSON object; a surrounding markdown code fence is tolerated since
// some models wrap JSON-mode output anyway.
func Parse(raw string) (Analysis, error) {
	text := stripFence(strings.TrimSpace(raw))
	if text == "" {
		return Analysis{}, fmt.Errorf("%w: empty response", ErrUnparseable)
	}

	var a Analysis
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if a.Summary == "" && len(a.PainPoints) == 0 && len(a.GoldenQuotes) == 0 {
		return Analysis{}, fmt.Errorf("%w: no recognized sections in response", ErrUnparseable)
	}
	return a, nil
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
