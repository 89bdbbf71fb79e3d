package insight

import (
	"fmt"
	"strings"

	"github.com/threadlens/threadlens/domain/thread"
)

// DefaultThreadClip bounds how much formatted thread text is embedded in the
// prompt. Long threads are truncated rather than rejected.
const DefaultThreadClip = 12000

// SystemPrompt is the system message sent alongside the analysis prompt.
const SystemPrompt = "You are an expert at extracting business insights from online discussions. " +
	"You identify pain points, buying intent, and product opportunities. " +
	"Always respond with valid JSON."

const defaultRules = `ANALYSIS RULES:
- Only include insights that are DIRECTLY supported by quotes from the thread
- Prioritize comments with high upvotes (score) — these represent validated opinions
- Look for emotional language (frustration, excitement, desperation) — these signal real pain
- Distinguish between "nice to have" and "hair on fire" problems
- Ignore generic/joke comments`

const defaultSchema = `Provide your analysis in this exact JSON format:

{
    "summary": "2-3 sentences: What is this thread about? What's the overall sentiment?",
    "pain_points": [
        {
            "pain": "Specific, concrete problem (not vague)",
            "severity": "critical | high | medium | low",
            "frequency": "Number of people who mentioned this or similar",
            "who_has_it": "What type of person experiences this problem?",
            "current_solutions": "How are they solving it now (if mentioned)?",
            "why_current_solutions_fail": "Why existing solutions don't work",
            "quotes": ["Exact quote 1", "Exact quote 2"],
            "validation": "Why this is a real problem worth solving"
        }
    ],
    "buying_intent": [
        {
            "signal": "What they explicitly want to pay for",
            "budget_hints": "Any mentions of price, willingness to pay, or budget?",
            "urgency": "high | medium | low — how urgently do they need this?",
            "quotes": ["Exact quote showing intent to pay or buy"]
        }
    ],
    "unmet_needs": [
        {
            "need": "Something people want but explicitly say doesn't exist or is hard to find",
            "who_needs_it": "Target customer profile",
            "why_unmet": "Why hasn't this been solved yet?",
            "opportunity": "Specific product/service idea to fill this gap",
            "quotes": ["Exact quote"]
        }
    ],
    "objections_and_concerns": [
        {
            "objection": "What makes people hesitant or skeptical?",
            "how_to_overcome": "How could a product address this concern?",
            "quotes": ["Exact quote"]
        }
    ],
    "patterns": [
        {
            "pattern": "Recurring theme, behavior, or sentiment",
            "frequency": "How often this appeared",
            "implication": "What this means for product builders"
        }
    ],
    "product_ideas": [
        {
            "idea": "Specific, concrete product or feature idea",
            "target_customer": "Who exactly would buy this?",
            "problem_solved": "Which pain point(s) does this address?",
            "evidence": "Why this would work based on the thread",
            "mvp_suggestion": "Simplest version you could build to test this",
            "risk": "What could go wrong or why this might not work"
        }
    ],
    "golden_quotes": [
        "The most insightful, emotional, or actionable quotes from the thread — these are testimonial gold"
    ],
    "recommended_next_steps": [
        "Specific action item 1 based on this research",
        "Specific action item 2"
    ]
}

IMPORTANT:
- Be SPECIFIC, not generic. "People want better tools" is useless. "3 people said they'd pay $50/month for automated invoice reconciliation" is gold.
- Every insight must have supporting quotes
- Prioritize quality over quantity — only include high-signal insights
- If the thread doesn't have good insights, say so honestly`

// PromptBuilder renders formatted thread text into an analysis prompt.
// The zero value is not usable; construct with NewPromptBuilder.
type PromptBuilder struct {
	template   Template
	threadClip int
}

// NewPromptBuilder creates a PromptBuilder using the given template. Pass
// DefaultTemplate() unless an override file is configured.
func NewPromptBuilder(template Template) PromptBuilder {
	return PromptBuilder{template: template, threadClip: DefaultThreadClip}
}

// WithThreadClip returns a builder with a different bound on embedded thread
// text. A bound of zero or less disables clipping.
func (b PromptBuilder) WithThreadClip(n int) PromptBuilder {
	b.threadClip = n
	return b
}

// Build renders the analysis prompt for a formatted thread. Pure transform;
// no failure points.
func (b PromptBuilder) Build(formatted, subreddit string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n\n", strings.ReplaceAll(b.template.Intro, "{subreddit}", subreddit))
	fmt.Fprintf(&sb, "THREAD DATA:\n%s\n\n", thread.Clip(formatted, b.threadClip))
	sb.WriteString(b.template.Rules)
	sb.WriteString("\n\n")
	sb.WriteString(b.template.Schema)

	return sb.String()
}

// System returns the system message for the analysis call.
func (b PromptBuilder) System() string {
	return b.template.System
}
