// Package classify scores free-text requests against weighted pattern
// sets to select a workflow protocol. The heuristic is deliberately
// simple: signal patterns carry weight 3, context boosters weight 1, and
// the highest-scoring intent wins.
package classify

import (
	"regexp"
	"strings"

	"github.com/gateflow/gateflow/internal/core"
)

// Intent is a coarse classification of what the user wants.
type Intent string

const (
	IntentCreate   Intent = "CREATE"
	IntentVerify   Intent = "VERIFY"
	IntentRefactor Intent = "REFACTOR"
)

const (
	signalWeight  = 3
	boosterWeight = 1
)

// Result is the classifier's output: the winning intent and the protocol
// to launch for it.
type Result struct {
	Intent        Intent     `json:"intent"`
	Confidence    float64    `json:"confidence"`
	Protocol      string     `json:"protocol"`
	StartingPhase core.Phase `json:"starting_phase"`
}

// category couples an intent with its evidence patterns and target
// protocol. Categories are evaluated in declaration order, which makes
// tie-breaking deterministic: the earliest declared category wins a tie.
type category struct {
	intent   Intent
	protocol string
	signals  []*regexp.Regexp
	boosters []*regexp.Regexp
}

// Classifier scores text against the static category table.
type Classifier struct {
	categories []category
	registry   *core.Registry
}

// New creates a classifier resolving protocols through the registry.
func New(registry *core.Registry) *Classifier {
	return &Classifier{
		categories: builtinCategories(),
		registry:   registry,
	}
}

// Classify scores the input against every category and returns the
// winner. Identical input always yields an identical result. When every
// category scores zero the classifier falls back to CREATE with
// confidence 0.5, so an explicit invocation always activates a protocol.
func (c *Classifier) Classify(text string) Result {
	lowered := strings.ToLower(text)

	best := -1
	bestScore := 0
	for i, cat := range c.categories {
		score := 0
		for _, re := range cat.signals {
			if re.MatchString(lowered) {
				score += signalWeight
			}
		}
		for _, re := range cat.boosters {
			if re.MatchString(lowered) {
				score += boosterWeight
			}
		}
		// Strictly-highest wins; earlier declaration wins ties.
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 {
		return c.result(c.categories[0], 0.5)
	}
	confidence := float64(bestScore) / 10
	if confidence > 1.0 {
		confidence = 1.0
	}
	return c.result(c.categories[best], confidence)
}

func (c *Classifier) result(cat category, confidence float64) Result {
	res := Result{
		Intent:     cat.intent,
		Confidence: confidence,
		Protocol:   cat.protocol,
	}
	if p, err := c.registry.Lookup(cat.protocol); err == nil {
		res.StartingPhase = p.FirstPhase()
	}
	return res
}

// builtinCategories returns the static pattern table. Signals are primary
// evidence; boosters only nudge a category that already plausibly applies.
// Korean keyword variants are carried alongside the English ones.
func builtinCategories() []category {
	return []category{
		{
			intent:   IntentCreate,
			protocol: "skill_creation",
			signals: compile(
				`\b(create|make|build|generate|new|add|write)\b`,
				`(만들|생성|추가|새로)`,
			),
			boosters: compile(
				`\b(skill|agent|command|hook|mcp|component)\b`,
				`\b(plugin|feature)\b`,
			),
		},
		{
			intent:   IntentVerify,
			protocol: "verify_workflow",
			signals: compile(
				`\b(check|validate|verify|test|review|confirm|audit)\b`,
				`\b(correct|valid|proper|right)\b.*\?`,
				`(검증|확인|체크|테스트|검토)`,
			),
			boosters: compile(
				`\b(plugin|skill|agent|component|project)\b`,
				`\b(schema|structure|format|quality)\b`,
			),
		},
		{
			intent:   IntentRefactor,
			protocol: "refactor_workflow",
			signals: compile(
				`\b(refactor|improve|fix|modify|update|change|enhance)\b`,
				`(수정|개선|변경|고쳐|리팩토)`,
			),
			boosters: compile(
				`\b(code|function|class|method|file)\b`,
			),
		},
	}
}

func compile(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(p)
	}
	return res
}
