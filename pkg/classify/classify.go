// Package classify judges raw interview answers with deterministic,
// rule-based predicates: yes/no interpretation and clarification rules.
//
// The Classifier interface keeps the rules swappable; the engine never
// depends on how an implementation decides, only on the enumerated rule
// kinds. Heuristic is the default token-based implementation.
package classify

import (
	"regexp"
	"strings"
)

// Rule identifies a declared clarify_if condition.
type Rule string

const (
	// RuleEmptyOrTooShort fires on empty answers or answers below the
	// minimum length.
	RuleEmptyOrTooShort Rule = "empty_or_too_short"
	// RuleVague fires on hedging answers ("maybe", "not sure", ...).
	RuleVague Rule = "vague"
	// RuleUnclearYesNo fires when an answer to a yes/no question is
	// neither a clear affirmative nor a clear negative.
	RuleUnclearYesNo Rule = "unclear_yes_no"
)

// KnownRule reports whether kind is one of the enumerated rules.
func KnownRule(kind Rule) bool {
	switch kind {
	case RuleEmptyOrTooShort, RuleVague, RuleUnclearYesNo:
		return true
	}
	return false
}

// Classifier decides how raw answers are interpreted.
type Classifier interface {
	// YesNo interprets text as a confirmation. ok is false when the
	// answer is ambiguous; value is meaningful only when ok is true.
	YesNo(text string) (value bool, ok bool)

	// ShouldClarify reports whether the given rule fires for text.
	ShouldClarify(text string, rule Rule) bool
}

// Heuristic is the default token-based Classifier.
type Heuristic struct {
	// MinAnswerLen is the threshold for RuleEmptyOrTooShort.
	MinAnswerLen int
}

// NewHeuristic returns a Heuristic with default thresholds.
func NewHeuristic() *Heuristic {
	return &Heuristic{MinAnswerLen: 5}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

var yesTokens = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "yup": true,
	"sure": true, "ok": true, "okay": true, "k": true,
	"great": true, "good": true, "fine": true, "alright": true, "right": true,
	"correct": true, "true": true, "accurate": true,
	"affirmative": true, "confirmed": true,
	"generally": true, "mostly": true,
}

var noTokens = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true,
	"negative": true, "incorrect": true, "false": true,
}

// canonicalShort answers are never treated as vague or too short,
// whatever their length.
var canonicalShort = map[string]bool{
	"no": true, "yes": true, "y": true, "n": true,
	"nope": true, "yep": true, "yeah": true, "nah": true,
	"none": true, "n a": true, "na": true,
	"no decision": true, "not applicable": true,
}

var canonicalShortPhrases = []string{"there is no", "there s no"}

var vagueMarkers = []string{
	"maybe", "sort of", "kind of", "i think", "not sure",
	"dunno", "idk", "probably",
}

// YesNo interprets text as a confirmation using token heuristics:
// the first token is the strongest signal, then soft-yes openers and
// negation patterns, then any unambiguous token hit.
func (h *Heuristic) YesNo(text string) (bool, bool) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return false, false
	}

	tokenSet := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		tokenSet[tok] = true
	}

	if yesTokens[tokens[0]] {
		return true, true
	}
	if noTokens[tokens[0]] {
		return false, true
	}

	// Soft-yes openers: "i guess so", "i think generally", "sounds good".
	if len(tokens) >= 2 && tokens[0] == "i" && (tokens[1] == "guess" || tokens[1] == "think") {
		return true, true
	}
	if (tokens[0] == "sounds" || tokens[0] == "looks") && tokenSet["good"] {
		return true, true
	}

	// Negations like "not accurate" outrank stray yes-tokens.
	if tokenSet["not"] && (tokenSet["accurate"] || tokenSet["correct"] || tokenSet["true"]) {
		return false, true
	}

	yesHit := anyIn(tokenSet, yesTokens)
	noHit := anyIn(tokenSet, noTokens)
	if yesHit && !noHit {
		return true, true
	}
	if noHit && !yesHit {
		return false, true
	}
	return false, false
}

// ShouldClarify reports whether rule fires for text. Canonical short
// answers are exempt from the length and vagueness rules regardless of
// how short they are.
func (h *Heuristic) ShouldClarify(text string, rule Rule) bool {
	trimmed := strings.TrimSpace(text)

	switch rule {
	case RuleEmptyOrTooShort:
		if h.isCanonicalShort(trimmed) {
			return false
		}
		minLen := h.MinAnswerLen
		if minLen <= 0 {
			minLen = 5
		}
		return len(trimmed) < minLen

	case RuleVague:
		if trimmed == "" {
			return true
		}
		if h.isCanonicalShort(trimmed) {
			return false
		}
		lower := strings.ToLower(trimmed)
		for _, marker := range vagueMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
		return false

	case RuleUnclearYesNo:
		_, ok := h.YesNo(trimmed)
		return !ok
	}

	return false
}

func (h *Heuristic) isCanonicalShort(trimmed string) bool {
	normalized := strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(trimmed), " "))
	if canonicalShort[normalized] {
		return true
	}
	for _, phrase := range canonicalShortPhrases {
		if strings.HasPrefix(normalized, phrase) {
			return true
		}
	}
	return false
}

func tokenize(text string) []string {
	cleaned := strings.TrimSpace(nonAlnum.ReplaceAllString(strings.ToLower(text), " "))
	if cleaned == "" {
		return nil
	}
	return strings.Fields(cleaned)
}

func anyIn(set map[string]bool, vocab map[string]bool) bool {
	for tok := range set {
		if vocab[tok] {
			return true
		}
	}
	return false
}
