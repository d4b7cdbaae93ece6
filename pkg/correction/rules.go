// Package correction rewrites known mis-transcriptions in raw transcripts.
//
// Rules match whole words case-insensitively and are applied in declared order, so
// a later rule sees the output of earlier rules.
package correction

import (
	"errors"
	"regexp"
	"strings"

	"github.com/Nephrolytics-ai/voxsyn/pkg/model"
)

var (
	ErrEmptySource      = errors.New("correction rule source is required")
	ErrEmptyReplacement = errors.New("correction rule replacement is required")
)

// Rule maps a whole-word source token to its canonical replacement.
type Rule struct {
	source      string
	replacement string
	pattern     *regexp.Regexp
}

func NewRule(source string, replacement string) (Rule, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return Rule{}, ErrEmptySource
	}
	if strings.TrimSpace(replacement) == "" {
		return Rule{}, ErrEmptyReplacement
	}

	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(source) + `\b`)
	if err != nil {
		return Rule{}, err
	}
	return Rule{source: source, replacement: replacement, pattern: pattern}, nil
}

// MustRule is NewRule for static tables; it panics on an invalid rule.
func MustRule(source string, replacement string) Rule {
	rule, err := NewRule(source, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r Rule) Source() string {
	return r.source
}

func (r Rule) Replacement() string {
	return r.replacement
}

func (r Rule) apply(text string) string {
	if r.pattern == nil {
		return text
	}
	return r.pattern.ReplaceAllLiteralString(text, r.replacement)
}

// RuleSet is an ordered, immutable list of rules.
type RuleSet struct {
	rules []Rule
}

func NewRuleSet(rules ...Rule) *RuleSet {
	return &RuleSet{rules: append([]Rule(nil), rules...)}
}

// DefaultMedicalRules returns the built-in cardiology corrections.
func DefaultMedicalRules() *RuleSet {
	return NewRuleSet(
		MustRule("cabbage", "CABG"),
		MustRule("a fib", "AFib"),
	)
}

// Apply runs every rule over text in declared order.
func (rs *RuleSet) Apply(text string) string {
	if rs == nil {
		return text
	}
	corrected := text
	for _, rule := range rs.rules {
		corrected = rule.apply(corrected)
	}
	return corrected
}

func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	return append([]Rule(nil), rs.rules...)
}

// Keywords groups rules by replacement into transcription hints, in first-seen order.
func (rs *RuleSet) Keywords() []model.AudioKeyword {
	if rs.Len() == 0 {
		return nil
	}

	index := make(map[string]int, len(rs.rules))
	keywords := make([]model.AudioKeyword, 0, len(rs.rules))
	for _, rule := range rs.rules {
		i, ok := index[rule.replacement]
		if !ok {
			index[rule.replacement] = len(keywords)
			keywords = append(keywords, model.AudioKeyword{Word: rule.replacement})
			i = len(keywords) - 1
		}
		keywords[i].CommonMistypes = append(keywords[i].CommonMistypes, rule.source)
	}
	return keywords
}
