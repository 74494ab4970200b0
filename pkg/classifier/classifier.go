// Package classifier decides whether free text is an in-domain IT-support
// question and whether it needs complex troubleshooting, using keyword and
// pattern heuristics over a configurable lexicon.
package classifier

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Classifier scores text against a lexicon.
type Classifier struct {
	lex      *Lexicon
	patterns []*regexp.Regexp
}

// New compiles the lexicon's question patterns and returns a Classifier.
func New(lex *Lexicon) (*Classifier, error) {
	if lex == nil {
		lex = DefaultLexicon()
	}

	patterns := make([]*regexp.Regexp, 0, len(lex.QuestionPatterns))
	for _, p := range lex.QuestionPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile question pattern %q: %w", p, err)
		}
		patterns = append(patterns, re)
	}

	return &Classifier{lex: lex, patterns: patterns}, nil
}

// IsRelevant reports whether text looks like an in-domain support question.
//
// Three signals are computed over the normalized text: a domain keyword hit,
// an off-domain keyword hit, and a question-phrasing pattern hit. An
// off-domain hit rejects the text unless BOTH the domain keyword and the
// question pattern fired; otherwise one of the two positive signals is
// enough. The asymmetric tie-break is deliberate policy: a clearly phrased
// domain question wins even when off-topic words appear alongside it.
func (c *Classifier) IsRelevant(text string) bool {
	if text == "" {
		return false
	}

	norm := normalize(text)
	if norm == "" {
		return false
	}

	hasDomain := containsAny(norm, c.lex.DomainKeywords)
	hasOffDomain := containsAny(norm, c.lex.OffDomainKeywords)

	hasPattern := false
	for _, re := range c.patterns {
		if re.MatchString(norm) {
			hasPattern = true
			break
		}
	}

	score := 0
	if hasDomain {
		score++
	}
	if hasPattern {
		score++
	}

	if hasOffDomain && score < 2 {
		return false
	}
	return score >= 1
}

// IsComplex reports whether text contains a complex-troubleshooting term,
// which routes the question straight to the deep model.
func (c *Classifier) IsComplex(text string) bool {
	if text == "" {
		return false
	}
	return containsAny(strings.ToLower(text), c.lex.ComplexTerms)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// normalize lowercases, strips punctuation and collapses whitespace.
func normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
