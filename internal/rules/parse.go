package rules

import (
	"fmt"
	"strings"
)

const (
	basePrefix = "base:"
	userPrefix = "user:"
)

// Rule is one parsed rule line.
type Rule struct {
	Pattern  string
	Segments []string
	Actions  Actions
}

// String renders the rule in rule-file syntax.
func (r Rule) String() string {
	return r.Actions.String() + " " + r.Pattern
}

// ParseRule parses a line of the form "base:<action> user:<action> <pattern>".
// The two action tokens may appear in either order.
func ParseRule(line string) (Rule, error) {
	line = strings.TrimRight(line, "\r\n")

	first, rest, ok := cutToken(line)
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q: expected two actions and a pattern", ErrInvalidRule, line)
	}
	second, pattern, ok := cutToken(rest)
	if !ok || pattern == "" {
		return Rule{}, fmt.Errorf("%w: %q: expected two actions and a pattern", ErrInvalidRule, line)
	}

	var baseToken, userToken string
	switch {
	case strings.HasPrefix(first, basePrefix) && strings.HasPrefix(second, userPrefix):
		baseToken, userToken = first, second
	case strings.HasPrefix(first, userPrefix) && strings.HasPrefix(second, basePrefix):
		baseToken, userToken = second, first
	default:
		return Rule{}, fmt.Errorf("%w: %q: expected one base: and one user: action", ErrInvalidRule, line)
	}

	base, err := ParseFileAction(strings.TrimPrefix(baseToken, basePrefix))
	if err != nil {
		return Rule{}, err
	}
	user, err := ParseFileAction(strings.TrimPrefix(userToken, userPrefix))
	if err != nil {
		return Rule{}, err
	}

	segments, err := splitPattern(pattern)
	if err != nil {
		return Rule{}, err
	}

	return Rule{
		Pattern:  pattern,
		Segments: segments,
		Actions:  Actions{Base: base, User: user},
	}, nil
}

// AddRuleFromString parses and inserts one rule line.
func (g *Graph) AddRuleFromString(line string) error {
	rule, err := ParseRule(line)
	if err != nil {
		return err
	}
	return g.AddRule(rule.Segments, rule.Actions)
}

// cutToken splits off the first blank-separated token. Leading blanks of the
// remainder are dropped; anything after them is returned verbatim.
func cutToken(s string) (token, rest string, ok bool) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, "", false
	}
	return s[:i], strings.TrimLeft(s[i:], " \t"), true
}
