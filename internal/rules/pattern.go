package rules

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

const (
	doubleStar = "**"
	separator  = '/'
)

// compileSegment compiles one single-segment pattern. A lone "*" needs at
// least one character; inside other text "*" may match nothing. Everything
// that is not a star is matched literally.
func compileSegment(segment string) (glob.Glob, error) {
	if err := validateSegment(segment); err != nil {
		return nil, err
	}

	var expr string
	if segment == "*" {
		expr = "?*"
	} else {
		pieces := strings.Split(segment, "*")
		for i, piece := range pieces {
			pieces[i] = glob.QuoteMeta(piece)
		}
		expr = strings.Join(pieces, "*")
	}

	g, err := glob.Compile(expr, separator)
	if err != nil {
		return nil, fmt.Errorf("%w: compile segment %q: %v", ErrInvalidPattern, segment, err)
	}
	return g, nil
}

// validateSegment rejects segments that can never be matched structurally.
func validateSegment(segment string) error {
	if segment == "" {
		return fmt.Errorf("%w: empty path segment", ErrInvalidPattern)
	}
	if segment != doubleStar && strings.Contains(segment, doubleStar) {
		return fmt.Errorf("%w: %q: double-stars are only allowed in isolation between path separators", ErrInvalidPattern, segment)
	}
	return nil
}

// splitPattern splits a rule pattern into its segments and validates each one.
func splitPattern(pattern string) ([]string, error) {
	if pattern == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPattern)
	}
	segments := strings.Split(pattern, string(separator))
	for _, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return nil, fmt.Errorf("%w (in %q)", err, pattern)
		}
	}
	return segments, nil
}
