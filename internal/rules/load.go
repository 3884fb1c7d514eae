package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// KeepMarkerRule is appended after every rule file: marker files stay in the
// template and are purged from user copies.
const KeepMarkerRule = "base:keep user:delete .keep"

// Load builds a frozen graph from a rule file. Blank lines and lines starting
// with "#" are ignored. Any malformed line fails the whole load.
func Load(r io.Reader) (*Graph, error) {
	g := New()

	s := bufio.NewScanner(r)
	lineNo := 0
	for s.Scan() {
		lineNo++
		line := strings.TrimRight(s.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := g.AddRuleFromString(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan rules: %w", err)
	}

	if err := g.AddRuleFromString(KeepMarkerRule); err != nil {
		return nil, fmt.Errorf("enforced rule: %w", err)
	}

	g.Freeze()
	return g, nil
}

// LoadFile reads and compiles a rule file.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	return g, nil
}
