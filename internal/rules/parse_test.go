package rules

import (
	"errors"
	"testing"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		want     Actions
		segments []string
		wantErr  error
	}{
		{
			name:     "base first",
			line:     "base:keep user:delete .wineManager",
			want:     Actions{Base: Keep, User: Delete},
			segments: []string{".wineManager"},
		},
		{
			name:     "user first",
			line:     "user:keep base:delete .wineManager/userdata",
			want:     Actions{Base: Delete, User: Keep},
			segments: []string{".wineManager", "userdata"},
		},
		{
			name:     "tabs and repeated blanks",
			line:     "base:delete\tuser:keep   **",
			want:     Actions{Base: Delete, User: Keep},
			segments: []string{"**"},
		},
		{
			name:     "pattern with blanks",
			line:     "base:keep user:keep My Games/save*",
			want:     Actions{Base: Keep, User: Keep},
			segments: []string{"My Games", "save*"},
		},
		{
			name:     "carriage return",
			line:     "base:keep user:delete .bashrc\r",
			want:     Actions{Base: Keep, User: Delete},
			segments: []string{".bashrc"},
		},
		{name: "missing pattern", line: "base:keep user:delete", wantErr: ErrInvalidRule},
		{name: "missing pattern trailing blank", line: "base:keep user:delete ", wantErr: ErrInvalidRule},
		{name: "single token", line: ".config", wantErr: ErrInvalidRule},
		{name: "duplicate base", line: "base:keep base:delete foo", wantErr: ErrInvalidRule},
		{name: "missing markers", line: "keep delete foo", wantErr: ErrInvalidRule},
		{name: "unknown action", line: "base:maybe user:keep foo", wantErr: ErrInvalidRule},
		{name: "uppercase action", line: "base:KEEP user:keep foo", wantErr: ErrInvalidRule},
		{name: "embedded double star", line: "base:keep user:keep foo**", wantErr: ErrInvalidPattern},
		{name: "empty segment", line: "base:keep user:keep a//b", wantErr: ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ParseRule(tt.line)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseRule(%q) error = %v, want %v", tt.line, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRule(%q) error: %v", tt.line, err)
			}
			if rule.Actions != tt.want {
				t.Errorf("actions = %v, want %v", rule.Actions, tt.want)
			}
			if len(rule.Segments) != len(tt.segments) {
				t.Fatalf("segments = %q, want %q", rule.Segments, tt.segments)
			}
			for i := range tt.segments {
				if rule.Segments[i] != tt.segments[i] {
					t.Errorf("segment %d = %q, want %q", i, rule.Segments[i], tt.segments[i])
				}
			}
		})
	}
}

func TestRuleString(t *testing.T) {
	rule, err := ParseRule("user:delete base:keep .keep")
	if err != nil {
		t.Fatal(err)
	}
	if got := rule.String(); got != KeepMarkerRule {
		t.Errorf("String() = %q, want %q", got, KeepMarkerRule)
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"base", "user"} {
		m, err := ParseMode(s)
		if err != nil {
			t.Fatalf("ParseMode(%q) error: %v", s, err)
		}
		if string(m) != s {
			t.Errorf("ParseMode(%q) = %q", s, m)
		}
	}
	if _, err := ParseMode("both"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestActionsSelect(t *testing.T) {
	a := Actions{Base: Keep, User: Delete}
	if a.Select(ModeBase) != Keep {
		t.Error("base mode should select the base action")
	}
	if a.Select(ModeUser) != Delete {
		t.Error("user mode should select the user action")
	}
}
