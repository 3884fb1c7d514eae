package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/lapas/keepengine/internal/rules"
)

var (
	keepColor    = color.New(color.FgGreen, color.Bold)
	deleteColor  = color.New(color.FgRed, color.Bold)
	descendColor = color.New(color.FgCyan)
	pathColor    = color.New(color.FgWhite, color.Bold)
)

func formatAction(mode rules.Mode, a rules.FileAction) string {
	c := keepColor
	if a == rules.Delete {
		c = deleteColor
	}
	return fmt.Sprintf("%s:%s", mode, c.Sprint(a))
}

// printDecision writes one line per queried path:
//
//	.wineManager  base:keep user:delete  descend
func printDecision(w io.Writer, path string, res rules.ActionResult) {
	line := fmt.Sprintf("%s  %s %s",
		pathColor.Sprint(path),
		formatAction(rules.ModeBase, res.Actions.Base),
		formatAction(rules.ModeUser, res.Actions.User))
	if res.Descend {
		line += "  " + descendColor.Sprint("descend")
	}
	_, _ = fmt.Fprintln(w, line)
}
