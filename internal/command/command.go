// Package command assembles ImageMagick invocations from planned geometry.
package command

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Command is an executable with its argument vector.
type Command struct {
	Path string
	Args []string
}

// Argv returns the path followed by the arguments.
func (c Command) Argv() []string {
	return append([]string{c.Path}, c.Args...)
}

// String renders the command as a single shell line. Arguments that need it
// are single-quoted, and every "!" is backslash-escaped so history expansion
// cannot touch it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, a := range c.Argv() {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}

var safeArg = regexp.MustCompile(`^[A-Za-z0-9_\-+=./:,%@!]+$`)

// Quote escapes a single argument for a POSIX shell.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if safeArg.MatchString(s) {
		return strings.ReplaceAll(s, "!", `\!`)
	}

	q := "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
	return strings.ReplaceAll(q, "!", `'\!'`)
}

// identifyFor derives the introspection tool from the convert executable:
// ".../convert" becomes ".../identify" and ImageMagick 7's "magick" runs
// "magick identify".
func identifyFor(executable string) (string, []string) {
	switch {
	case filepath.Base(executable) == "magick":
		return executable, []string{"identify"}
	case strings.HasSuffix(executable, "convert"):
		return strings.TrimSuffix(executable, "convert") + "identify", nil
	default:
		return "identify", nil
	}
}
