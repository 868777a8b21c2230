// Package hooks provides the CLI's progress reporting: a one-line
// announcement per directory that contains new or modified files, colored
// when stdout is a terminal.
package hooks

import (
	"fmt"
	"io"
	"os"
	"path"

	"golang.org/x/term"

	"github.com/Striender/Research-data/pkg/collector"
)

const (
	ansiGreen = "\x1b[92m"
	ansiReset = "\x1b[0m"
)

// Announcer implements collector.Hooks. It announces each directory at most
// once, on the first fresh file seen inside it.
type Announcer struct {
	out       io.Writer
	color     bool
	announced map[string]struct{}
}

// NewAnnouncer returns an Announcer writing to out. ANSI color is enabled
// only when out is a terminal.
func NewAnnouncer(out io.Writer) *Announcer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Announcer{out: out, color: color, announced: make(map[string]struct{})}
}

// OnFileStatusUpdate implements collector.Hooks.
func (a *Announcer) OnFileStatusUpdate(relPath string, status collector.Status, message string) error {
	if status != collector.StatusFresh {
		return nil
	}
	dir := path.Dir(relPath)
	if _, ok := a.announced[dir]; ok {
		return nil
	}
	a.announced[dir] = struct{}{}
	line := fmt.Sprintf("Processing new/modified files in: %s", dir)
	if a.color {
		line = ansiGreen + line + ansiReset
	}
	_, err := fmt.Fprintln(a.out, line)
	return err
}

// OnRunComplete implements collector.Hooks. The summary is printed by the CLI
// runner, not here.
func (a *Announcer) OnRunComplete(sum collector.Summary) error { return nil }
