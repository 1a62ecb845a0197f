package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chupakbra/pbadm/internal/collection"
	"github.com/chupakbra/pbadm/tui"
)

// ANSI color codes used across CLI output functions.
const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"       // blocked users, inactive packages
	colorGold  = "\033[38;5;220m" // empty-list notices
)

// Spinner draws the TUI's braille spinner on stderr while a request is in
// flight. Nothing is drawn when stderr is not a terminal.
type Spinner struct {
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// startSpinner starts a spinner labelled msg. Call Stop when the work is done.
func startSpinner(msg string) *Spinner {
	s := &Spinner{stop: make(chan struct{})}
	if !stderrIsTerminal() {
		return s
	}
	frames := tui.CLISpinner.Frames
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		tick := time.NewTicker(tui.CLISpinner.FPS)
		defer tick.Stop()
		for i := 0; ; i++ {
			select {
			case <-s.stop:
				fmt.Fprint(os.Stderr, "\r\033[K")
				return
			case <-tick.C:
				fmt.Fprintf(os.Stderr, "\r%s %s", frames[i%len(frames)], msg)
			}
		}
	}()
	return s
}

// Stop clears the spinner line. It may be called more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

func stderrIsTerminal() bool { return term.IsTerminal(int(os.Stderr.Fd())) }

func stdoutIsTerminal() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// jsonOut marshals v to JSON and writes it to cmd's output.
func jsonOut(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printEmpty writes an empty-list notice, in gold on a terminal.
func printEmpty(cmd *cobra.Command, noun string) {
	if stdoutIsTerminal() {
		fmt.Fprintf(cmd.OutOrStdout(), "%sNo %s found.%s\n", colorGold, noun, colorReset)
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "No %s found.\n", noun)
}

// printRows writes tabwriter output line by line, coloring data rows for
// which highlight returns true. Line 0 is the header.
func printRows(cmd *cobra.Command, table string, highlight func(i int) bool) {
	useColor := stdoutIsTerminal()
	out := cmd.OutOrStdout()
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")
	for i, line := range lines {
		if useColor && i > 0 && highlight(i-1) {
			fmt.Fprintf(out, "%s%s%s\n", colorRed, line, colorReset)
		} else {
			fmt.Fprintln(out, line)
		}
	}
}

// formatDate renders a timestamp as YYYY-MM-DD, or "-" for the zero time.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.DateOnly)
}

// yesNoBool returns "yes" or "no" for a bool flag.
func yesNoBool(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// confirmAction stages kind for id on a gate and prompts for confirmation
// unless force is set. run is called only when the action is confirmed.
func confirmAction(cmd *cobra.Command, kind collection.ActionKind, id, prompt string, force bool, run func(collection.PendingAction) error) error {
	var gate collection.Gate
	gate.Request(kind, id)
	if !force {
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
		var response string
		fmt.Fscan(cmd.InOrStdin(), &response)
		if r := strings.ToLower(strings.TrimSpace(response)); r != "y" && r != "yes" {
			gate.Cancel()
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}
	var err error
	gate.ConfirmWith(func(a collection.PendingAction) { err = run(a) })
	return err
}
