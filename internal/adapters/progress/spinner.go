package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/aadeploy/internal/usecase"
)

// SpinnerProgressReporter prints one line per deployment state. The running
// state spins; it is replaced by a check mark and its duration once the next
// event arrives.
type SpinnerProgressReporter struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner

	current   *usecase.ProgressEvent
	startedAt time.Time
	now       func() time.Time
}

// NewSpinnerProgressReporter creates a new spinner-based progress reporter
func NewSpinnerProgressReporter() *SpinnerProgressReporter {
	return newSpinnerProgressReporter(os.Stderr)
}

func newSpinnerProgressReporter(out io.Writer) *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		out:     out,
		spinner: s,
		now:     time.Now,
	}
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(_ context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.completeCurrent()

	if event.Done {
		r.printLine(color.New(color.FgGreen, color.Bold), "✓", event.Message, "")
		return
	}

	r.current = &event
	r.startedAt = r.now()

	label := stageLabel(event)
	if event.Spinner {
		r.spinner.Suffix = " " + label
		if !r.spinner.Active() {
			r.spinner.Start()
		}
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.pauseAndPrint(color.New(color.FgCyan), message)
}

// Error prints an error message and marks the running stage as failed
func (r *SpinnerProgressReporter) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopSpinner()
	if r.current != nil {
		r.printLine(color.New(color.FgRed), "✗", stageLabel(*r.current), "")
		r.current = nil
	}
	fmt.Fprintln(r.out, color.New(color.FgRed).Sprint(message))
}

// Stop ends any running stage without marking it complete
func (r *SpinnerProgressReporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopSpinner()
	r.current = nil
}

func (r *SpinnerProgressReporter) pauseAndPrint(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	fmt.Fprintln(r.out, c.Sprint(message))

	if wasActive {
		r.spinner.Start()
	}
}

// completeCurrent finishes the line of the running stage
func (r *SpinnerProgressReporter) completeCurrent() {
	r.stopSpinner()
	if r.current == nil {
		return
	}

	duration := r.now().Sub(r.startedAt)
	suffix := ""
	if r.current.Spinner {
		suffix = fmt.Sprintf(" (%s)", duration.Round(time.Millisecond))
	}
	r.printLine(color.New(color.FgGreen), "✓", stageLabel(*r.current), suffix)
	r.current = nil
}

func (r *SpinnerProgressReporter) stopSpinner() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

func (r *SpinnerProgressReporter) printLine(c *color.Color, icon, label, suffix string) {
	fmt.Fprintf(r.out, "%s %s%s\n", c.Sprint(icon), label, color.New(color.Faint).Sprint(suffix))
}

func stageLabel(event usecase.ProgressEvent) string {
	message := event.Message
	if message == "" {
		message = event.Stage
	}
	if event.Total > 0 {
		return fmt.Sprintf("[%d/%d] %s", event.Current, event.Total, message)
	}
	return message
}

// Ensure SpinnerProgressReporter implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
