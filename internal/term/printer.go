package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"mineru-cli/internal/domain"
)

// Color is an ANSI escape prefix applied to emphasized output.
type Color string

const (
	Bold   Color = "\033[1m"
	Dim    Color = "\033[2m"
	Red    Color = "\033[91m"
	Green  Color = "\033[92m"
	Yellow Color = "\033[93m"
	Blue   Color = "\033[94m"
	Cyan   Color = "\033[96m"

	reset = "\033[0m"
)

// Printer renders colored output and reads interactive prompts.
type Printer struct {
	out     io.Writer
	in      *bufio.Reader
	colored bool
}

// NewPrinter builds a stdout printer, coloring only when on a TTY.
func NewPrinter() *Printer {
	fd := os.Stdout.Fd()
	colored := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return &Printer{
		out:     colorable.NewColorableStdout(),
		in:      bufio.NewReader(os.Stdin),
		colored: colored,
	}
}

// NewPrinterForTests builds a printer over injected streams.
func NewPrinterForTests(out io.Writer, in io.Reader, colored bool) *Printer {
	return &Printer{out: out, in: bufio.NewReader(in), colored: colored}
}

// Paint wraps text in a color sequence when color is enabled.
func (p *Printer) Paint(text string, c Color) string {
	if !p.colored {
		return text
	}
	return string(c) + text + reset
}

// Printf writes formatted output.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Println writes one output line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

// Print writes output without a trailing newline, for step labels that
// are completed later by OK or FAILED.
func (p *Printer) Print(args ...any) {
	fmt.Fprint(p.out, args...)
}

// Errorf writes one red error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.Println(p.Paint(fmt.Sprintf(format, args...), Red))
}

// Status redraws the single live progress line in place.
func (p *Printer) Status(line string) {
	fmt.Fprintf(p.out, "\r%s\033[K", line)
}

// Prompt prints a label and reads one trimmed input line.
func (p *Printer) Prompt(label string) (string, error) {
	fmt.Fprint(p.out, label)

	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question defaulting to yes. A failed read
// counts as a decline.
func (p *Printer) Confirm(label string) bool {
	answer, err := p.Prompt(label)
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer != "n" && answer != "no"
}

// StateLabel maps a remote state string to its display label and color.
func StateLabel(raw string) (string, Color) {
	switch domain.JobState(raw) {
	case domain.JobStateWaitingFile:
		return "Waiting", Dim
	case domain.JobStateQueued:
		return "Queued", Yellow
	case domain.JobStateRunning:
		return "Processing", Blue
	case domain.JobStateConverting:
		return "Converting", Cyan
	case domain.JobStateDone:
		return "Completed", Green
	case domain.JobStateFailed:
		return "Failed", Red
	default:
		if raw == "" {
			return "unknown", Dim
		}
		return raw, Dim
	}
}

var spinnerFrames = [...]string{"|", "/", "-", "\\"}

// Spinner returns the animation glyph for a poll tick.
func Spinner(tick int) string {
	return spinnerFrames[tick%len(spinnerFrames)]
}

// ProgressBar renders the fixed-width page extraction bar. An unknown
// total yields an empty bar.
func ProgressBar(extracted, total int) string {
	const width = 30
	if total <= 0 {
		return ""
	}

	filled := width * extracted / total
	if filled > width {
		filled = width
	}
	pad := width - filled - 1
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("=", filled) + ">" + strings.Repeat(" ", pad)
}

// Percent computes the whole-number page completion percentage.
func Percent(extracted, total int) int {
	if total <= 0 {
		return 0
	}
	return extracted * 100 / total
}

// FormatDuration renders elapsed time the way the CLI reports it:
// tenths of seconds under a minute, minutes and seconds above.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
