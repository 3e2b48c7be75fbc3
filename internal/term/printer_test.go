package term

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

// TestPaintRespectsColorFlag verifies escapes only appear on terminals.
func TestPaintRespectsColorFlag(t *testing.T) {
	var out bytes.Buffer

	colored := NewPrinterForTests(&out, strings.NewReader(""), true)
	if got := colored.Paint("hi", Green); got != "\033[92mhi\033[0m" {
		t.Fatalf("colored Paint = %q", got)
	}

	plain := NewPrinterForTests(&out, strings.NewReader(""), false)
	if got := plain.Paint("hi", Green); got != "hi" {
		t.Fatalf("plain Paint = %q, want bare text", got)
	}
}

// TestStatusRedrawsInPlace checks the carriage return and clear code.
func TestStatusRedrawsInPlace(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinterForTests(&out, strings.NewReader(""), false)

	p.Status("Processing | (5s)")
	if got := out.String(); got != "\rProcessing | (5s)\033[K" {
		t.Fatalf("Status output = %q", got)
	}
}

// TestPromptTrimsInput verifies prompt echo and trimming.
func TestPromptTrimsInput(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinterForTests(&out, strings.NewReader("  tok-123  \n"), false)

	got, err := p.Prompt("Enter API token: ")
	if err != nil {
		t.Fatalf("Prompt() error = %v", err)
	}
	if got != "tok-123" {
		t.Fatalf("Prompt() = %q, want tok-123", got)
	}
	if out.String() != "Enter API token: " {
		t.Fatalf("prompt label = %q", out.String())
	}
}

// TestPromptEmptyInputFails checks closed stdin returns an error.
func TestPromptEmptyInputFails(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinterForTests(&out, strings.NewReader(""), false)

	if _, err := p.Prompt("? "); err == nil {
		t.Fatal("expected error on closed input")
	}
}

// TestConfirmDefaultsToYes verifies the Y/n semantics.
func TestConfirmDefaultsToYes(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"\n", true},
		{"y\n", true},
		{"yes\n", true},
		{"anything\n", true},
		{"n\n", false},
		{"N\n", false},
		{"no\n", false},
		{"", false},
	}

	for _, tc := range cases {
		var out bytes.Buffer
		p := NewPrinterForTests(&out, strings.NewReader(tc.in), false)
		if got := p.Confirm("Update token? [Y/n]: "); got != tc.want {
			t.Fatalf("Confirm with input %q = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// TestStateLabel verifies display labels for every remote state.
func TestStateLabel(t *testing.T) {
	cases := []struct {
		raw       string
		wantLabel string
		wantColor Color
	}{
		{"waiting-file", "Waiting", Dim},
		{"pending", "Queued", Yellow},
		{"running", "Processing", Blue},
		{"converting", "Converting", Cyan},
		{"done", "Completed", Green},
		{"failed", "Failed", Red},
		{"mystery", "mystery", Dim},
		{"", "unknown", Dim},
	}

	for _, tc := range cases {
		label, c := StateLabel(tc.raw)
		if label != tc.wantLabel || c != tc.wantColor {
			t.Fatalf("StateLabel(%q) = %q/%q, want %q/%q", tc.raw, label, c, tc.wantLabel, tc.wantColor)
		}
	}
}

// TestSpinnerCycle verifies the four-frame animation order.
func TestSpinnerCycle(t *testing.T) {
	want := []string{"|", "/", "-", "\\", "|"}
	for tick, frame := range want {
		if got := Spinner(tick); got != frame {
			t.Fatalf("Spinner(%d) = %q, want %q", tick, got, frame)
		}
	}
}

// TestProgressBar verifies fill, head marker, and width.
func TestProgressBar(t *testing.T) {
	if got := ProgressBar(0, 10); got != ">"+strings.Repeat(" ", 29) {
		t.Fatalf("empty bar = %q", got)
	}

	got := ProgressBar(5, 10)
	if !strings.HasPrefix(got, strings.Repeat("=", 15)+">") {
		t.Fatalf("half bar = %q, want 15 filled segments", got)
	}
	if len(got) != 30 {
		t.Fatalf("half bar length = %d, want 30", len(got))
	}

	if got := ProgressBar(10, 10); got != strings.Repeat("=", 30)+">" {
		t.Fatalf("full bar = %q", got)
	}

	if got := ProgressBar(3, 0); got != "" {
		t.Fatalf("bar with unknown total = %q, want empty", got)
	}
}

// TestPercent checks whole-number percentage math.
func TestPercent(t *testing.T) {
	if got := Percent(1, 3); got != 33 {
		t.Fatalf("Percent(1, 3) = %d, want 33", got)
	}
	if got := Percent(10, 10); got != 100 {
		t.Fatalf("Percent(10, 10) = %d, want 100", got)
	}
	if got := Percent(5, 0); got != 0 {
		t.Fatalf("Percent(5, 0) = %d, want 0", got)
	}
}

// TestFormatDuration verifies the seconds and minutes renderings.
func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{5300 * time.Millisecond, "5.3s"},
		{59 * time.Second, "59.0s"},
		{90 * time.Second, "1m 30s"},
		{1800 * time.Second, "30m 0s"},
	}

	for _, tc := range cases {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Fatalf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
