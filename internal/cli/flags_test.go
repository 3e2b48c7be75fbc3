package cli

import (
	"reflect"
	"testing"

	"mineru-cli/internal/domain"
)

// TestParseArgsDefaults verifies the baseline option values.
func TestParseArgsDefaults(t *testing.T) {
	f, err := parseArgs([]string{"doc.pdf"})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}

	if f.command != "doc.pdf" || len(f.inputs) != 0 {
		t.Fatalf("command = %q inputs = %v, want doc.pdf with none", f.command, f.inputs)
	}
	if f.model != domain.ModelVLM {
		t.Fatalf("model = %q, want %q", f.model, domain.ModelVLM)
	}
	if f.lang != domain.DefaultLanguage {
		t.Fatalf("lang = %q, want %q", f.lang, domain.DefaultLanguage)
	}
	if f.timeout != DefaultTimeoutSeconds {
		t.Fatalf("timeout = %d, want %d", f.timeout, DefaultTimeoutSeconds)
	}
}

// TestParseArgsMixedOrder verifies flags may trail the positionals.
func TestParseArgsMixedOrder(t *testing.T) {
	f, err := parseArgs([]string{"batch", "a.pdf", "--no-wait", "-o", "out", "b.pdf"})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}

	if f.command != "batch" {
		t.Fatalf("command = %q, want batch", f.command)
	}
	if want := []string{"a.pdf", "b.pdf"}; !reflect.DeepEqual(f.inputs, want) {
		t.Fatalf("inputs = %v, want %v", f.inputs, want)
	}
	if !f.noWait || f.output != "out" {
		t.Fatalf("noWait = %v output = %q, want true and out", f.noWait, f.output)
	}
}

// TestParseArgsEqualsForm verifies --flag=value parsing.
func TestParseArgsEqualsForm(t *testing.T) {
	f, err := parseArgs([]string{"doc.pdf", "--model=pipeline", "--pages=1-3,5", "--timeout", "60"})
	if err != nil {
		t.Fatalf("parseArgs() error = %v", err)
	}

	if f.model != "pipeline" || f.pages != "1-3,5" || f.timeout != 60 {
		t.Fatalf("model = %q pages = %q timeout = %d", f.model, f.pages, f.timeout)
	}
}

// TestParseArgsUnknownFlag verifies rejection of unknown flags.
func TestParseArgsUnknownFlag(t *testing.T) {
	if _, err := parseArgs([]string{"doc.pdf", "--bogus"}); err == nil {
		t.Fatal("parseArgs() error = nil, want unknown flag error")
	}
}

// TestReorderArgs verifies flag extraction from mixed argument lists.
func TestReorderArgs(t *testing.T) {
	cases := []struct {
		name     string
		args     []string
		wantFlag []string
		wantPos  []string
	}{
		{
			name:     "trailing bool flag",
			args:     []string{"doc.pdf", "--no-wait"},
			wantFlag: []string{"--no-wait"},
			wantPos:  []string{"doc.pdf"},
		},
		{
			name:     "value flag consumes next",
			args:     []string{"-o", "out", "doc.pdf"},
			wantFlag: []string{"-o", "out"},
			wantPos:  []string{"doc.pdf"},
		},
		{
			name:     "equals form stands alone",
			args:     []string{"--model=pipeline", "doc.pdf"},
			wantFlag: []string{"--model=pipeline"},
			wantPos:  []string{"doc.pdf"},
		},
		{
			name:     "bool flag keeps following positional",
			args:     []string{"--ocr", "doc.pdf"},
			wantFlag: []string{"--ocr"},
			wantPos:  []string{"doc.pdf"},
		},
		{
			name:     "bare dash is positional",
			args:     []string{"-"},
			wantFlag: nil,
			wantPos:  []string{"-"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotFlag, gotPos := reorderArgs(tc.args)
			if !reflect.DeepEqual(gotFlag, tc.wantFlag) {
				t.Fatalf("flags = %v, want %v", gotFlag, tc.wantFlag)
			}
			if !reflect.DeepEqual(gotPos, tc.wantPos) {
				t.Fatalf("positionals = %v, want %v", gotPos, tc.wantPos)
			}
		})
	}
}

// TestBuildOptions verifies the flag to option mapping.
func TestBuildOptions(t *testing.T) {
	f := cmdFlags{
		model:     "pipeline",
		ocr:       true,
		noFormula: true,
		lang:      "en",
		pages:     "2-4",
		format:    "docx,html",
	}

	got := buildOptions(f)
	want := domain.Options{
		Model:        "pipeline",
		OCR:          true,
		Formula:      false,
		Table:        true,
		Language:     "en",
		PageRanges:   "2-4",
		ExtraFormats: []string{"docx", "html"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("buildOptions() = %+v, want %+v", got, want)
	}
}
