package cli

import (
	"strings"

	"mineru-cli/internal/term"
)

// printHelp writes the command reference.
func (a *App) printHelp() {
	bold := func(s string) string { return a.printer.Paint(s, term.Bold) }

	a.printer.Printf(`
%s - MinerU Cloud OCR CLI

%s
  mineru <file_or_url>              Parse a local file or URL
  mineru batch <files...>           Batch parse multiple files/URLs
  mineru status <task_id>           Query task status
  mineru token [new_token]          Update API token
  mineru config                     Configure API token
  mineru diagnose                   Check service status

%s
  - Waits for completion and downloads result automatically
  - Output to source file's directory with format: {name}_MinerU_{timestamp}/
  - Example: document.pdf -> document_MinerU_20260113_101500/

%s
  mineru document.pdf                         # Parse and wait (default)
  mineru document.pdf -o ~/Desktop/           # Specify output directory
  mineru document.pdf --no-wait               # Submit only, don't wait
  mineru https://example.com/doc.pdf          # Parse URL
  mineru "some text https://example.com/doc"  # Extract URL from text
  mineru batch *.pdf                          # Batch parse multiple files
  mineru status abc-123-task-id               # Check status
  mineru status abc-123 --download            # Check and download if done

%s
  -o, --output <dir>     Output directory (default: source file's directory)
  -m, --model <ver>      Model: vlm (default) or pipeline
  --ocr                  Enable OCR mode
  --no-formula           Disable formula recognition
  --no-table             Disable table recognition
  -l, --lang <lang>      Language: ch (default), en, japan, korean, etc.
  --pages <range>        Page range: 1-10, 2,4-6
  --format <fmt>         Extra formats: docx,html,latex
  --no-wait              Don't wait for completion (submit only)
  --timeout <sec>        Timeout in seconds (default: 1800)

%s
  Token from: MINERU_API_TOKEN or MINERU_API_KEY env, or config file
  Config file: ~/.config/mineru/config.json
  Get token at: https://mineru.net

`,
		bold("mineru"),
		bold("Usage:"),
		bold("Default Behavior:"),
		bold("Examples:"),
		bold("Options:"),
		bold("Configuration:"),
	)
}

// cmdPostinstall prints the greeting shown right after installation.
func (a *App) cmdPostinstall() int {
	banner := strings.Repeat("=", 63)

	a.printer.Println(a.printer.Paint("\n"+banner, term.Green))
	a.printer.Println(a.printer.Paint("  MinerU CLI Installed Successfully!", term.Green+term.Bold))
	a.printer.Println(a.printer.Paint(banner, term.Green))
	a.printer.Println("\nTo get started, run:")
	a.printer.Printf("  %s\n", a.printer.Paint("mineru config", term.Cyan))
	a.printer.Println("\nOr simply run 'mineru <file>' and follow the prompts.")
	a.printer.Println()

	return exitOK
}
