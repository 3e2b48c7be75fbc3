package cli

import (
	"flag"
	"io"
	"strings"

	"mineru-cli/internal/domain"
)

// DefaultTimeoutSeconds bounds a wait unless --timeout overrides it.
const DefaultTimeoutSeconds = 1800

// cmdFlags holds every parsed command line option plus the leading
// command word and its positional inputs.
type cmdFlags struct {
	help        bool
	output      string
	model       string
	ocr         bool
	noFormula   bool
	noTable     bool
	lang        string
	pages       string
	format      string
	noWait      bool
	timeout     int
	download    bool
	show        bool
	token       string
	postinstall bool

	command string
	inputs  []string
}

// boolFlagNames are the flags that never consume a following value.
// Everything else takes one, which matters when pulling flags out of
// a mixed argument list.
var boolFlagNames = map[string]bool{
	"h":           true,
	"help":        true,
	"ocr":         true,
	"no-formula":  true,
	"no-table":    true,
	"no-wait":     true,
	"download":    true,
	"show":        true,
	"postinstall": true,
}

// parseArgs accepts flags and positionals in any order, the way the
// command is usually typed (mineru doc.pdf --no-wait).
func parseArgs(args []string) (cmdFlags, error) {
	f := cmdFlags{}

	fs := flag.NewFlagSet("mineru", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&f.help, "h", false, "show help")
	fs.BoolVar(&f.help, "help", false, "show help")
	fs.StringVar(&f.output, "o", "", "output directory")
	fs.StringVar(&f.output, "output", "", "output directory")
	fs.StringVar(&f.model, "m", domain.ModelVLM, "model version")
	fs.StringVar(&f.model, "model", domain.ModelVLM, "model version")
	fs.BoolVar(&f.ocr, "ocr", false, "enable OCR mode")
	fs.BoolVar(&f.noFormula, "no-formula", false, "disable formula recognition")
	fs.BoolVar(&f.noTable, "no-table", false, "disable table recognition")
	fs.StringVar(&f.lang, "l", domain.DefaultLanguage, "document language")
	fs.StringVar(&f.lang, "lang", domain.DefaultLanguage, "document language")
	fs.StringVar(&f.pages, "pages", "", "page range")
	fs.StringVar(&f.format, "format", "", "extra output formats")
	fs.BoolVar(&f.noWait, "no-wait", false, "submit only")
	fs.IntVar(&f.timeout, "timeout", DefaultTimeoutSeconds, "timeout in seconds")
	fs.BoolVar(&f.download, "download", false, "download result")
	fs.BoolVar(&f.show, "show", false, "show current config")
	fs.StringVar(&f.token, "token", "", "set API token")
	fs.BoolVar(&f.postinstall, "postinstall", false, "")

	flagTokens, positionals := reorderArgs(args)
	if err := fs.Parse(flagTokens); err != nil {
		return cmdFlags{}, err
	}

	if len(positionals) > 0 {
		f.command = positionals[0]
		f.inputs = positionals[1:]
	}

	return f, nil
}

// reorderArgs separates flag tokens from positionals. Value flags
// written without '=' carry the next argument with them.
func reorderArgs(args []string) (flagTokens, positionals []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) < 2 || !strings.HasPrefix(arg, "-") {
			positionals = append(positionals, arg)
			continue
		}

		flagTokens = append(flagTokens, arg)

		name := strings.TrimLeft(arg, "-")
		if strings.ContainsRune(name, '=') || boolFlagNames[name] {
			continue
		}
		if i+1 < len(args) {
			flagTokens = append(flagTokens, args[i+1])
			i++
		}
	}

	return flagTokens, positionals
}

// buildOptions converts parsed flags into submission options.
func buildOptions(f cmdFlags) domain.Options {
	opts := domain.Options{
		Model:      f.model,
		OCR:        f.ocr,
		Formula:    !f.noFormula,
		Table:      !f.noTable,
		Language:   f.lang,
		PageRanges: f.pages,
	}
	if f.format != "" {
		opts.ExtraFormats = strings.Split(f.format, ",")
	}

	return opts
}
