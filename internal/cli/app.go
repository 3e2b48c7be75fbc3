package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mineru-cli/internal/api"
	"mineru-cli/internal/config"
	"mineru-cli/internal/diagnostics"
	"mineru-cli/internal/domain"
	"mineru-cli/internal/poll"
	"mineru-cli/internal/results"
	"mineru-cli/internal/submit"
	"mineru-cli/internal/term"
)

// Exit codes returned by Run.
const (
	exitOK      = 0
	exitFailure = 1
)

var (
	errNoToken      = errors.New("no API token configured")
	errInvalidModel = errors.New("invalid model version")
	errNoBatches    = errors.New("every batch submission failed")
)

// Client is the full remote surface the commands drive.
type Client interface {
	submit.Client
	poll.StatusClient
}

// submitter turns command line inputs into remote work.
type submitter interface {
	SubmitSingle(ctx context.Context, arg string, opts domain.Options, outputOverride string) (submit.Submission, error)
	SubmitBatch(ctx context.Context, args []string, opts domain.Options, outputOverride string) (string, []submit.BatchSubmission, error)
}

// waiter follows remote work to completion.
type waiter interface {
	WaitTask(ctx context.Context, taskID, outputDir string, timeout time.Duration) error
	WaitBatch(ctx context.Context, batchID, outputDir string, timeout time.Duration) error
}

// App wires configuration, terminal IO, and client factories behind
// the command surface. Factories take the token at call time because
// a command can replace the token mid-run.
type App struct {
	printer  *term.Printer
	store    config.Store
	resolver config.Resolver

	newClient    func(token string) (Client, error)
	newSubmitter func(client Client, printer *term.Printer) submitter
	newWaiter    func(client Client, fetcher poll.Fetcher, printer *term.Printer) waiter
	newFetcher   func(printer *term.Printer) poll.Fetcher
	runChecks    func(ctx context.Context) domain.DiagnosticReport
}

// New builds the application over the user's config file and stdout.
func New() (*App, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	store := config.NewJSONStore(path)
	resolver := config.NewResolver(store)
	checker := diagnostics.NewChecker(resolver)

	return &App{
		printer:  term.NewPrinter(),
		store:    store,
		resolver: resolver,
		newClient: func(token string) (Client, error) {
			return api.NewClient(api.DefaultBaseURL, token)
		},
		newSubmitter: func(client Client, printer *term.Printer) submitter {
			return submit.New(client, printer)
		},
		newWaiter: func(client Client, fetcher poll.Fetcher, printer *term.Printer) waiter {
			return poll.NewWaiter(client, fetcher, printer)
		},
		newFetcher: func(printer *term.Printer) poll.Fetcher {
			return results.NewMaterializer(printer)
		},
		runChecks: checker.Run,
	}, nil
}

// Run executes one invocation and returns the process exit code.
func (a *App) Run(args []string) int {
	flags, err := parseArgs(args)
	if err != nil {
		a.printer.Errorf("Error: %v", err)
		return exitFailure
	}

	if flags.postinstall {
		return a.cmdPostinstall()
	}
	if flags.help || flags.command == "" {
		a.printHelp()
		return exitOK
	}

	ctx := context.Background()

	switch strings.ToLower(flags.command) {
	case "config":
		return a.cmdConfig(flags)
	case "token":
		return a.cmdToken(flags)
	case "diagnose":
		return a.cmdDiagnose(ctx)
	case "status":
		if len(flags.inputs) == 0 {
			a.printer.Errorf("Error: Please provide task/batch ID")
			return exitFailure
		}
		return a.runWithAuthRetry(func() error { return a.cmdStatus(ctx, flags) })
	case "batch":
		if len(flags.inputs) == 0 {
			a.printer.Errorf("Error: Please provide files or URLs to parse")
			return exitFailure
		}
		return a.runWithAuthRetry(func() error { return a.cmdBatch(ctx, flags) })
	default:
		return a.runWithAuthRetry(func() error { return a.cmdParse(ctx, flags) })
	}
}

// runWithAuthRetry reruns the command from the start after the user
// replaces a rejected token. Only auth failures are reported here;
// every other failure already printed where it happened.
func (a *App) runWithAuthRetry(fn func() error) int {
	for {
		err := fn()
		if err == nil {
			return exitOK
		}
		if !api.IsAuth(err) {
			return exitFailure
		}

		a.printer.Errorf("\nAuthorization Error: %v", err)
		a.printer.Println("Your token may have expired or is invalid.")

		prompt := fmt.Sprintf("Do you want to update your token now? [%s/n]: ", a.printer.Paint("Y", term.Bold))
		if a.printer.Confirm(prompt) {
			if token, err := a.promptForToken(); err == nil && token != "" {
				a.printer.Println("Token updated. Retrying...")
				continue
			}
		}

		a.printer.Println("Aborted.")
		return exitFailure
	}
}

// ensureToken returns a usable token, prompting when none is
// configured anywhere.
func (a *App) ensureToken() (string, error) {
	token, err := a.resolver.Token()
	if err != nil {
		a.printer.Errorf("Error: %v", err)
		return "", err
	}
	if token != "" {
		return token, nil
	}

	a.printer.Println(a.printer.Paint("No API token found.", term.Yellow))
	token, err = a.promptForToken()
	if err != nil || token == "" {
		return "", errNoToken
	}

	return token, nil
}

// promptForToken runs the interactive token setup and persists the
// entered value. An empty return with nil error means the user gave
// nothing.
func (a *App) promptForToken() (string, error) {
	a.printer.Println(a.printer.Paint("MinerU API Configuration", term.Bold))
	a.printer.Println()
	a.printer.Printf("Please enter your API token from: %s\n", a.printer.Paint("https://mineru.net", term.Blue))
	a.printer.Println()

	token, err := a.printer.Prompt("Enter API token: ")
	if err != nil {
		a.printer.Println()
		return "", err
	}
	if token == "" {
		a.printer.Println("No token provided.")
		return "", nil
	}

	if err := a.resolver.SaveToken(token); err != nil {
		a.printer.Errorf("Error: %v", err)
		return "", err
	}
	a.printer.Println(a.printer.Paint("\nToken saved successfully.", term.Green))
	a.printer.Printf("Config file: %s\n", a.store.Path())

	return token, nil
}

// maskToken hides the middle of long tokens for display.
func maskToken(token string) string {
	if len(token) > 25 {
		return token[:10] + "..." + token[len(token)-10:]
	}
	return token
}
