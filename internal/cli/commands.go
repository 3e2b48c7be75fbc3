package cli

import (
	"context"
	"strings"
	"time"

	"mineru-cli/internal/api"
	"mineru-cli/internal/config"
	"mineru-cli/internal/domain"
	"mineru-cli/internal/term"
)

// cmdParse submits a single file or URL and by default waits for the
// result to land on disk.
func (a *App) cmdParse(ctx context.Context, flags cmdFlags) error {
	if !domain.ValidModel(flags.model) {
		a.printer.Errorf("Error: Invalid model '%s' (choose from: %s)", flags.model, strings.Join(domain.ModelVersions(), ", "))
		return errInvalidModel
	}

	token, err := a.ensureToken()
	if err != nil {
		return err
	}
	client, err := a.newClient(token)
	if err != nil {
		a.printer.Errorf("Error: %v", err)
		return err
	}

	sub, err := a.newSubmitter(client, a.printer).SubmitSingle(ctx, flags.command, buildOptions(flags), flags.output)
	if err != nil {
		return err
	}

	id := sub.TaskID
	if id == "" {
		id = sub.BatchID
	}

	if flags.noWait {
		a.printer.Printf("\nUse '%s' to check progress.\n", a.printer.Paint("mineru status "+id, term.Cyan))
		return nil
	}

	w := a.newWaiter(client, a.newFetcher(a.printer), a.printer)
	timeout := time.Duration(flags.timeout) * time.Second
	if sub.TaskID != "" {
		return w.WaitTask(ctx, sub.TaskID, sub.OutputDir, timeout)
	}

	return w.WaitBatch(ctx, sub.BatchID, sub.OutputDir, timeout)
}

// cmdBatch submits multiple files and URLs as grouped batches and by
// default waits for each group.
func (a *App) cmdBatch(ctx context.Context, flags cmdFlags) error {
	if !domain.ValidModel(flags.model) {
		a.printer.Errorf("Error: Invalid model '%s' (choose from: %s)", flags.model, strings.Join(domain.ModelVersions(), ", "))
		return errInvalidModel
	}

	token, err := a.ensureToken()
	if err != nil {
		return err
	}
	client, err := a.newClient(token)
	if err != nil {
		a.printer.Errorf("Error: %v", err)
		return err
	}

	outputDir, groups, err := a.newSubmitter(client, a.printer).SubmitBatch(ctx, flags.inputs, buildOptions(flags), flags.output)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return errNoBatches
	}

	if flags.noWait {
		a.printer.Println("\nBatch IDs:")
		for _, group := range groups {
			a.printer.Printf("  %s: %s\n", group.Label, group.BatchID)
		}
		return nil
	}

	w := a.newWaiter(client, a.newFetcher(a.printer), a.printer)
	timeout := time.Duration(flags.timeout) * time.Second

	var waitErr error
	for _, group := range groups {
		a.printer.Printf("\nWaiting for %s batch %s...\n", group.Label, group.BatchID)
		if err := w.WaitBatch(ctx, group.BatchID, outputDir, timeout); err != nil {
			if api.IsAuth(err) {
				return err
			}
			if waitErr == nil {
				waitErr = err
			}
		}
	}

	return waitErr
}

// cmdStatus prints the state of a task or batch ID, optionally
// downloading finished results. Batch and task IDs share one shape,
// so the batch endpoint is tried first.
func (a *App) cmdStatus(ctx context.Context, flags cmdFlags) error {
	token, err := a.ensureToken()
	if err != nil {
		return err
	}
	client, err := a.newClient(token)
	if err != nil {
		a.printer.Errorf("Error: %v", err)
		return err
	}

	id := flags.inputs[0]

	outputDir := flags.output
	if outputDir == "" {
		if outputDir, err = a.resolver.OutputDir(); err != nil {
			outputDir = config.DefaultOutputDir
		}
	}

	batch, batchErr := client.BatchStatus(ctx, id)
	if batchErr == nil {
		a.printBatchStatus(batch)
		if flags.download {
			return a.downloadBatch(ctx, batch, outputDir)
		}
		return nil
	}
	if api.IsAuth(batchErr) {
		return batchErr
	}

	job, taskErr := client.TaskStatus(ctx, id)
	if taskErr != nil {
		if api.IsAuth(taskErr) {
			return taskErr
		}
		a.printer.Errorf("%v", taskErr)
		return taskErr
	}

	a.printTaskStatus(job)
	if flags.download && job.State == domain.JobStateDone && job.ResultURL != "" {
		return a.newFetcher(a.printer).FetchInto(ctx, job.ResultURL, outputDir, "", true)
	}

	return nil
}

// downloadBatch fetches every member's archive once the whole batch
// is done. Unfinished batches download nothing.
func (a *App) downloadBatch(ctx context.Context, batch domain.Batch, outputDir string) error {
	for _, job := range batch.Jobs {
		if job.State != domain.JobStateDone {
			return nil
		}
	}

	flat := len(batch.Jobs) == 1
	fetcher := a.newFetcher(a.printer)

	var fetchErr error
	for _, job := range batch.Jobs {
		if job.ResultURL == "" {
			continue
		}
		name := job.FileName
		if name == "" {
			name = "result"
		}
		if flat {
			name = ""
		}
		if err := fetcher.FetchInto(ctx, job.ResultURL, outputDir, name, flat); err != nil && fetchErr == nil {
			fetchErr = err
		}
	}

	return fetchErr
}

// printTaskStatus renders one task's state block.
func (a *App) printTaskStatus(job domain.Job) {
	label, labelColor := term.StateLabel(job.RawState)

	a.printer.Printf("Task ID: %s\n", job.ID)
	a.printer.Printf("Status:  %s\n", a.printer.Paint(label, labelColor))

	switch job.State {
	case domain.JobStateRunning:
		if job.Progress.TotalPages > 0 {
			a.printer.Printf("Progress: %d/%d pages\n", job.Progress.ExtractedPages, job.Progress.TotalPages)
		}
		if job.Progress.StartTime != "" {
			a.printer.Printf("Started:  %s\n", job.Progress.StartTime)
		}
	case domain.JobStateDone:
		if job.ResultURL != "" {
			a.printer.Printf("Download: %s\n", job.ResultURL)
		}
	case domain.JobStateFailed:
		reason := job.ErrMsg
		if reason == "" {
			reason = "Unknown error"
		}
		a.printer.Printf("Error:   %s\n", reason)
	}
}

// printBatchStatus renders the member list of a batch.
func (a *App) printBatchStatus(batch domain.Batch) {
	a.printer.Printf("Batch ID: %s\n", batch.ID)
	a.printer.Printf("Files:    %d\n", len(batch.Jobs))
	a.printer.Println()

	for _, job := range batch.Jobs {
		name := job.FileName
		if name == "" {
			name = "Unknown"
		}
		label, labelColor := term.StateLabel(job.RawState)
		a.printer.Printf("  %s: %s\n", name, a.printer.Paint(label, labelColor))

		switch job.State {
		case domain.JobStateRunning:
			if job.Progress.TotalPages > 0 {
				a.printer.Printf("    Progress: %d/%d pages\n", job.Progress.ExtractedPages, job.Progress.TotalPages)
			}
		case domain.JobStateFailed:
			reason := job.ErrMsg
			if reason == "" {
				reason = "Unknown"
			}
			a.printer.Printf("    Error: %s\n", reason)
		}
	}
}

// cmdToken saves a token given inline or runs the interactive prompt.
func (a *App) cmdToken(flags cmdFlags) int {
	if len(flags.inputs) > 0 {
		if err := a.resolver.SaveToken(flags.inputs[0]); err != nil {
			a.printer.Errorf("Error: %v", err)
			return exitFailure
		}
		a.printer.Println(a.printer.Paint("Token updated successfully.", term.Green))
		return exitOK
	}

	a.promptForToken()
	return exitOK
}

// cmdConfig shows or updates the persisted configuration.
func (a *App) cmdConfig(flags cmdFlags) int {
	if flags.show {
		token, err := a.resolver.Token()
		if err == nil && token != "" {
			a.printer.Printf("Token: %s\n", maskToken(token))
			a.printer.Printf("Config file: %s\n", a.store.Path())
		} else {
			a.printer.Println("No token configured.")
		}
		return exitOK
	}

	if flags.token != "" {
		if err := a.resolver.SaveToken(flags.token); err != nil {
			a.printer.Errorf("Error: %v", err)
			return exitFailure
		}
		a.printer.Println(a.printer.Paint("Token saved successfully.", term.Green))
		return exitOK
	}

	a.promptForToken()
	return exitOK
}

// cmdDiagnose renders the environment and connectivity report.
func (a *App) cmdDiagnose(ctx context.Context) int {
	a.printer.Println(a.printer.Paint("MinerU Service Diagnostics", term.Bold))
	a.printer.Println()

	report := a.runChecks(ctx)

	lastSection := ""
	for _, item := range report.Items {
		if item.Section != lastSection {
			if lastSection != "" {
				a.printer.Println()
			}
			a.printer.Printf("%s:\n", item.Section)
			lastSection = item.Section
		}

		if item.Status == domain.DiagnosticStatusInfo {
			a.printer.Printf("   %s: %s\n", item.Name, item.Message)
		} else {
			a.printer.Printf("   %s %s\n", a.printer.Paint(item.Name+":", statusColor(item.Status)), item.Message)
		}
		if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
			a.printer.Printf("   %s\n", a.printer.Paint(item.Hint, term.Dim))
		}
	}

	return exitOK
}

// statusColor maps a check outcome to its display color.
func statusColor(status domain.DiagnosticStatus) term.Color {
	switch status {
	case domain.DiagnosticStatusPass:
		return term.Green
	case domain.DiagnosticStatusWarn:
		return term.Yellow
	default:
		return term.Red
	}
}
