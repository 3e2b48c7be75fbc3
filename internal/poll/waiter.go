package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mineru-cli/internal/api"
	"mineru-cli/internal/domain"
	"mineru-cli/internal/term"
)

// DefaultInterval is the delay between status polls.
const DefaultInterval = 5 * time.Second

// ErrTimeout reports that a wait gave up before the work finished.
var ErrTimeout = errors.New("timed out waiting for completion")

// StatusClient is the polling slice of the API client.
type StatusClient interface {
	TaskStatus(ctx context.Context, taskID string) (domain.Job, error)
	BatchStatus(ctx context.Context, batchID string) (domain.Batch, error)
}

// Fetcher materializes a finished result archive on disk.
type Fetcher interface {
	FetchInto(ctx context.Context, resultURL, outputDir, baseName string, flat bool) error
}

// Waiter polls the service until submitted work finishes, keeping a
// single status line updated, and downloads results on completion.
type Waiter struct {
	client   StatusClient
	fetcher  Fetcher
	printer  *term.Printer
	interval time.Duration
	sleep    func(time.Duration)
	now      func() time.Time
}

// NewWaiter builds a waiter with the standard poll interval.
func NewWaiter(client StatusClient, fetcher Fetcher, printer *term.Printer) *Waiter {
	return &Waiter{
		client:   client,
		fetcher:  fetcher,
		printer:  printer,
		interval: DefaultInterval,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// WaitTask polls one task until it reaches a terminal state, then
// unpacks the result directly into outputDir.
func (w *Waiter) WaitTask(ctx context.Context, taskID, outputDir string, timeout time.Duration) error {
	w.printer.Println("\nWaiting for completion...")

	start := w.now()
	for tick := 0; ; tick++ {
		elapsed := w.now().Sub(start)
		if elapsed > timeout {
			w.printer.Errorf("\nTimeout after %s", term.FormatDuration(timeout))
			return ErrTimeout
		}

		job, err := w.client.TaskStatus(ctx, taskID)
		if err != nil {
			if api.IsAuth(err) {
				return err
			}
			w.printer.Errorf("\n%v", err)
			w.sleep(w.interval)
			continue
		}

		w.printer.Status(w.renderTask(job, tick, elapsed))

		switch job.State {
		case domain.JobStateDone:
			w.printer.Println()
			if job.ResultURL != "" {
				if err := w.fetcher.FetchInto(ctx, job.ResultURL, outputDir, "", true); err != nil {
					return err
				}
			}
			w.printer.Println(w.printer.Paint("\nCompleted in "+term.FormatDuration(elapsed), term.Green))
			return nil
		case domain.JobStateFailed:
			w.printer.Println()
			reason := job.ErrMsg
			if reason == "" {
				reason = "Unknown error"
			}
			w.printer.Errorf("\nFailed: %s", reason)
			return fmt.Errorf("task failed: %s", reason)
		}

		w.sleep(w.interval)
	}
}

// WaitBatch polls a batch until every member reaches a terminal state,
// downloads each finished result, and reports failed members. A batch
// with exactly one member unpacks directly into outputDir.
func (w *Waiter) WaitBatch(ctx context.Context, batchID, outputDir string, timeout time.Duration) error {
	w.printer.Println("\nWaiting for completion...")

	start := w.now()
	for tick := 0; ; tick++ {
		elapsed := w.now().Sub(start)
		if elapsed > timeout {
			w.printer.Errorf("\nTimeout after %s", term.FormatDuration(timeout))
			return ErrTimeout
		}

		batch, err := w.client.BatchStatus(ctx, batchID)
		if err != nil {
			if api.IsAuth(err) {
				return err
			}
			w.printer.Errorf("\n%v", err)
			w.sleep(w.interval)
			continue
		}

		w.printer.Status(w.renderBatch(batch, tick, elapsed))

		if batch.Finished() {
			w.printer.Println()
			return w.finishBatch(ctx, batch, outputDir, elapsed)
		}

		w.sleep(w.interval)
	}
}

// renderTask formats the in-place status line for a single task.
func (w *Waiter) renderTask(job domain.Job, tick int, elapsed time.Duration) string {
	label, labelColor := term.StateLabel(job.RawState)
	spin := term.Spinner(tick)
	suffix := fmt.Sprintf("(%ds)", int(elapsed.Seconds()))

	if job.State == domain.JobStateRunning && job.Progress.TotalPages > 0 {
		p := job.Progress
		return fmt.Sprintf("%s [%s] %d%% (%d/%d pages) %s %s",
			w.printer.Paint(label, labelColor),
			term.ProgressBar(p.ExtractedPages, p.TotalPages),
			term.Percent(p.ExtractedPages, p.TotalPages),
			p.ExtractedPages, p.TotalPages, spin, suffix)
	}

	return fmt.Sprintf("%s %s %s", w.printer.Paint(label, labelColor), spin, suffix)
}

// renderBatch formats the in-place progress line for a batch. Page
// detail comes from the first member still extracting.
func (w *Waiter) renderBatch(batch domain.Batch, tick int, elapsed time.Duration) string {
	doneCount := batch.CountByState(domain.JobStateDone)
	failedCount := batch.CountByState(domain.JobStateFailed)
	spin := term.Spinner(tick)
	suffix := fmt.Sprintf("(%ds)", int(elapsed.Seconds()))

	if running, ok := batch.FirstRunning(); ok && running.Progress.TotalPages > 0 {
		p := running.Progress
		return fmt.Sprintf("Processing: %d/%d pages (%d/%d files done) %s %s",
			p.ExtractedPages, p.TotalPages, doneCount, len(batch.Jobs), spin, suffix)
	}

	return fmt.Sprintf("Progress: %d/%d done, %d failed %s %s",
		doneCount, len(batch.Jobs), failedCount, spin, suffix)
}

// finishBatch downloads completed members, reports failed ones, and
// prints the closing summary.
func (w *Waiter) finishBatch(ctx context.Context, batch domain.Batch, outputDir string, elapsed time.Duration) error {
	flat := len(batch.Jobs) == 1

	var fetchErr error
	for _, job := range batch.Jobs {
		switch {
		case job.State == domain.JobStateDone && job.ResultURL != "":
			name := job.FileName
			if name == "" {
				name = "result"
			}
			if flat {
				name = ""
			}
			if err := w.fetcher.FetchInto(ctx, job.ResultURL, outputDir, name, flat); err != nil && fetchErr == nil {
				fetchErr = err
			}
		case job.State == domain.JobStateFailed:
			name := job.FileName
			if name == "" {
				name = "Unknown"
			}
			reason := job.ErrMsg
			if reason == "" {
				reason = "Failed"
			}
			w.printer.Errorf("  %s: %s", name, reason)
		}
	}

	w.printer.Println(w.printer.Paint("\nCompleted in "+term.FormatDuration(elapsed), term.Green))
	w.printer.Printf("%s %s\n", w.printer.Paint("Output:", term.Bold), outputDir)

	if failedCount := batch.CountByState(domain.JobStateFailed); failedCount > 0 {
		return fmt.Errorf("%d of %d files failed", failedCount, len(batch.Jobs))
	}

	return fetchErr
}

// NewWaiterForTests creates a waiter with injectable timing.
func NewWaiterForTests(
	client StatusClient,
	fetcher Fetcher,
	printer *term.Printer,
	interval time.Duration,
	sleep func(time.Duration),
	now func() time.Time,
) *Waiter {
	return &Waiter{
		client:   client,
		fetcher:  fetcher,
		printer:  printer,
		interval: interval,
		sleep:    sleep,
		now:      now,
	}
}
