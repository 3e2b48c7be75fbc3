package submit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mineru-cli/internal/api"
	"mineru-cli/internal/classify"
	"mineru-cli/internal/domain"
	"mineru-cli/internal/term"
)

// Client is the remote surface the orchestrator drives.
type Client interface {
	SubmitURLTask(ctx context.Context, rawURL string, opts domain.Options) (string, error)
	SubmitFileTask(ctx context.Context, name string, opts domain.Options) (string, string, error)
	SubmitBatchFiles(ctx context.Context, names []string, opts domain.Options) (string, []string, error)
	SubmitBatchURLs(ctx context.Context, urls []string, opts domain.Options) (string, error)
	UploadFile(ctx context.Context, path, uploadURL string) error
}

// ErrNoValidInputs reports that every batch argument was rejected.
var ErrNoValidInputs = errors.New("no valid inputs provided")

// Submission identifies the remote work created for one invocation.
type Submission struct {
	TaskID     string
	BatchID    string
	OutputDir  string
	SingleItem bool
}

// BatchSubmission is one accepted remote batch within a multi-input
// invocation.
type BatchSubmission struct {
	Label   string
	BatchID string
}

// Orchestrator classifies, validates, submits, and uploads parse
// inputs, reporting each step as it happens.
type Orchestrator struct {
	client     Client
	printer    *term.Printer
	classifier *classify.Classifier
	now        func() time.Time
	getwd      func() (string, error)
	stat       func(string) (os.FileInfo, error)
	pageCount  func(string) (int, error)
}

// New builds an orchestrator with real clock and filesystem deps.
func New(client Client, printer *term.Printer) *Orchestrator {
	return &Orchestrator{
		client:     client,
		printer:    printer,
		classifier: classify.NewClassifier(),
		now:        time.Now,
		getwd:      os.Getwd,
		stat:       os.Stat,
		pageCount:  pdfPages,
	}
}

// NewForTests creates an orchestrator with injectable dependencies.
func NewForTests(
	client Client,
	printer *term.Printer,
	classifier *classify.Classifier,
	now func() time.Time,
	getwd func() (string, error),
	stat func(string) (os.FileInfo, error),
	pageCount func(string) (int, error),
) *Orchestrator {
	return &Orchestrator{
		client:     client,
		printer:    printer,
		classifier: classifier,
		now:        now,
		getwd:      getwd,
		stat:       stat,
		pageCount:  pageCount,
	}
}

// SubmitSingle submits one file or URL argument. The returned
// submission carries exactly one of TaskID or BatchID.
func (o *Orchestrator) SubmitSingle(ctx context.Context, arg string, opts domain.Options, outputOverride string) (Submission, error) {
	input := o.classifier.Classify(arg)

	switch input.Kind {
	case classify.KindURL:
		return o.submitURL(ctx, input.URL, "URL:", opts, outputOverride)
	case classify.KindEmbeddedURL:
		return o.submitURL(ctx, input.URL, "Extracted URL:", opts, outputOverride)
	default:
		return o.submitFile(ctx, input.Path, opts, outputOverride)
	}
}

// submitURL creates a remote URL task. The output location lands in
// the working directory unless overridden.
func (o *Orchestrator) submitURL(ctx context.Context, rawURL, label string, opts domain.Options, outputOverride string) (Submission, error) {
	outputDir := outputOverride
	if outputDir == "" {
		cwd, err := o.getwd()
		if err != nil {
			return Submission{}, err
		}
		outputDir = filepath.Join(cwd, OutputDirName(URLFileName(rawURL), o.now()))
	}

	o.printer.Printf("%s %s\n", o.printer.Paint(label, term.Bold), rawURL)
	o.printer.Printf("%s %s\n", o.printer.Paint("Output:", term.Bold), outputDir)
	o.printer.Println()

	taskID, err := o.client.SubmitURLTask(ctx, rawURL, opts)
	if err != nil {
		if api.IsAuth(err) {
			return Submission{}, err
		}
		o.printer.Errorf("%v", err)
		return Submission{}, err
	}
	o.printer.Printf("%s %s\n", o.printer.Paint("Task ID:", term.Cyan), taskID)

	return Submission{TaskID: taskID, OutputDir: outputDir, SingleItem: true}, nil
}

// submitFile validates a local file, registers it, and uploads it.
// The output location sits beside the source file unless overridden.
func (o *Orchestrator) submitFile(ctx context.Context, inputPath string, opts domain.Options, outputOverride string) (Submission, error) {
	path := inputPath
	if abs, err := filepath.Abs(inputPath); err == nil {
		path = abs
	}

	if err := o.classifier.ValidateFile(path); err != nil {
		o.printer.Errorf("Error: %v", err)
		return Submission{}, err
	}

	outputDir := outputOverride
	if outputDir == "" {
		outputDir = filepath.Join(filepath.Dir(path), OutputDirName(filepath.Base(path), o.now()))
	}

	o.printer.Printf("%s %s\n", o.printer.Paint("File:", term.Bold), path)
	if info, err := o.stat(path); err == nil {
		o.printer.Printf("%s %.1f KB\n", o.printer.Paint("Size:", term.Bold), float64(info.Size())/1024)
	}
	o.describePDF(path, opts)
	o.printer.Printf("%s %s\n", o.printer.Paint("Output:", term.Bold), outputDir)
	o.printer.Println()

	o.printer.Print("Requesting upload URL... ")
	batchID, uploadURL, err := o.client.SubmitFileTask(ctx, filepath.Base(path), opts)
	if err != nil {
		if api.IsAuth(err) {
			return Submission{}, err
		}
		o.printer.Errorf("%v", err)
		return Submission{}, err
	}
	o.printer.Println(o.printer.Paint("OK", term.Green))

	o.printer.Print("Uploading file... ")
	if err := o.client.UploadFile(ctx, path, uploadURL); err != nil {
		o.printer.Println(o.printer.Paint("FAILED", term.Red))
		return Submission{}, err
	}
	o.printer.Println(o.printer.Paint("OK", term.Green))

	o.printer.Printf("%s %s\n", o.printer.Paint("Batch ID:", term.Cyan), batchID)

	return Submission{BatchID: batchID, OutputDir: outputDir, SingleItem: true}, nil
}

// SubmitBatch partitions arguments into URLs and local files, submits
// each group as its own batch, and uploads the files. Invalid inputs
// and failed group submissions are reported and skipped.
func (o *Orchestrator) SubmitBatch(ctx context.Context, args []string, opts domain.Options, outputOverride string) (string, []BatchSubmission, error) {
	var urls []string
	var files []string
	for _, arg := range args {
		if classify.IsURL(arg) {
			urls = append(urls, strings.TrimSpace(arg))
			continue
		}

		path := arg
		if abs, err := filepath.Abs(arg); err == nil {
			path = abs
		}
		if err := o.classifier.ValidateFile(path); err != nil {
			o.printer.Errorf("Error: %v", err)
			continue
		}
		files = append(files, path)
	}

	if len(urls) == 0 && len(files) == 0 {
		o.printer.Errorf("No valid inputs provided.")
		return "", nil, ErrNoValidInputs
	}

	outputDir := outputOverride
	if outputDir == "" {
		name := OutputDirName("batch", o.now())
		if len(files) > 0 {
			outputDir = filepath.Join(filepath.Dir(files[0]), name)
		} else {
			cwd, err := o.getwd()
			if err != nil {
				return "", nil, err
			}
			outputDir = filepath.Join(cwd, name)
		}
	}

	o.printer.Printf("%s %s\n", o.printer.Paint("Output:", term.Bold), outputDir)

	var groups []BatchSubmission

	if len(urls) > 0 {
		o.printer.Printf("\n%s %d URLs...\n", o.printer.Paint("Submitting", term.Bold), len(urls))
		batchID, err := o.client.SubmitBatchURLs(ctx, urls, opts)
		if err != nil {
			if api.IsAuth(err) {
				return "", nil, err
			}
			o.printer.Errorf("%v", err)
		} else {
			o.printer.Printf("%s %s\n", o.printer.Paint("Batch ID:", term.Cyan), batchID)
			groups = append(groups, BatchSubmission{Label: "urls", BatchID: batchID})
		}
	}

	if len(files) > 0 {
		o.printer.Printf("\n%s %d files...\n", o.printer.Paint("Submitting", term.Bold), len(files))
		names := make([]string, 0, len(files))
		for _, path := range files {
			names = append(names, filepath.Base(path))
		}

		batchID, uploadURLs, err := o.client.SubmitBatchFiles(ctx, names, opts)
		if err != nil {
			if api.IsAuth(err) {
				return "", nil, err
			}
			o.printer.Errorf("%v", err)
		} else {
			o.printer.Printf("%s %s\n", o.printer.Paint("Batch ID:", term.Cyan), batchID)
			for i, path := range files {
				if i >= len(uploadURLs) {
					break
				}
				o.printer.Printf("  Uploading %s... ", filepath.Base(path))
				if err := o.client.UploadFile(ctx, path, uploadURLs[i]); err != nil {
					o.printer.Println(o.printer.Paint("FAILED", term.Red))
				} else {
					o.printer.Println(o.printer.Paint("OK", term.Green))
				}
			}
			groups = append(groups, BatchSubmission{Label: "files", BatchID: batchID})
		}
	}

	return outputDir, groups, nil
}

// describePDF prints the local page count for PDFs and warns when the
// requested page range exceeds the document.
func (o *Orchestrator) describePDF(path string, opts domain.Options) {
	if strings.ToLower(filepath.Ext(path)) != ".pdf" {
		return
	}

	pages, err := o.pageCount(path)
	if err != nil || pages <= 0 {
		return
	}
	o.printer.Printf("%s %d\n", o.printer.Paint("Pages:", term.Bold), pages)

	if opts.PageRanges != "" {
		if highest := maxPageInRanges(opts.PageRanges); highest > pages {
			warning := fmt.Sprintf("Warning: page range %s exceeds document (%d pages)", opts.PageRanges, pages)
			o.printer.Println(o.printer.Paint(warning, term.Yellow))
		}
	}
}

// maxPageInRanges finds the highest page referenced by a range spec
// like "1-10,2,4-6". Unparseable pieces are ignored.
func maxPageInRanges(spec string) int {
	highest := 0
	for _, part := range strings.Split(spec, ",") {
		for _, piece := range strings.Split(strings.TrimSpace(part), "-") {
			n, err := strconv.Atoi(strings.TrimSpace(piece))
			if err != nil {
				continue
			}
			if n > highest {
				highest = n
			}
		}
	}
	return highest
}
