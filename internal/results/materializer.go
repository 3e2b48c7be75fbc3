package results

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"mineru-cli/internal/term"
)

// Materializer downloads result archives and unpacks them into the
// output location.
type Materializer struct {
	printer  *term.Printer
	hc       *http.Client
	tempName func() string
}

// NewMaterializer builds a materializer with real HTTP and unique
// archive naming.
func NewMaterializer(printer *term.Printer) *Materializer {
	return &Materializer{
		printer: printer,
		hc:      &http.Client{},
		tempName: func() string {
			return "download-" + uuid.NewString() + ".zip"
		},
	}
}

// NewMaterializerForTests injects the HTTP client and temp naming.
func NewMaterializerForTests(printer *term.Printer, hc *http.Client, tempName func() string) *Materializer {
	return &Materializer{printer: printer, hc: hc, tempName: tempName}
}

// FetchInto downloads one result archive into outputDir and unpacks
// it: directly into outputDir in flat mode, under the file's stem
// otherwise. The output directory is created here, on first write.
// The archive is removed after a clean unpack and retained for
// inspection when unpacking fails.
func (m *Materializer) FetchInto(ctx context.Context, resultURL, outputDir, baseName string, flat bool) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	zipPath := filepath.Join(outputDir, m.tempName())

	if flat {
		m.printer.Print("Downloading... ")
	} else {
		m.printer.Printf("Downloading %s... ", baseName)
	}
	if err := m.download(ctx, resultURL, zipPath); err != nil {
		m.printer.Errorf("Download failed: %v", err)
		m.printer.Println(m.printer.Paint("FAILED", term.Red))
		return err
	}
	m.printer.Println(m.printer.Paint("OK", term.Green))

	extractDir := outputDir
	if !flat {
		extractDir = filepath.Join(outputDir, stem(baseName))
		if err := os.MkdirAll(extractDir, 0o755); err != nil {
			return err
		}
	}

	m.printer.Print("Extracting... ")
	if err := extractZip(zipPath, extractDir); err != nil {
		m.printer.Errorf("Extraction failed: %v", err)
		m.printer.Printf("  Zip saved: %s\n", zipPath)
		return err
	}
	m.printer.Println(m.printer.Paint("OK", term.Green))

	if err := os.Remove(zipPath); err != nil {
		return err
	}
	if !flat {
		m.printer.Printf("  Output: %s\n", extractDir)
	}
	return nil
}

// download streams the archive to disk, failing on non-2xx status.
func (m *Materializer) download(ctx context.Context, sourceURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := m.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected HTTP status: %s", resp.Status)
	}

	file, err := os.OpenFile(destPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	_, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("write archive: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(destPath)
		return fmt.Errorf("close archive: %w", closeErr)
	}
	return nil
}

// extractZip unpacks an archive, rejecting entries that would escape
// the destination directory.
func extractZip(zipPath, extractDir string) error {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		cleanName := filepath.Clean(file.Name)
		if cleanName == "." || cleanName == "" {
			continue
		}
		targetPath := filepath.Join(extractDir, cleanName)
		if !isWithinBaseDir(extractDir, targetPath) {
			return fmt.Errorf("zip contains invalid path: %s", file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return err
		}

		src, err := file.Open()
		if err != nil {
			return err
		}

		dst, err := os.OpenFile(targetPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, file.Mode())
		if err != nil {
			_ = src.Close()
			return err
		}

		_, copyErr := io.Copy(dst, src)
		srcCloseErr := src.Close()
		dstCloseErr := dst.Close()
		if copyErr != nil {
			return copyErr
		}
		if srcCloseErr != nil {
			return srcCloseErr
		}
		if dstCloseErr != nil {
			return dstCloseErr
		}
	}
	return nil
}

func isWithinBaseDir(baseDir string, targetPath string) bool {
	baseClean := filepath.Clean(baseDir)
	targetClean := filepath.Clean(targetPath)
	relative, err := filepath.Rel(baseClean, targetClean)
	if err != nil {
		return false
	}
	return relative == "." || (!strings.HasPrefix(relative, "..") && relative != "")
}

// stem strips the extension from a result file name.
func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
