package submit

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mineru-cli/internal/domain"
)

// OutputDirName builds the timestamped result directory name for a
// source: {stem}_MinerU_{YYYYMMDD}_{HHMMSS}.
func OutputDirName(baseName string, now time.Time) string {
	base := filepath.Base(baseName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return fmt.Sprintf("%s_%s_%s", stem, domain.ProductTag, now.Format("20060102_150405"))
}

// URLFileName derives a naming stem from a URL's path, falling back
// to "download" when the path carries no file name.
func URLFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return "download"
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}
