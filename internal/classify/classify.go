package classify

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Kind identifies how a user-supplied argument will be submitted.
type Kind string

const (
	KindURL         Kind = "url"
	KindEmbeddedURL Kind = "embedded-url"
	KindLocalPath   Kind = "local-path"
)

// Input is one classified command argument.
type Input struct {
	Raw  string
	Kind Kind
	URL  string
	Path string
}

// Classifier decides how arguments are submitted.
type Classifier struct {
	stat func(string) (os.FileInfo, error)
}

// NewClassifier builds a classifier using real filesystem checks.
func NewClassifier() *Classifier {
	return &Classifier{stat: os.Stat}
}

// NewClassifierForTests creates a classifier with an injectable stat.
func NewClassifierForTests(stat func(string) (os.FileInfo, error)) *Classifier {
	return &Classifier{stat: stat}
}

var (
	urlPattern    = regexp.MustCompile("https?://[^\\s<>\"'{}|\\\\^`\\[\\]]+")
	domainPattern = regexp.MustCompile(`(?:www\.)?[a-zA-Z0-9][-a-zA-Z0-9]*\.[a-zA-Z]{2,}[^\s]*`)
)

// IsURL reports whether the whole trimmed string is an absolute
// http(s) URL.
func IsURL(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.ContainsAny(trimmed, " \t\n") {
		return false
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ExtractURL finds the first URL mentioned inside free text. Bare
// domain mentions get an https prefix.
func ExtractURL(text string) string {
	if match := urlPattern.FindString(text); match != "" {
		return match
	}
	if match := domainPattern.FindString(text); match != "" {
		return "https://" + match
	}
	return ""
}

// Classify decides whether an argument is a direct URL, free text with
// an embedded URL, or a local file path. Embedded extraction only
// applies when no file exists at the literal argument, so file names
// that merely look like domains stay local.
func (c *Classifier) Classify(raw string) Input {
	if IsURL(raw) {
		return Input{Raw: raw, Kind: KindURL, URL: strings.TrimSpace(raw)}
	}

	if extracted := ExtractURL(raw); extracted != "" {
		if _, err := c.stat(raw); err != nil {
			return Input{Raw: raw, Kind: KindEmbeddedURL, URL: extracted}
		}
	}

	return Input{Raw: raw, Kind: KindLocalPath, Path: raw}
}

// SupportedFormats lists accepted document extensions in display order.
func SupportedFormats() []string {
	return []string{".pdf", ".doc", ".docx", ".ppt", ".pptx", ".png", ".jpg", ".jpeg", ".html"}
}

func supportedExt(ext string) bool {
	switch ext {
	case ".pdf", ".doc", ".docx", ".ppt", ".pptx", ".png", ".jpg", ".jpeg", ".html":
		return true
	default:
		return false
	}
}

// ValidateFile checks a local path exists and carries a supported
// extension. The returned message is shown to the user verbatim.
func (c *Classifier) ValidateFile(path string) error {
	if _, err := c.stat(path); err != nil {
		return fmt.Errorf("File not found: %s", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExt(ext) {
		return fmt.Errorf("Unsupported format '%s'. Supported: %s", ext, strings.Join(SupportedFormats(), ", "))
	}
	return nil
}
