package domain

// Model versions accepted by the parsing service.
const (
	ModelVLM      = "vlm"
	ModelPipeline = "pipeline"
)

// DefaultLanguage is the document language assumed when none is given.
const DefaultLanguage = "ch"

// ModelVersions lists the selectable parsing backends in display order.
func ModelVersions() []string {
	return []string{ModelVLM, ModelPipeline}
}

// ValidModel reports whether name is a known parsing backend.
func ValidModel(name string) bool {
	return name == ModelVLM || name == ModelPipeline
}

// Options is the parse configuration fixed at submission time.
type Options struct {
	Model        string
	OCR          bool
	Formula      bool
	Table        bool
	Language     string
	PageRanges   string
	ExtraFormats []string
}

// DefaultOptions returns the service defaults applied when flags are omitted.
func DefaultOptions() Options {
	return Options{
		Model:    ModelVLM,
		Formula:  true,
		Table:    true,
		Language: DefaultLanguage,
	}
}
