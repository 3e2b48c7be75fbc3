package submit

import "github.com/ledongthuc/pdf"

// pdfPages counts pages in a local PDF document.
func pdfPages(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return r.NumPage(), nil
}
