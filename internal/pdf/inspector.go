package pdf

import (
	"fmt"

	"github.com/gen2brain/go-fitz" // Lightweight PDF renderer
)

// Inspector extracts lightweight structural facts from PDF payloads. The
// lake projection uses it to annotate document blobs for downstream OCR.
type Inspector interface {
	PageCount(pdfData []byte) (int, error)
}

type FitzInspector struct{}

func NewFitzInspector() *FitzInspector {
	return &FitzInspector{}
}

// PageCount opens the document in memory and returns its page count without
// rendering any page.
func (FitzInspector) PageCount(pdfData []byte) (int, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	return doc.NumPage(), nil
}
