package source

import (
	"fmt"
	"image"
	"path/filepath"

	"github.com/gen2brain/go-fitz"
)

// pdfDPI keeps rendered pages well above the poster height so Normalize
// downsamples.
const pdfDPI = 72

// PDFSource treats every page of a PDF as one poster.
type PDFSource struct {
	doc  *fitz.Document
	path string
}

func NewPDFSource(path string) (*PDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	return &PDFSource{doc: doc, path: path}, nil
}

func (f *PDFSource) Count() int {
	return f.doc.NumPage()
}

func (f *PDFSource) Name(index int) string {
	return fmt.Sprintf("%s#%d", filepath.Base(f.path), index+1)
}

// Decode opens a private document handle so pages can render concurrently.
func (f *PDFSource) Decode(index int) (image.Image, error) {
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, pdfDPI)
}

func (f *PDFSource) Close() error {
	return f.doc.Close()
}
