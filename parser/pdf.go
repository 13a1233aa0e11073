package parser

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFDocument is the pdfcpu-backed Document implementation. All page content
// is decoded up front; the file handle is released before OpenPDF returns on
// every path, including failures.
type PDFDocument struct {
	pages []Page
}

func (d *PDFDocument) Pages() []Page { return d.pages }

// OpenPDF reads a PDF from disk and decodes each page's content stream into
// a Page. An unreadable or undecodable file is the pipeline's one fatal
// error.
func OpenPDF(path string) (*PDFDocument, error) {
	streams, err := extractContentStreams(path)
	if err != nil {
		return nil, err
	}
	doc := &PDFDocument{pages: make([]Page, 0, len(streams))}
	for _, stream := range streams {
		doc.pages = append(doc.pages, newPDFPage(stream))
	}
	return doc, nil
}

// extractContentStreams returns the decompressed content stream bytes for
// every page in document order. Pages without a Contents entry contribute an
// empty stream so page numbering stays aligned with the source document.
func extractContentStreams(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	ctx, err := pdfcpu.Read(f, model.NewDefaultConfiguration())
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	if err := pdfcpu.OptimizeXRefTable(ctx); err != nil {
		return nil, fmt.Errorf("optimize xref: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}

	var result [][]byte
	for i := 1; i <= ctx.PageCount; i++ {
		pageDict, _, _, err := ctx.PageDict(i, false)
		if err != nil {
			return nil, fmt.Errorf("page %d dict: %w", i, err)
		}

		obj, found := pageDict.Find("Contents")
		if !found {
			result = append(result, nil)
			continue
		}

		streamData, err := resolveContentStream(ctx, obj)
		if err != nil {
			return nil, fmt.Errorf("page %d content stream: %w", i, err)
		}
		result = append(result, streamData)
	}

	return result, nil
}

// resolveContentStream dereferences and decompresses a Contents entry, which
// may be a single stream or an array of streams.
func resolveContentStream(ctx *model.Context, obj types.Object) ([]byte, error) {
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return nil, err
	}

	switch v := obj.(type) {
	case types.StreamDict:
		if err := v.Decode(); err != nil {
			return nil, fmt.Errorf("decode stream: %w", err)
		}
		return v.Content, nil

	case types.Array:
		var buf bytes.Buffer
		for _, item := range v {
			data, err := resolveContentStream(ctx, item)
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("unexpected Contents type: %T", obj)
	}
}
