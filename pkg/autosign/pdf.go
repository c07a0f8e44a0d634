package autosign

import (
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var ErrEmptyPdf = errors.New("pdf has no pages")

func newPdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// InspectPdf validates the document and returns its page count. rs is
// rewound to the start before returning so the caller can upload it.
func InspectPdf(rs io.ReadSeeker) (int, error) {
	if err := api.Validate(rs, newPdfConfig()); err != nil {
		return 0, fmt.Errorf("invalid pdf: %w", err)
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	pageCount, err := GetPageCount(rs)
	if err != nil {
		return 0, err
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	return pageCount, nil
}

func GetPageCount(rs io.ReadSeeker) (int, error) {
	pageCount, err := api.PageCount(rs, newPdfConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to read page count: %w", err)
	}
	if pageCount < 1 {
		return 0, ErrEmptyPdf
	}
	return pageCount, nil
}
