package analyzer

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// checkPDF verifies that downloaded bytes are a readable PDF before they are
// submitted to the model, and reports the page count. A corrupt body fails
// the analysis here instead of producing a garbage model response.
func checkPDF(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("document is not a readable PDF: %w", err)
	}

	if err := api.ValidateContext(pdfCtx); err != nil {
		return 0, fmt.Errorf("document failed PDF validation: %w", err)
	}

	return pdfCtx.PageCount, nil
}
