package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/shelfsearch/shelf-search/internal/pkg/errors"
)

// question-column header names, checked case-insensitively.
var questionHeaders = []string{"question", "query", "text", "request"}

// LoadXLSX reads an ad-hoc question list from a spreadsheet: one query per
// row, taken from the first column whose header looks like a question column.
// When no header matches, the first column is used, and its header row
// becomes the first query if it reads like a question. These queries carry no
// ground-truth constraints or expectations.
func LoadXLSX(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, fmt.Sprintf("cannot open spreadsheet %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ValidationError("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(errors.CodeValidation, "cannot read spreadsheet rows", err)
	}
	if len(rows) == 0 {
		return nil, errors.ValidationError("spreadsheet is empty")
	}

	col, headerIsQuestion := questionColumn(rows[0])

	var ds Dataset
	appendQuery := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		ds.Queries = append(ds.Queries, Query{
			ID:   fmt.Sprintf("xlsx-%03d", len(ds.Queries)+1),
			Text: text,
		})
	}

	if headerIsQuestion {
		appendQuery(cell(rows[0], col))
	}
	for _, row := range rows[1:] {
		appendQuery(cell(row, col))
	}

	if len(ds.Queries) == 0 {
		return nil, errors.ValidationError("spreadsheet contains no questions")
	}
	return &ds, nil
}

// questionColumn picks the question column from the header row. Returns the
// column index and whether the header row itself is a question rather than a
// label.
func questionColumn(header []string) (int, bool) {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, want := range questionHeaders {
			if h == want {
				return i, false
			}
		}
	}

	// No labeled column. A long first cell with spaces is a question, not a
	// header.
	first := strings.TrimSpace(cell(header, 0))
	return 0, strings.Contains(first, " ") && len(first) > 12
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return row[i]
}
