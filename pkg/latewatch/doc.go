// Package latewatch normalizes late-arrival feeds exported from a shared
// spreadsheet into a deduplicated, newest-first list of records.
//
// Quick start:
//
//	lw := latewatch.New(latewatch.WithLocation(kl))
//	records, err := lw.Normalize(body, resp.Header.Get("Content-Type"))
//	if errors.Is(err, latewatch.ErrAuthRequired) {
//	    // the sheet is behind a login page
//	}
//
// Bodies may be JSON (array of arrays with a header row, array of objects,
// or either wrapped in a "data"/"records" object), CSV/TSV text, or an
// XLSX workbook. A Latewatch is safe for concurrent use.
package latewatch
