// Package loader ingests the raw retail workbook. Each configured sheet
// is read with excelize, headers are mapped by name rather than by
// position, and rows are coerced into typed transaction records. A cell
// that cannot be coerced aborts the run with a parsing error carrying the
// sheet, row, and column; silently guessing at malformed source data is
// worse than failing loudly.
package loader
