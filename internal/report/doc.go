// Package report renders merged quotations as a flat coding sheet.
//
// Each row describes one quotation of the primary document: its onset time,
// estimated duration, text, and a 0/1 column per code. The sheet can be
// written as an xlsx workbook or rendered as CSV, HTML or Markdown.
package report
