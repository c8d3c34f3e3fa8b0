// Package report writes the summary of a download run in text, Markdown or
// JSON. The report is a record of what was fetched; nothing reads it back.
package report
