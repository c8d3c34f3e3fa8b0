// Package extract reads structured records out of WIS portal pages.
//
// There is one function per page type of the portal hierarchy:
//
//	StudyCourses   study page      -> (abbreviation, link) per course
//	CourseTasks    course page     -> (name, link) per task
//	TaskFilesLink  task page       -> link of the "submitted files" page, if any
//	TaskFiles      files page      -> (name, year, link) per file
//
// Each function parses one page with golang.org/x/net/html and selects
// elements with fixed CSS selectors through goquery. The selectors mirror
// the portal's markup exactly; a layout change on the portal breaks the
// matching extractor. Elements that are selected but lack a required part
// (a header cell, an href, a heading) are reported as ErrExtractionMismatch.
//
// Results are plain slices. Nothing keeps a reference to the parsed page
// once a function returns.
package extract
