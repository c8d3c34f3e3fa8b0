package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// ErrExtractionMismatch is returned when a page lacks an element the
// extractor requires.
var ErrExtractionMismatch = errors.New("page structure does not match the expected layout")

// FilesPageMarker identifies links to a task's "submitted files" page.
const FilesPageMarker = "course-sf.php"

// Selectors for each page type.
const (
	studyRowSelector  = ".content > .table-holder tr[align='center'][valign='top']"
	courseLinkInRow   = "a.bar"
	taskLinkSelector  = ".content > form > .table-holder a.bar"
	taskParagraphLink = ".content > p > a"
	fileLinkSelector  = ".content > form > table tr[valign='middle'] > td > a"
)

// CourseRef is one course row of a study page.
type CourseRef struct {
	Abbreviation string
	Link         string
}

// TaskRef is one task link of a course page.
type TaskRef struct {
	Name string
	Link string
}

// FileRef is one file link of a files page.
type FileRef struct {
	Name string
	Year string
	Link string
}

// parse builds a goquery document from page text.
func parse(page string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// StudyCourses extracts the courses listed on a study page.
// An empty result means the study does not exist or has no courses.
func StudyCourses(page string) ([]CourseRef, error) {
	doc, err := parse(page)
	if err != nil {
		return nil, err
	}

	courses := make([]CourseRef, 0)
	doc.Find(studyRowSelector).EachWithBreak(func(i int, row *goquery.Selection) bool {
		header := row.Find("th").First()
		if header.Length() == 0 {
			err = fmt.Errorf("%w: course row %d has no header cell", ErrExtractionMismatch, i)
			return false
		}

		link, ok := row.Find(courseLinkInRow).First().Attr("href")
		if !ok {
			err = fmt.Errorf("%w: course row %d has no course link", ErrExtractionMismatch, i)
			return false
		}

		courses = append(courses, CourseRef{
			Abbreviation: strings.TrimSpace(header.Text()),
			Link:         link,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	return courses, nil
}

// CourseTasks extracts the tasks listed on a course page.
func CourseTasks(page string) ([]TaskRef, error) {
	doc, err := parse(page)
	if err != nil {
		return nil, err
	}

	tasks := make([]TaskRef, 0)
	doc.Find(taskLinkSelector).EachWithBreak(func(i int, a *goquery.Selection) bool {
		link, ok := a.Attr("href")
		if !ok {
			err = fmt.Errorf("%w: task link %d has no href", ErrExtractionMismatch, i)
			return false
		}
		tasks = append(tasks, TaskRef{
			Name: strings.TrimSpace(a.Text()),
			Link: link,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// TaskFilesLink returns the link to the task's "submitted files" page.
// ok is false when the task has no submission stage, which is the common case.
func TaskFilesLink(page string) (link string, ok bool, err error) {
	doc, err := parse(page)
	if err != nil {
		return "", false, err
	}

	doc.Find(taskParagraphLink).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		// Named anchors without href are not links
		href, exists := a.Attr("href")
		if exists && strings.Contains(href, FilesPageMarker) {
			link, ok = href, true
			return false
		}
		return true
	})

	return link, ok, nil
}

// TaskFiles extracts the files listed on a files page.
// All files share the submission year read from the page heading: the text
// after the last "/" of the first h1.
func TaskFiles(page string) ([]FileRef, error) {
	doc, err := parse(page)
	if err != nil {
		return nil, err
	}

	heading := doc.Find("h1").First()
	if heading.Length() == 0 {
		return nil, fmt.Errorf("%w: files page has no heading", ErrExtractionMismatch)
	}
	year := submissionYear(heading.Text())

	files := make([]FileRef, 0)
	doc.Find(fileLinkSelector).EachWithBreak(func(i int, a *goquery.Selection) bool {
		link, ok := a.Attr("href")
		if !ok {
			err = fmt.Errorf("%w: file link %d has no href", ErrExtractionMismatch, i)
			return false
		}
		files = append(files, FileRef{
			Name: strings.TrimSpace(a.Text()),
			Year: year,
			Link: link,
		})
		return true
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// submissionYear returns the trailing segment after the last "/".
func submissionYear(heading string) string {
	if i := strings.LastIndex(heading, "/"); i >= 0 {
		heading = heading[i+1:]
	}
	return strings.TrimSpace(heading)
}
