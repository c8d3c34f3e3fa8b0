package model

// Course is a subject listed on a study page.
type Course struct {
	// Abbreviation is the short course name (e.g. "IZP").
	// It is used as the top-level output directory.
	Abbreviation string `json:"abbreviation"`

	// Link is the raw href of the course page as emitted by the portal.
	Link string `json:"link"`
}

// NewCourse creates a Course.
func NewCourse(abbreviation, link string) *Course {
	return &Course{Abbreviation: abbreviation, Link: link}
}

// CourseTask is an assignment listed on a course page.
type CourseTask struct {
	// Name is the task title shown on the course page.
	Name string `json:"name"`

	// Link is the raw href of the task page.
	Link string `json:"link"`

	// Course is the course the task belongs to. Never nil.
	Course *Course `json:"-"`
}

// NewCourseTask creates a CourseTask owned by course.
func NewCourseTask(name, link string, course *Course) *CourseTask {
	return &CourseTask{Name: name, Link: link, Course: course}
}

// TaskFile is a submitted file listed on a task's files page.
type TaskFile struct {
	// Name is the file name as shown in the listing.
	Name string `json:"name"`

	// Year is the submission year read from the files page heading.
	Year string `json:"year"`

	// Link is the raw href of the file.
	Link string `json:"link"`

	// Task is the task the file was submitted to. Never nil.
	Task *CourseTask `json:"-"`
}

// NewTaskFile creates a TaskFile owned by task.
func NewTaskFile(name, year, link string, task *CourseTask) *TaskFile {
	return &TaskFile{Name: name, Year: year, Link: link, Task: task}
}

// CourseAbbreviation returns the abbreviation of the owning course.
func (f *TaskFile) CourseAbbreviation() string {
	return f.Task.Course.Abbreviation
}

// TaskName returns the name of the owning task.
func (f *TaskFile) TaskName() string {
	return f.Task.Name
}
