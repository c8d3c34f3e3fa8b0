// Package model defines the data structures shared across wisdl.
//
// The portal hierarchy is represented by three immutable values:
//   - Course: a subject found on a study page
//   - CourseTask: an assignment listed on a course page
//   - TaskFile: a submitted file listed on a task's files page
//
// Each child keeps a pointer to its parent. The pointers are set by the
// constructors and are only used to build output paths and log context.
//
// RunSummary collects the per-run accounting that is reported at the end
// of a download and recorded in the history database.
package model
