// Package crawler walks the portal hierarchy and hands every submitted file
// to a Saver.
//
// # Traversal
//
// The walk is depth-first and strictly sequential:
//
//	study 1..limit -> courses -> tasks -> files page -> files
//
// A study with no courses ends the walk. A task without a files page is
// skipped. Every other condition, including a failed fetch, a page that does
// not match the expected structure or a failed save, aborts the run.
//
// # Usage
//
//	c := crawler.New(session, materializer, crawler.WithStudyLimit(5))
//	summary, err := c.Run(ctx)
//
// The summary is returned even when Run fails, and covers what was saved
// before the failure.
package crawler
