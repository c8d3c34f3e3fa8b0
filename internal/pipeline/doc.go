// Package pipeline runs a wisdl download as a sequence of steps.
//
// The main steps check the output root, log in, create the root and crawl
// the portal. They stop at the first error. Final steps (history and report)
// run afterwards in every case, so a failed crawl is still recorded.
//
// Each step receives the shared *Run, which carries the configuration, the
// credential provider and everything produced along the way.
package pipeline
