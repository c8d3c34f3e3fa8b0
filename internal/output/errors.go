package output

import "errors"

// ErrRootExists is returned when the output root is already present.
// wisdl never writes into a tree left by an earlier run.
var ErrRootExists = errors.New("output directory already exists")
