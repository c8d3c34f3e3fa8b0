// Package config holds the run configuration of wisdl: portal address,
// output root, timeouts, limits, credential sources, history and report
// settings. Values come from defaults, an optional YAML file and command
// line flags, in increasing order of precedence.
package config
