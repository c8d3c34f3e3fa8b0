// Package main provides the entry point for the wisdl CLI.
//
// wisdl logs in to the FIT information system (WIS) and downloads every
// submitted project file into <output>/<course>/<task>/<year>/<file>.
//
// Usage:
//
//	wisdl
//	wisdl download -o ~/wis_projects
//	wisdl history
//
// See --help for all available options.
package main

func main() {
	Execute()
}
