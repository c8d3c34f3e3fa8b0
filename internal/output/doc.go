// Package output maps discovered files onto the local tree
// <root>/<course>/<task>/<year>/<file> and writes them through a Downloader.
//
// The filesystem is an afero.Fs so tests can run against afero.NewMemMapFs.
package output
