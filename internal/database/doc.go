// Package database keeps a history of download runs in SQLite.
//
// Each run is one row in the runs table and each file written during the run
// is one row in the downloads table. The history is only written and listed;
// a later run never consults it to skip files.
//
// The driver is modernc.org/sqlite, which needs no cgo.
package database
