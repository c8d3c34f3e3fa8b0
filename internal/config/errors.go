package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoOutputDir is returned when the output root is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidBaseURL is returned when the portal address is not an
	// absolute http or https URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: expected http(s)://host")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidChunkSize is returned when the download chunk size is not positive.
	ErrInvalidChunkSize = errors.New("invalid chunk size: must be positive")

	// ErrInvalidMaxStudies is returned when the study limit is below 1.
	ErrInvalidMaxStudies = errors.New("invalid max studies: must be at least 1")

	// ErrInvalidMaxPageSize is returned when the page size limit is not positive.
	ErrInvalidMaxPageSize = errors.New("invalid max page size: must be positive")

	// ErrInvalidReportFormat is returned for a report format other than
	// text, markdown or json.
	ErrInvalidReportFormat = errors.New("invalid report format: must be text, markdown or json")
)
