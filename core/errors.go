package core

import "errors"

var (
	// ErrTargetResolution: a query could not be classified or normalized.
	ErrTargetResolution = errors.New("cannot resolve target")
	// ErrFetchFailed: a single URL could not be retrieved.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrConversion: an output writer failed after inputs were gathered.
	ErrConversion = errors.New("conversion failed")
	// ErrInterrupted: the run was cancelled by the user.
	ErrInterrupted = errors.New("interrupted")

	// ErrOutputExists: the output file exists and overwriting was not allowed.
	ErrOutputExists = errors.New("output file already exists")
	// ErrSkipped: the output file exists and the skip policy is active.
	ErrSkipped = errors.New("output file exists, skipped")
	// ErrNoOutputName: no single output name could be derived from the queries.
	ErrNoOutputName = errors.New("failed to construct a single output filename")
	// ErrLocalHTML: local files cannot be written as HTML.
	ErrLocalHTML = errors.New("cannot convert local files to HTML")
)
