package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrMalformedLine = errors.New("malformed line")
)
