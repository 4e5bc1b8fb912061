package models

import "errors"

// Decode failures are returned as wrapped sentinel errors; match with
// errors.Is. Encoding a well-formed in-memory value never fails, and this
// package never logs - the caller decides whether a bad line is fatal,
// skipped or retried.
var (
	ErrMalformedJSON        = errors.New("malformed json")
	ErrUnknownMessageType   = errors.New("unknown message type")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrWrongFieldKind       = errors.New("wrong field kind")
	ErrUnknownMetricType    = errors.New("unknown metric type")
	ErrSchemaViolation      = errors.New("schema violation")
)
