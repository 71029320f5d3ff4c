package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrMalformedExport indicates a ledger export document of unexpected shape;
// imports abort before any row replacement.
var ErrMalformedExport = errors.New("malformed ledger export")

// ErrExternalService indicates a metrics or ledger-fetch failure; the whole
// refresh aborts without committing digests or partial values.
var ErrExternalService = errors.New("external service failure")

// ErrConfiguration indicates a template shape the engine cannot resolve.
var ErrConfiguration = errors.New("report configuration error")
