package scans

import "errors"

// ErrCorruptArtifact indicates the uploaded bundle could not be opened or
// extracted. Fatal for the scan, never retried: the caller must re-upload.
var ErrCorruptArtifact = errors.New("corrupt artifact")

// ErrNotFound returned when a scan id is unknown for the tenant
var ErrNotFound = errors.New("scan not found")

// ErrCancelled returned when an operation is requested on a cancelled scan
var ErrCancelled = errors.New("scan cancelled")
