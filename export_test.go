package drivels

// This file is part of the package tests (package drivels) and provides
// helpers that allow tests in the external package to access internal
// package constructs.

// NewTransientError constructs a transient-wrapped error using the
// package-internal constructor.
func NewTransientError(msg string, cause error) error {
	return newTransientError(msg, cause)
}

// NewPermissionError constructs a permission-wrapped error using the
// package-internal constructor.
func NewPermissionError(msg string, cause error) error {
	return newPermissionError(msg, cause)
}

// NewDriveError constructs a drive-wrapped error using the package-internal
// constructor.
func NewDriveError(msg string, cause error) error {
	return newDriveError(msg, cause)
}

// NewCacheError constructs a cache-wrapped error using the package-internal
// constructor.
func NewCacheError(msg string, cause error) error {
	return newCacheError(msg, cause)
}
