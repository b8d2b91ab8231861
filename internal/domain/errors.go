package domain

import "errors"

var (
	// ErrValidation is returned when caller input violates an operation precondition
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a record does not exist or is not visible to the caller
	ErrNotFound = errors.New("not found")

	// ErrGuestForbidden is returned when a guest identity attempts a write
	ErrGuestForbidden = errors.New("guest users cannot modify data")

	// ErrAlreadyExists is returned by stores when a uniqueness constraint rejects an insert
	ErrAlreadyExists = errors.New("record already exists")

	// ErrCorruptRecord is returned when a stored row cannot be mapped to a valid domain value
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrUpstreamUnavailable is returned when the external food database cannot be reached
	ErrUpstreamUnavailable = errors.New("external food database unavailable")

	// ErrProductNotFound is returned when a food cannot be found in USDA database
	ErrProductNotFound = errors.New("product not found in USDA database")

	// ErrUSDAAPIFailure is returned when USDA API request fails
	ErrUSDAAPIFailure = errors.New("USDA API request failed")

	// ErrRateLimited is returned when USDA keeps answering 429 after all retries
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
