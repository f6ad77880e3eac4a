package brand

import "errors"

// Sentinel errors for the registry's failure taxonomy. Callers match with
// errors.Is; wrapped messages carry the entity name and a reason.
var (
	// ErrNotFound indicates a brand, template, or asset does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a create would overwrite an existing entity.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation indicates a malformed name, document, or asset.
	ErrValidation = errors.New("validation failed")

	// ErrProtected indicates an operation was blocked by a protection lock,
	// or by a protection state that could not be verified.
	ErrProtected = errors.New("blocked by protection")

	// ErrInvalidArgument indicates a missing precondition such as an absent
	// deletion confirmation.
	ErrInvalidArgument = errors.New("invalid argument")
)
