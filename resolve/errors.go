package resolve

import "fmt"

// Sentinel errors for the six failure kinds the Query Facade can surface.
// Each is wrapped in a concrete type carrying query-specific context, and
// each concrete type implements Unwrap so callers can use errors.Is against
// the sentinel without caring about the wrapping details.
var (
	ErrNoDatabase      = fmt.Errorf("resolve: no repository configured")
	ErrUnknownDatabase = fmt.Errorf("resolve: unknown repository")
	ErrPackageNotFound = fmt.Errorf("resolve: package not found in any repository")
	ErrInvalidParam    = fmt.Errorf("resolve: invalid parameter")
	ErrInvalidRoot     = fmt.Errorf("resolve: invalid root")
	ErrInvalidLevel    = fmt.Errorf("resolve: invalid level")
)

// NoDatabaseError reports that a query was made with no repositories
// configured at all.
type NoDatabaseError struct {
	Mode string
}

func (e *NoDatabaseError) Error() string {
	return fmt.Sprintf("resolve: no repository configured for %s query", e.Mode)
}

func (e *NoDatabaseError) Unwrap() error { return ErrNoDatabase }

// UnknownDatabaseError reports a repo_id reference (typically for a
// reverse/be-depend query) that does not match any configured repository.
type UnknownDatabaseError struct {
	RepoID string
}

func (e *UnknownDatabaseError) Error() string {
	return fmt.Sprintf("resolve: unknown repository %q", e.RepoID)
}

func (e *UnknownDatabaseError) Unwrap() error { return ErrUnknownDatabase }

// PackageNotFoundError reports that none of a query's input names resolved
// against any configured repository.
type PackageNotFoundError struct {
	Names []string
}

func (e *PackageNotFoundError) Error() string {
	return fmt.Sprintf("resolve: none of %v found in any repository", e.Names)
}

func (e *PackageNotFoundError) Unwrap() error { return ErrPackageNotFound }

// InvalidParameterError reports a malformed or contradictory query
// parameter that isn't covered by the more specific root/level errors.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("resolve: invalid parameter %s: %s", e.Param, e.Reason)
}

func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParam }

// InvalidRootError reports an empty or malformed root/input package list.
type InvalidRootError struct {
	Reason string
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("resolve: invalid root: %s", e.Reason)
}

func (e *InvalidRootError) Unwrap() error { return ErrInvalidRoot }

// InvalidLevelError reports a depth/level parameter outside the allowed
// range (must be -1, for unbounded, or >= 0).
type InvalidLevelError struct {
	Level int
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("resolve: invalid level %d: must be -1 or >= 0", e.Level)
}

func (e *InvalidLevelError) Unwrap() error { return ErrInvalidLevel }
