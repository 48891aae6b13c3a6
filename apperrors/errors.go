package apperrors

import "errors"

// Validation errors indicate that the caller supplied input the calculator cannot work with.
var (
	// ErrInvalidArgument indicates a non-finite, zero, negative or otherwise unusable loan parameter.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidID indicates that a schedule ID is not a valid UUID.
	ErrInvalidID = errors.New("invalid schedule ID")

	// ErrTooManyLoans indicates a batch request above the per-request limit.
	ErrTooManyLoans = errors.New("too many loans in batch")
)

// Computation errors are raised by the amortization engine itself.
var (
	// ErrNonTerminating indicates that the balance did not reach zero within the
	// allowed number of periods.
	ErrNonTerminating = errors.New("amortization did not terminate")

	// ErrNoViableTerm indicates that no candidate term satisfied the comparison constraints.
	ErrNoViableTerm = errors.New("no term satisfies the maximum periodic payment")
)

// Not-found errors indicate that a requested resource does not exist.
var (
	// ErrScheduleNotFound indicates that no stored schedule has the given ID.
	ErrScheduleNotFound = errors.New("schedule not found")
)

// Operation failure errors represent storage or cache failures.
var (
	ErrFailedToSaveSchedule     = errors.New("failed to save schedule")
	ErrFailedToRetrieveSchedule = errors.New("failed to retrieve schedule")
	ErrFailedToDeleteSchedule   = errors.New("failed to delete schedule")
)
