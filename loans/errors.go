package loans

import "errors"

// Error kinds surfaced to controllers. Callers wrap them with context and
// match with errors.Is.
var (
	ErrNotFound               = errors.New("not found")
	ErrLoanNotOpen            = errors.New("loan is not open")
	ErrItemAlreadyLoaned      = errors.New("item already loaned")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrEmptyLoan              = errors.New("loan has no lines")
	ErrMissingSignature       = errors.New("missing signature")
	ErrAlreadyClosed          = errors.New("loan already closed")
	ErrCannotDeleteSignedLoan = errors.New("closed signed loan cannot be deleted")
	ErrValidation             = errors.New("validation error")

	// ErrUnavailable is the ledger's reservation refusal; the line manager
	// translates it into ErrItemAlreadyLoaned or ErrInsufficientStock.
	ErrUnavailable = errors.New("item unavailable")
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrNotFound, "NotFound"},
	{ErrLoanNotOpen, "LoanNotOpen"},
	{ErrItemAlreadyLoaned, "ItemAlreadyLoaned"},
	{ErrInsufficientStock, "InsufficientStock"},
	{ErrEmptyLoan, "EmptyLoan"},
	{ErrMissingSignature, "MissingSignature"},
	{ErrAlreadyClosed, "AlreadyClosed"},
	{ErrCannotDeleteSignedLoan, "CannotDeleteSignedLoan"},
	{ErrValidation, "ValidationError"},
	{ErrUnavailable, "Unavailable"},
}

// Kind returns the machine-readable name of err's kind, or "Internal".
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}
