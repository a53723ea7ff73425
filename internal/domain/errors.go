package domain

import "errors"

var (
	// ErrInvalidLine indicates a line does not match the reading grammar
	ErrInvalidLine = errors.New("invalid reading line")

	// ErrEmptyPayload indicates an ingestion payload with no content
	ErrEmptyPayload = errors.New("empty payload")

	// ErrUnsupportedContent indicates an ingestion payload that is not text/plain
	ErrUnsupportedContent = errors.New("unsupported content type")

	// ErrMissingRange indicates a query without both range bounds
	ErrMissingRange = errors.New("from and to are required")

	// ErrInvalidRange indicates a range bound that is not a recognized date or timestamp
	ErrInvalidRange = errors.New("invalid date range")

	// ErrStorage indicates the backing store failed; details are logged, never returned to clients
	ErrStorage = errors.New("storage unavailable")
)

// IsRejection reports whether err is caused by caller input rather than storage
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidLine) ||
		errors.Is(err, ErrEmptyPayload) ||
		errors.Is(err, ErrUnsupportedContent) ||
		errors.Is(err, ErrMissingRange) ||
		errors.Is(err, ErrInvalidRange)
}
