package deliverkit

import "errors"

var (
	// ErrBatchEmpty is returned when ValidateBatch is called with no
	// addresses. Rejected before any per-address work starts.
	ErrBatchEmpty = errors.New("deliverkit: batch contains no addresses")

	// ErrBatchTooLarge is returned when a batch exceeds the configured
	// maximum size. Rejected before any per-address work starts.
	ErrBatchTooLarge = errors.New("deliverkit: batch exceeds the maximum size")

	// ErrInvalidSMTPConfig is returned by New when the SMTP probe is
	// enabled without a HeloDomain or MailFrom.
	ErrInvalidSMTPConfig = errors.New("deliverkit: SMTP probing requires HeloDomain and MailFrom")
)
