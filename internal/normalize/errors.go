package normalize

import "errors"

var (
	// ErrConfiguration indicates mutually exclusive options were both enabled.
	ErrConfiguration = errors.New("validate email and internationalized domain support cannot both be enabled")

	// ErrMalformedAddress indicates the input could not be split on '@'.
	ErrMalformedAddress = errors.New("could not split on '@'")

	// ErrInvalidAddress indicates the local part or domain failed syntax validation.
	ErrInvalidAddress = errors.New("invalid email address")

	// ErrDomainEncoding indicates the domain could not be IDNA encoded.
	ErrDomainEncoding = errors.New("domain cannot be IDNA encoded")
)

// AddressError reports a failure tied to a specific input address.
type AddressError struct {
	Address string
	Err     error
}

func (e *AddressError) Error() string {
	return e.Err.Error() + ": " + e.Address
}

func (e *AddressError) Unwrap() error {
	return e.Err
}

// Error kinds returned by Kind.
const (
	KindConfiguration    = "configuration"
	KindMalformedAddress = "malformed_address"
	KindInvalidAddress   = "invalid_address"
	KindDomainEncoding   = "domain_encoding"
)

// Kind returns a stable identifier for a normalization error, or "" for nil
// and unrelated errors.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrMalformedAddress):
		return KindMalformedAddress
	case errors.Is(err, ErrInvalidAddress):
		return KindInvalidAddress
	case errors.Is(err, ErrDomainEncoding):
		return KindDomainEncoding
	default:
		return ""
	}
}
