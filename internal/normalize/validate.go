package normalize

import "regexp"

// Local part: a dot-atom, or a quoted string with escaped or literal
// control and printable characters.
var localPartPattern = regexp.MustCompile(
	`(?i)^(?:` +
		`[-!#$%&'*+/=?^_\x60{}|~0-9a-z]+(?:\.[-!#$%&'*+/=?^_\x60{}|~0-9a-z]+)*` +
		`|"(?:[\x01-\x08\x0b\x0c\x0e-\x1f!#-\[\]-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*"` +
		`)$`,
)

// Domain: labels of 1-63 alphanumerics with internal hyphens, then a final
// label of 2-63 characters under the same hyphen rule.
var domainPattern = regexp.MustCompile(
	`(?i)^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9][a-z0-9-]{0,61}[a-z0-9]$`,
)

// IsValidLocalPart reports whether local is an acceptable local part.
func IsValidLocalPart(local string) bool {
	return localPartPattern.MatchString(local)
}

// IsValidDomain reports whether domain is an acceptable ASCII domain.
func IsValidDomain(domain string) bool {
	return domainPattern.MatchString(domain)
}

func validateAddress(email, local, domain string) error {
	if !IsValidLocalPart(local) || !IsValidDomain(domain) {
		return &AddressError{Address: email, Err: ErrInvalidAddress}
	}
	return nil
}
