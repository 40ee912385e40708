package normalize

import "strings"

// Options controls the normalization pipeline.
type Options struct {
	// CaseInsensitiveLocal applies full Unicode case folding to the local part.
	CaseInsensitiveLocal bool
	// AggressiveSubaddressRemoval drops everything after the first '+' and
	// then the first '-' regardless of provider.
	AggressiveSubaddressRemoval bool
	// InternationalizedDomain encodes the domain to its ASCII-compatible
	// form. It cannot be combined with ValidateEmail.
	InternationalizedDomain bool
	// ValidateEmail rejects syntactically invalid addresses.
	ValidateEmail bool
}

// DefaultOptions returns case-insensitive, validated, provider-rule
// normalization without IDNA.
func DefaultOptions() Options {
	return Options{
		CaseInsensitiveLocal: true,
		ValidateEmail:        true,
	}
}

// Validate checks the options for conflicts.
func (o Options) Validate() error {
	if o.ValidateEmail && o.InternationalizedDomain {
		return ErrConfiguration
	}
	return nil
}

// Fingerprint returns a compact, stable encoding of the options, suitable
// for cache keys.
func (o Options) Fingerprint() string {
	var b strings.Builder
	b.Grow(8)
	writeFlag(&b, 'c', o.CaseInsensitiveLocal)
	writeFlag(&b, 'a', o.AggressiveSubaddressRemoval)
	writeFlag(&b, 'i', o.InternationalizedDomain)
	writeFlag(&b, 'v', o.ValidateEmail)
	return b.String()
}

func writeFlag(b *strings.Builder, name byte, on bool) {
	b.WriteByte(name)
	if on {
		b.WriteByte('1')
		return
	}
	b.WriteByte('0')
}
