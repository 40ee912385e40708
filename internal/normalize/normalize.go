// Package normalize canonicalizes email addresses for deduplication and
// matching.
//
// The pipeline splits the address on the first '@', optionally validates it,
// folds the case of the local part, lowercases or IDNA-encodes the domain and
// finally strips provider specific sub-address tags from the local part.
package normalize

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"

	"github.com/gitshopapp/emailnorm/internal/providers"
)

// domainProfile follows IDNA2003-compatible (transitional) mapping so that
// e.g. 'ß' maps to "ss" before encoding. STD3 host name rules are off: ASCII
// such as '_' or a second '@' passes through, and syntax checks are left to
// ValidateEmail.
var domainProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(true),
	idna.VerifyDNSLength(true),
	idna.BidiRule(),
)

// Normalizer applies a fixed set of options and provider rules. It holds no
// mutable state and is safe for concurrent use.
type Normalizer struct {
	opts  Options
	rules *providers.Table
}

// New returns a Normalizer for opts. A nil rules table selects the built-in
// provider table. It returns ErrConfiguration when opts conflict.
func New(opts Options, rules *providers.Table) (*Normalizer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if rules == nil {
		rules = providers.Default()
	}
	return &Normalizer{opts: opts, rules: rules}, nil
}

// Normalize normalizes email with opts and the built-in provider table.
func Normalize(email string, opts Options) (string, error) {
	n, err := New(opts, nil)
	if err != nil {
		return "", err
	}
	return n.Normalize(email)
}

// Options returns the options the normalizer was built with.
func (n *Normalizer) Options() Options {
	return n.opts
}

// Normalize returns the canonical form of email.
func (n *Normalizer) Normalize(email string) (string, error) {
	local, domain, err := Split(email)
	if err != nil {
		return "", err
	}

	if n.opts.ValidateEmail {
		if err := validateAddress(email, local, domain); err != nil {
			return "", err
		}
	}

	if n.opts.CaseInsensitiveLocal {
		local = FoldLocal(local)
	}

	if n.opts.InternationalizedDomain {
		domain, err = EncodeDomain(domain)
		if err != nil {
			return "", &AddressError{Address: email, Err: err}
		}
	} else {
		domain = strings.ToLower(domain)
	}

	if n.opts.AggressiveSubaddressRemoval {
		local = StripAggressive(local)
	} else {
		rule, _ := n.rules.Lookup(domain)
		local = ApplyRule(rule, local)
	}

	return local + "@" + domain, nil
}

// Split separates email into its local part and domain at the first '@'.
// Both halves must be non-empty.
func Split(email string) (local, domain string, err error) {
	local, domain, found := strings.Cut(email, "@")
	if !found || local == "" || domain == "" {
		return "", "", &AddressError{Address: email, Err: ErrMalformedAddress}
	}
	return local, domain, nil
}

// FoldLocal applies full Unicode case folding to a local part.
func FoldLocal(local string) string {
	// A Caser carries state, so each call gets its own.
	return cases.Fold().String(local)
}

// EncodeDomain converts domain to its ASCII-compatible (punycode) form.
func EncodeDomain(domain string) (string, error) {
	encoded, err := domainProfile.ToASCII(domain)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDomainEncoding, err)
	}
	return encoded, nil
}
