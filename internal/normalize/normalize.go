// Package normalize cleans raw transaction descriptions into a canonical
// token string consumed by every classification stage.
package normalize

import (
	"regexp"
	"strings"
)

// Noise patterns stripped from descriptions, applied in order. Long numeric
// runs go before the punctuation strip so reference numbers embedded in
// paths ("ref1234567") disappear entirely.
var (
	reBankTag     = regexp.MustCompile(`@\w+`)
	reUPIToken    = regexp.MustCompile(`\bupi[\w-]*`)
	reTxnToken    = regexp.MustCompile(`\btxn[:#]?\s*\w+`)
	reTransaction = regexp.MustCompile(`\btransaction\s*\w+`)
	reRefToken    = regexp.MustCompile(`\bref[:#]?\s*\w+`)
	reLongDigits  = regexp.MustCompile(`\d{4,}`)
	reNonAlnum    = regexp.MustCompile(`[^a-z0-9\s]`)
)

// Description lower-cases the input, strips payment-network noise (bank
// tags, UPI/txn/ref tokens, long numeric ids), drops punctuation and
// collapses whitespace. It is pure and idempotent, and returns "" for empty
// input rather than failing.
func Description(desc string) string {
	s := strings.ToLower(desc)

	s = reBankTag.ReplaceAllString(s, " ")
	s = reUPIToken.ReplaceAllString(s, " ")
	s = reTxnToken.ReplaceAllString(s, " ")
	s = reTransaction.ReplaceAllString(s, " ")
	s = reRefToken.ReplaceAllString(s, " ")
	s = reLongDigits.ReplaceAllString(s, " ")
	s = reNonAlnum.ReplaceAllString(s, " ")

	return strings.Join(strings.Fields(s), " ")
}
