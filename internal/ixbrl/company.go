package ixbrl

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Bulk filings encode the company number in the filename, e.g.
// Prod224_1234_00012345_20240331.html. Content-level patterns cover files
// named differently.
var (
	filenameNumber  = regexp.MustCompile(`_(\d{8})_`)
	anyEightDigits  = regexp.MustCompile(`(\d{8})`)
	contentNumber   = regexp.MustCompile(`(?i)CompanyNumber[>\s:]+(\d{6,8})`)
	registeredNum   = regexp.MustCompile(`(?i)RegisteredNumber[>\s:]+(\d{6,8})`)
	identifierValue = regexp.MustCompile(`(?i)<[^>]*identifier[^>]*>(\d{6,8})<`)
)

// ExtractCompanyNumber recovers the company number from a bulk filing's
// filename or, failing that, the head of its content. Returns "" when no
// number can be found; such filings are recorded as failures by the caller.
func ExtractCompanyNumber(path string, contentHead []byte) string {
	base := filepath.Base(path)

	if m := filenameNumber.FindStringSubmatch(base); m != nil {
		return m[1]
	}
	if m := anyEightDigits.FindStringSubmatch(base); m != nil {
		return m[1]
	}

	head := string(contentHead)
	for _, re := range []*regexp.Regexp{contentNumber, registeredNum, identifierValue} {
		if m := re.FindStringSubmatch(head); m != nil {
			return padCompanyNumber(m[1])
		}
	}
	return ""
}

func padCompanyNumber(n string) string {
	if len(n) >= 8 {
		return n
	}
	return strings.Repeat("0", 8-len(n)) + n
}
