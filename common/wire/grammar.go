package wire

import "strings"

const (
	sigPrefix = "|SIG:"
	chkPrefix = "|CHK:"
)

// SplitSecuritySuffixes peels the optional "|CHK:<hex>" and "|SIG:<algo>:
// <base64>" trailers off a wire line, in the fixed order they're appended
// (checksum first, then signature, so signature covers the checksum too).
// body is the line with both trailers removed.
func SplitSecuritySuffixes(line string) (body, chkHex string, hasChk bool, sigAlgo, sigValue string, hasSig bool) {
	rest := line
	if idx := strings.LastIndex(rest, sigPrefix); idx >= 0 {
		seg := rest[idx+len(sigPrefix):]
		if algo, value, ok := strings.Cut(seg, ":"); ok {
			sigAlgo, sigValue, hasSig = algo, value, true
			rest = rest[:idx]
		}
	}
	if idx := strings.LastIndex(rest, chkPrefix); idx >= 0 {
		chkHex = rest[idx+len(chkPrefix):]
		hasChk = true
		rest = rest[:idx]
	}
	body = rest
	return
}

// AppendSecuritySuffixes is the inverse of SplitSecuritySuffixes.
func AppendSecuritySuffixes(body string, chkHex string, hasChk bool, sigAlgo, sigValue string, hasSig bool) string {
	var b strings.Builder
	b.WriteString(body)
	if hasChk {
		b.WriteString(chkPrefix)
		b.WriteString(chkHex)
	}
	if hasSig {
		b.WriteString(sigPrefix)
		b.WriteString(sigAlgo)
		b.WriteByte(':')
		b.WriteString(sigValue)
	}
	return b.String()
}
