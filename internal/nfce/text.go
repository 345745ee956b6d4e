package nfce

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	spaceRe     = regexp.MustCompile(`\s+`)
	codeMarkRe  = regexp.MustCompile(`(?i)\s*\(C[óo]d`)
	digitRunRe  = regexp.MustCompile(`\d{15,}`)
	numberRe    = regexp.MustCompile(`\d[\d.,]*`)
	currencyRe  = regexp.MustCompile(`[R$\s]`)
	rowMoneyRes = []*regexp.Regexp{
		regexp.MustCompile(`R\$\s*([\d.,]+)`),
		regexp.MustCompile(`([\d]+[.,][\d]{2})\s*$`),
		regexp.MustCompile(`([\d]+[.,][\d]{3}[.,][\d]{2})`),
	}
)

// CleanText collapses whitespace and truncates the trailing "(Código: ...)"
// block issuers embed after product names.
func CleanText(text string) string {
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if loc := codeMarkRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}
	return strings.TrimSpace(text)
}

// IsValidItemName reports whether a candidate string is a plausible product
// name. Long digit runs are NFC-e access keys leaking out of the markup,
// not products.
func IsValidItemName(name string) bool {
	if len(name) < 3 {
		return false
	}
	compact := strings.ReplaceAll(name, " ", "")
	if len(compact) > 10 && isAllDigits(compact) {
		return false
	}
	return !digitRunRe.MatchString(compact)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// ParseMoney converts a monetary string to a float. Supports both
// Brazilian (1.234,56) and American (1,234.56) formats: when both
// separators appear, the rightmost one is the decimal separator.
// Malformed input yields 0 rather than an error.
func ParseMoney(text string) float64 {
	text = currencyRe.ReplaceAllString(text, "")
	if text == "" {
		return 0
	}

	comma := strings.LastIndex(text, ",")
	dot := strings.LastIndex(text, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			text = strings.ReplaceAll(text, ".", "")
			text = strings.ReplaceAll(text, ",", ".")
		} else {
			text = strings.ReplaceAll(text, ",", "")
		}
	case comma >= 0:
		text = strings.ReplaceAll(text, ",", ".")
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return v
}

// ParseNumber extracts the first numeric token from free text and parses
// it with the same separator rules as ParseMoney.
func ParseNumber(text string) float64 {
	if m := numberRe.FindString(text); m != "" {
		return ParseMoney(m)
	}
	return 0
}

// FindMoney scans free text for a monetary token, preferring an explicit
// R$ prefix, then a trailing decimal pair.
func FindMoney(text string) float64 {
	for _, re := range rowMoneyRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if v := ParseMoney(m[1]); v > 0 {
				return v
			}
		}
	}
	return 0
}
