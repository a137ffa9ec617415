// Package market decides whether a URL belongs to the Russian-language web segment.
package market

import "strings"

// targetTLDs are matched as substrings of the lowercased URL.
var targetTLDs = []string{".ru", ".su", ".rf", ".xn--p1ai", ".рф"}

const idnPrefix = "xn--"

// IsTargetMarket reports whether url carries a target-market TLD, a Cyrillic
// character or an IDN ACE label. It never fails; malformed input yields false.
func IsTargetMarket(url string) bool {
	if url == "" {
		return false
	}
	lower := strings.ToLower(url)
	return hasTargetTLD(lower) || hasCyrillic(lower) || strings.Contains(lower, idnPrefix)
}

func hasTargetTLD(lower string) bool {
	for _, tld := range targetTLDs {
		if strings.Contains(lower, tld) {
			return true
		}
	}
	return false
}

// hasCyrillic checks the basic Cyrillic block U+0400..U+04FF.
func hasCyrillic(s string) bool {
	for _, r := range s {
		if r >= '\u0400' && r <= '\u04FF' {
			return true
		}
	}
	return false
}

// Filter keeps the items whose URL passes IsTargetMarket, preserving order.
func Filter[T any](items []T, url func(T) string) []T {
	kept := items[:0:0]
	for _, item := range items {
		if IsTargetMarket(url(item)) {
			kept = append(kept, item)
		}
	}
	return kept
}
