package numparse

import (
	"math"
	"strconv"
	"strings"
)

var suffixes = map[byte]float64{
	'k': 1_000,
	'm': 1_000_000,
	'b': 1_000_000_000,
}

// Parse converts a human-formatted quantity such as "2.4m", "12,345" or
// "100k" into an integer amount. Input it cannot read yields 0.
func Parse(text string) int64 {
	clean := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
	if clean == "" {
		return 0
	}

	multiplier := 1.0
	if m, ok := suffixes[clean[len(clean)-1]]; ok {
		multiplier = m
	}
	clean = strings.Map(func(r rune) rune {
		if r == 'k' || r == 'm' || r == 'b' {
			return -1
		}
		return r
	}, clean)

	num, ok := leadingFloat(strings.TrimSpace(clean))
	if !ok {
		return 0
	}
	return int64(math.Floor(num * multiplier))
}

// leadingFloat parses the longest decimal prefix of s, so "12.5 gp" reads as
// 12.5 and "1e3" as 1000.
func leadingFloat(s string) (float64, bool) {
	end := 0
	seenDigit, seenDot := false, false
scan:
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			seenDigit = true
		case c == '.' && !seenDot:
			seenDot = true
		case (c == '-' || c == '+') && i == 0:
		case (c == 'e' || c == 'E') && seenDigit:
			end += exponentLen(s[i:])
			break scan
		default:
			break scan
		}
		end = i + 1
	}
	if !seenDigit {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return 0, false
	}
	return num, true
}

// exponentLen returns the length of a well-formed exponent ("e3", "E-2") at
// the start of s, or 0.
func exponentLen(s string) int {
	i := 1
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	digits := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == digits {
		return 0
	}
	return i
}
