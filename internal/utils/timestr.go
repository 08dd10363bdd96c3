package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var timeUnits = map[string]time.Duration{
	"ms":           time.Millisecond,
	"millis":       time.Millisecond,
	"millisecond":  time.Millisecond,
	"milliseconds": time.Millisecond,
	"s":            time.Second,
	"sec":          time.Second,
	"secs":         time.Second,
	"second":       time.Second,
	"seconds":      time.Second,
	"m":            time.Minute,
	"min":          time.Minute,
	"mins":         time.Minute,
	"minute":       time.Minute,
	"minutes":      time.Minute,
	"h":            time.Hour,
	"hour":         time.Hour,
	"hours":        time.Hour,
	"d":            24 * time.Hour,
	"day":          24 * time.Hour,
	"days":         24 * time.Hour,
}

// ParseTimeString converts a time string such as "5", "1.5", "2 seconds",
// "1 min 30 s", "100ms", "01:30" or "00:01:30.5" into a time.Duration. A
// bare number is a number of seconds. Values that are not finite or do not
// fit in a time.Duration are rejected.
func ParseTimeString(input string) (time.Duration, error) {
	text := strings.ToLower(strings.TrimSpace(input))
	if text == "" {
		return 0, fmt.Errorf("invalid time string '%s'", input)
	}

	if isDecimal(text) {
		secs, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time string '%s': %w", input, err)
		}
		return toDuration(input, secs*float64(time.Second))
	}
	if strings.Contains(text, ":") {
		return parseTimer(input, text)
	}
	if d, err := time.ParseDuration(text); err == nil {
		return d, nil
	}

	negative := false
	if strings.HasPrefix(text, "-") {
		negative = true
		text = strings.TrimSpace(text[1:])
	}

	var total float64
	rest := text
	for rest != "" {
		rest = strings.TrimLeft(rest, " ,")
		if rest == "" {
			break
		}
		i := 0
		for i < len(rest) && (unicode.IsDigit(rune(rest[i])) || rest[i] == '.') {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("invalid time string '%s'", input)
		}
		number, err := strconv.ParseFloat(rest[:i], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time string '%s': %w", input, err)
		}
		rest = strings.TrimLeft(rest[i:], " ")

		j := 0
		for j < len(rest) && unicode.IsLetter(rune(rest[j])) {
			j++
		}
		unit, ok := timeUnits[rest[:j]]
		if !ok {
			return 0, fmt.Errorf("invalid time string '%s': unknown unit '%s'", input, rest[:j])
		}
		total += number * float64(unit)
		rest = rest[j:]
	}

	if negative {
		total = -total
	}
	return toDuration(input, total)
}

// parseTimer handles the timer format [-][hh:]mm:ss[.fff].
func parseTimer(input, text string) (time.Duration, error) {
	negative := strings.HasPrefix(text, "-")
	if negative {
		text = text[1:]
	}
	parts := strings.Split(text, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time string '%s'", input)
	}

	var total float64
	for i, part := range parts {
		last := i == len(parts)-1
		if part == "" || !isDigits(part, last) {
			return 0, fmt.Errorf("invalid time string '%s'", input)
		}
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid time string '%s': %w", input, err)
		}
		total = total*60 + value
	}

	total *= float64(time.Second)
	if negative {
		total = -total
	}
	return toDuration(input, total)
}

// toDuration converts nanoseconds to a Duration, failing on NaN, infinities
// and values outside the Duration range.
func toDuration(input string, nanos float64) (time.Duration, error) {
	if math.IsNaN(nanos) || math.IsInf(nanos, 0) || nanos >= math.MaxInt64 || nanos < math.MinInt64 {
		return 0, fmt.Errorf("invalid time string '%s': out of range", input)
	}
	return time.Duration(math.Round(nanos)), nil
}

// isDecimal reports whether s is a plain decimal number with an optional
// sign, fraction and exponent. Hex floats, inf and nan are not.
func isDecimal(s string) bool {
	if s[0] == '-' || s[0] == '+' {
		s = s[1:]
	}
	mantissa, exponent, hasExponent := strings.Cut(s, "e")
	if hasExponent {
		if exponent != "" && (exponent[0] == '-' || exponent[0] == '+') {
			exponent = exponent[1:]
		}
		if !isDigits(exponent, false) {
			return false
		}
	}
	return isDigits(mantissa, true)
}

// isDigits reports whether s is a non-empty run of digits, with one decimal
// point when fraction is set.
func isDigits(s string, fraction bool) bool {
	digits := 0
	dot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' && fraction && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

// FormatDuration renders d the way the time keywords report it, e.g.
// "1 minute 30 seconds" or "500 milliseconds".
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "0 seconds"
	}
	parts := make([]string, 0, 4)
	if d < 0 {
		parts = append(parts, "-")
		d = -d
	}
	for _, u := range []struct {
		name string
		unit time.Duration
	}{
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
		{"second", time.Second},
		{"millisecond", time.Millisecond},
	} {
		if n := d / u.unit; n > 0 {
			name := u.name
			if n != 1 {
				name += "s"
			}
			parts = append(parts, fmt.Sprintf("%d %s", n, name))
			d -= n * u.unit
		}
	}
	if len(parts) == 0 || (len(parts) == 1 && parts[0] == "-") {
		return d.String()
	}
	return strings.Join(parts, " ")
}
