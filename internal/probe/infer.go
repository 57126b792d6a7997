package probe

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"csvetl/pkg/records"
)

// maxIdentifier is the PostgreSQL identifier limit.
const maxIdentifier = 63

// dateLayouts are the date formats recognized without a time part.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"01.02.2006",
	"02/01/2006",
	"01/02/2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2006/01/02",
	"20060102",
}

// timestampLayouts are the formats recognized with a time part.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04:05 -0700",
}

// inferKind picks the narrowest kind all values satisfy, plus the layout for
// dates and timestamps. No values means string.
func inferKind(vals []string) (records.Kind, string) {
	switch {
	case len(vals) == 0:
		return records.KindString, ""
	case allMatch(vals, isInt):
		return records.KindInt, ""
	case allMatch(vals, isBool):
		return records.KindBool, ""
	case allMatch(vals, isFloat):
		return records.KindFloat, ""
	}
	if l := bestLayout(vals, timestampLayouts, timestampPreference); l != "" {
		return records.KindTimestamp, l
	}
	if l := bestLayout(vals, dateLayouts, datePreference); l != "" {
		return records.KindDate, l
	}
	return records.KindString, ""
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "false", "t", "f", "yes", "no", "y", "n":
		return true
	}
	return false
}

func isFloat(s string) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// bestLayout returns the layout that parses every value. Several candidates
// are ranked by pref, then by their order in layouts.
func bestLayout(vals, layouts []string, pref func(string) int) string {
	best, bestPref := "", -1
	for _, l := range layouts {
		ok := true
		for _, v := range vals {
			if _, err := time.Parse(l, v); err != nil {
				ok = false
				break
			}
		}
		if ok && pref(l) > bestPref {
			best, bestPref = l, pref(l)
		}
	}
	return best
}

// datePreference ranks ISO over day-first over month-first.
func datePreference(layout string) int {
	switch layout {
	case "2006-01-02", "2006/01/02", "20060102":
		return 3
	case "02.01.2006", "02/01/2006", "2 Jan 2006", "02-Jan-2006":
		return 2
	default:
		return 1
	}
}

func timestampPreference(layout string) int {
	switch layout {
	case time.RFC3339Nano:
		return 3
	case time.RFC3339:
		return 2
	default:
		return 1
	}
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Identifier turns header text into a lowercase ASCII identifier: accents
// are stripped, runs of separators become one underscore and anything else
// is dropped. Names longer than 63 bytes keep their head and tail. An empty
// result becomes "col".
func Identifier(s string) string {
	ascii, _, err := transform.String(stripMarks, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		ascii = strings.ToLower(s)
	}

	var b strings.Builder
	sep := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			sep = false
		case r == '_' || r == ' ' || r == '-' || r == '.' || r == '/':
			if !sep {
				b.WriteByte('_')
				sep = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "c_" + name
	}
	if len(name) > maxIdentifier {
		name = name[:10] + name[len(name)-(maxIdentifier-10):]
	}
	return name
}
