// Package dates detects date and timestamp layouts in text columns and turns
// matching values into civil.Date / civil.DateTime.
package dates

import (
	"strings"
	"time"

	"github.com/golang-sql/civil"
)

// DateLayouts are common date formats (no time component).
var DateLayouts = []string{
	"2006-01-02",  // ISO
	"02.01.2006",  // DMY dot
	"01.02.2006",  // MDY dot
	"02/01/2006",  // DMY slash
	"01/02/2006",  // MDY slash
	"2 Jan 2006",  // DMY textual day
	"02-Jan-2006", // DMY dash textual month
	"2006/01/02",  // ISO slashy
	"20060102",    // basic ISO
}

// TimestampLayouts are common timestamp formats.
var TimestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05", // DMY
	"01/02/2006 15:04:05", // MDY
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -0700",
}

// ISO is the strict pair used for JSON input: plain dates and RFC 3339.
var ISO = Layout{}

// Layout is the result of detection for one column. An empty Layout parses
// only ISO dates and RFC 3339 timestamps.
type Layout struct {
	Date      string
	Timestamp string
}

// DateLayoutPreference returns a tie-break weight for a date layout.
// Higher wins: DMY, then ISO, then MDY.
func DateLayoutPreference(layout string) int {
	switch layout {
	case "02.01.2006", "02/01/2006", "2 Jan 2006", "02-Jan-2006":
		return 3
	case "2006-01-02", "2006/01/02", "20060102":
		return 2
	case "01.02.2006", "01/02/2006":
		return 1
	default:
		return 0
	}
}

// TimestampLayoutPreference prefers RFC3339Nano, then RFC3339, then the rest.
func TimestampLayoutPreference(layout string) int {
	switch layout {
	case time.RFC3339Nano:
		return 3
	case time.RFC3339:
		return 2
	default:
		return 1
	}
}

// SelectBestLayout scores each layout by how many samples it parses and
// returns the best by (score, preference, declaration order). It returns ""
// when nothing matches.
func SelectBestLayout(samples []string, layouts []string, pref func(string) int) string {
	if len(samples) == 0 || len(layouts) == 0 {
		return ""
	}
	scores := make([]int, len(layouts))
	for _, s := range samples {
		for i, lay := range layouts {
			if _, err := time.Parse(lay, s); err == nil {
				scores[i]++
			}
		}
	}

	bestIdx, bestScore, bestPref := -1, -1, -1
	for i := range layouts {
		sc := scores[i]
		if sc < bestScore {
			continue
		}
		if sc > bestScore {
			bestIdx, bestScore, bestPref = i, sc, pref(layouts[i])
			continue
		}
		if p := pref(layouts[i]); p > bestPref {
			bestIdx, bestPref = i, p
		}
	}
	if bestIdx >= 0 && bestScore > 0 {
		return layouts[bestIdx]
	}
	return ""
}

// Detect picks a layout for a column from its non-empty samples. A column
// qualifies only when every sample parses with the chosen layout; timestamps
// are tried before dates.
func Detect(samples []string) (Layout, bool) {
	vals := nonEmpty(samples)
	if len(vals) == 0 {
		return Layout{}, false
	}
	if lay := SelectBestLayout(vals, TimestampLayouts, TimestampLayoutPreference); lay != "" && allParse(vals, lay) {
		return Layout{Timestamp: lay}, true
	}
	if lay := SelectBestLayout(vals, DateLayouts, DateLayoutPreference); lay != "" && allParse(vals, lay) {
		return Layout{Date: lay}, true
	}
	return Layout{}, false
}

// Parse converts s with l. It returns (civil.Date | civil.DateTime, true) on
// success and (nil, false) otherwise. Timestamps with an offset are converted
// to UTC before the zone is dropped.
func (l Layout) Parse(s string) (any, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if l.Date == "" && l.Timestamp == "" {
		if d, err := civil.ParseDate(s); err == nil {
			return d, true
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return civil.DateTimeOf(t.UTC()), true
		}
		if dt, err := civil.ParseDateTime(s); err == nil {
			return dt, true
		}
		return nil, false
	}
	if l.Timestamp != "" {
		if t, err := time.Parse(l.Timestamp, s); err == nil {
			return civil.DateTimeOf(t.UTC()), true
		}
	}
	if l.Date != "" {
		if t, err := time.Parse(l.Date, s); err == nil {
			return civil.DateOf(t), true
		}
	}
	return nil, false
}

func allParse(vals []string, layout string) bool {
	for _, v := range vals {
		if _, err := time.Parse(layout, v); err != nil {
			return false
		}
	}
	return true
}

func nonEmpty(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
