package iana

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/zoneinfo/go-tzif/internal/unixtime"
	"github.com/zoneinfo/go-tzif/tzif"
)

// LeapSecond is one entry of the leapseconds file that ships with a
// release. The moment it describes is the second the adjustment takes
// place, e.g. 1972 Jun 30 23:59:60.
type LeapSecond struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int

	// Added is false when a second was skipped. All published leap
	// seconds so far added a second.
	Added bool

	// Rolling means the time above is local wall clock time instead
	// of UTC. Rolling leap seconds are not used in practice.
	Rolling bool
}

// Occurrence returns the leap second's moment as a Unix timestamp,
// ignoring any earlier leap seconds.
func (l LeapSecond) Occurrence() int64 {
	return unixtime.FromDateTime(l.Year, int(l.Month), l.Day, l.Hour, l.Minute, l.Second)
}

// Expiry is the moment after which a leapseconds file must be
// considered outdated.
type Expiry struct {
	Year  int
	Month time.Month
	Day   int
}

// LeapSeconds is a parsed leapseconds file.
type LeapSeconds struct {
	Entries []LeapSecond
	Expires *Expiry
}

// Records converts the entries to the form compiled TZif files carry:
// every occurrence is shifted onto the timescale established by the
// preceding corrections and the corrections accumulate.
func (ls LeapSeconds) Records() []tzif.LeapSecondRecord {
	recs := make([]tzif.LeapSecondRecord, 0, len(ls.Entries))
	var corr int32
	for _, l := range ls.Entries {
		occur := l.Occurrence() + int64(corr)
		if l.Added {
			corr++
		} else {
			corr--
		}
		recs = append(recs, tzif.LeapSecondRecord{Occur: occur, Corr: corr})
	}
	return recs
}

// ParseLeapSeconds parses the leapseconds file carried in r, if any.
func (r *Release) ParseLeapSeconds() (LeapSeconds, error) {
	if len(r.LeapSeconds) == 0 {
		return LeapSeconds{}, errors.New("release has no leapseconds file")
	}
	return ParseLeapSeconds(r.LeapSeconds)
}

// ParseLeapSeconds parses a leapseconds file. The file consists of
// "Leap" lines, at most one "Expires" line, comments introduced by an
// unquoted sharp character and blank lines.
func ParseLeapSeconds(data []byte) (LeapSeconds, error) {
	var result LeapSeconds
	scanner := bufio.NewScanner(bytes.NewReader(data))

	var lineNumber int
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		fields := splitLine(line)
		if fields == nil {
			continue // skip comment or empty line
		}
		switch fields[0] {
		case "Leap":
			leap, err := parseLeapLine(fields)
			if err != nil {
				return result, &parseError{lineNumber, line, fmt.Errorf("parse leap: %w", err)}
			}
			result.Entries = append(result.Entries, leap)
		case "Expires":
			expires, err := parseExpiresLine(fields)
			if err != nil {
				return result, &parseError{lineNumber, line, fmt.Errorf("parse expires: %w", err)}
			}
			result.Expires = &expires
		default:
			return result, &parseError{lineNumber, line, errors.New("unexpected line")}
		}
	}

	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("scanner: %w", err)
	}
	return result, nil
}

// parseError is an error that occurred during parsing.
// It contains the line number and the line where the error occurred.
type parseError struct {
	lineNumber int
	line       string
	err        error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.lineNumber, e.line, e.err)
}

// splitLine strips the comment and splits the line into its fields.
// It returns nil if nothing but white space remains.
func splitLine(line string) []string {
	if i := strings.Index(line, "#"); i != -1 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	return strings.Fields(line)
}

func parseLeapLine(fields []string) (LeapSecond, error) {
	if len(fields) != 7 {
		return LeapSecond{}, fmt.Errorf("expected 7 fields, got %d", len(fields))
	}
	var (
		leap LeapSecond
		errs error
		err  error
	)
	if leap.Year, err = strconv.Atoi(fields[1]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("YEAR %q: %w", fields[1], err))
	}
	if leap.Month, err = parseMonth(fields[2]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("MONTH %q: %w", fields[2], err))
	}
	if leap.Day, err = strconv.Atoi(fields[3]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("DAY %q: %w", fields[3], err))
	}
	if leap.Hour, leap.Minute, leap.Second, err = parseHMS(fields[4]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("HH:MM:SS %q: %w", fields[4], err))
	}
	if leap.Added, err = parseCorr(fields[5]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("CORR %q: %w", fields[5], err))
	}
	if leap.Rolling, err = parseRS(fields[6]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("R/S %q: %w", fields[6], err))
	}
	return leap, errs
}

func parseExpiresLine(fields []string) (Expiry, error) {
	if len(fields) != 5 {
		return Expiry{}, fmt.Errorf("expected 5 fields, got %d", len(fields))
	}
	var (
		expires Expiry
		errs    error
		err     error
	)
	if expires.Year, err = strconv.Atoi(fields[1]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("YEAR %q: %w", fields[1], err))
	}
	if expires.Month, err = parseMonth(fields[2]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("MONTH %q: %w", fields[2], err))
	}
	if expires.Day, err = strconv.Atoi(fields[3]); err != nil {
		errs = errors.Join(errs, fmt.Errorf("DAY %q: %w", fields[3], err))
	}
	return expires, errs
}

func parseCorr(s string) (added bool, err error) {
	switch s {
	case "+":
		return true, nil
	case "-":
		return false, nil
	default:
		return false, fmt.Errorf("invalid leap correction: %q", s)
	}
}

func parseRS(s string) (rolling bool, err error) {
	l := strings.ToLower(s)
	if isAbbrev(l, "rolling", "r") {
		return true, nil
	}
	if isAbbrev(l, "stationary", "s") {
		return false, nil
	}
	return false, fmt.Errorf("invalid leap mode: %q", s)
}

func parseHMS(s string) (hh, mm, ss int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("expected 3 parts, got %d", len(parts))
	}
	if hh, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, fmt.Errorf("hours: %v", err)
	}
	if mm, err = strconv.Atoi(parts[1]); err != nil {
		return 0, 0, 0, fmt.Errorf("minutes: %v", err)
	}
	if ss, err = strconv.Atoi(parts[2]); err != nil {
		return 0, 0, 0, fmt.Errorf("seconds: %v", err)
	}
	return hh, mm, ss, nil
}

// parseMonth parses a month name, which may be abbreviated to three
// characters.
func parseMonth(s string) (time.Month, error) {
	if len(s) < 3 {
		return 0, fmt.Errorf("month %q: too short", s)
	}
	l := strings.ToLower(s)
	months := []struct {
		long string
		min  string
		m    time.Month
	}{
		{"january", "jan", time.January},
		{"february", "feb", time.February},
		{"march", "mar", time.March},
		{"april", "apr", time.April},
		{"may", "may", time.May},
		{"june", "jun", time.June},
		{"july", "jul", time.July},
		{"august", "aug", time.August},
		{"september", "sep", time.September},
		{"october", "oct", time.October},
		{"november", "nov", time.November},
		{"december", "dec", time.December},
	}
	for _, c := range months {
		if isAbbrev(l, c.long, c.min) {
			return c.m, nil
		}
	}
	return 0, fmt.Errorf("invalid month %q", s)
}

func isAbbrev(s string, long string, min string) bool {
	return strings.HasPrefix(s, min) && strings.HasPrefix(long, s)
}
