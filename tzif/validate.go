package tzif

import (
	"errors"
	"fmt"
)

// Validate checks f against the structural requirements of RFC8536 that
// Decode deliberately does not enforce: nonzero typecnt and charcnt,
// indicator counts matching typecnt, NUL-terminated designations,
// strictly ascending transition times, and in-range type indices.
// Decode never calls Validate; malformed-but-parseable files decode
// fine, and callers that care run this afterwards.
func Validate(f File) error {
	var errs []error
	errs = append(errs, validateBlock("v1", f.V1)...)
	if f.V2 != nil {
		errs = append(errs, validateBlock("v2", *f.V2)...)
	}
	return errors.Join(errs...)
}

func validateBlock(label string, b Block) []error {
	var (
		err    []error
		data   = b.Data
		header = b.Header
	)

	// Isutcnt
	if header.Isutcnt != 0 && header.Isutcnt != header.Typecnt {
		err = append(err, fmt.Errorf("invalid %s isutcnt (%d): must be 0 or equal to typecnt (%d)", label, header.Isutcnt, header.Typecnt))
	}
	if len(data.UTLocalIndicators) != int(header.Isutcnt) {
		err = append(err, fmt.Errorf("invalid %s isutcnt: header = %d, data = %d", label, header.Isutcnt, len(data.UTLocalIndicators)))
	}

	// Isstdcnt
	if header.Isstdcnt != 0 && header.Isstdcnt != header.Typecnt {
		err = append(err, fmt.Errorf("invalid %s isstdcnt (%d): must be 0 or equal to typecnt (%d)", label, header.Isstdcnt, header.Typecnt))
	}
	if len(data.StandardWallIndicators) != int(header.Isstdcnt) {
		err = append(err, fmt.Errorf("invalid %s isstdcnt: header = %d, data = %d", label, header.Isstdcnt, len(data.StandardWallIndicators)))
	}

	// Leapcnt
	if len(data.LeapSecondRecords) != int(header.Leapcnt) {
		err = append(err, fmt.Errorf("invalid %s leapcnt: header = %d, data = %d", label, header.Leapcnt, len(data.LeapSecondRecords)))
	}

	// Timecnt
	if len(data.TransitionTimes) != int(header.Timecnt) {
		err = append(err, fmt.Errorf("invalid %s timecnt: header = %d, transition times = %d", label, header.Timecnt, len(data.TransitionTimes)))
	}
	if times, types := len(data.TransitionTimes), len(data.TransitionTypes); times != types {
		err = append(err, fmt.Errorf("inconsistent %s transitions: transition times = %d, transition types = %d", label, times, types))
	}
	for i := 1; i < len(data.TransitionTimes); i++ {
		if data.TransitionTimes[i] <= data.TransitionTimes[i-1] {
			err = append(err, fmt.Errorf("invalid %s transition times: not strictly ascending at index %d", label, i))
			break
		}
	}
	for i, typ := range data.TransitionTypes {
		if uint32(typ) >= header.Typecnt {
			err = append(err, fmt.Errorf("invalid %s transition type at index %d: %d out of range [0, %d)", label, i, typ, header.Typecnt))
			break
		}
	}

	// Typecnt
	if header.Typecnt == 0 {
		err = append(err, fmt.Errorf("invalid %s typecnt: must not be zero", label))
	}
	if len(data.LocalTimeTypeRecords) != int(header.Typecnt) {
		err = append(err, fmt.Errorf("invalid %s typecnt: header = %d, data = %d", label, header.Typecnt, len(data.LocalTimeTypeRecords)))
	}
	for i, rec := range data.LocalTimeTypeRecords {
		if uint32(rec.Idx) >= header.Charcnt {
			err = append(err, fmt.Errorf("invalid %s local time type record %d: designation index %d out of range [0, %d)", label, i, rec.Idx, header.Charcnt))
			break
		}
	}

	// Charcnt
	if header.Charcnt == 0 {
		err = append(err, fmt.Errorf("invalid %s charcnt: must not be zero", label))
	}
	if len(data.TimeZoneDesignations) != int(header.Charcnt) {
		err = append(err, fmt.Errorf("invalid %s charcnt: header = %d, data = %d", label, header.Charcnt, len(data.TimeZoneDesignations)))
	}
	if n := len(data.TimeZoneDesignations); n > 0 && data.TimeZoneDesignations[n-1] != 0 {
		err = append(err, fmt.Errorf("invalid %s time zone designations: missing null terminator", label))
	}
	return err
}
