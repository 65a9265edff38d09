// Package tzif implements a decoder for the TZif file format according to RFC8536.
// https://datatracker.ietf.org/doc/html/rfc8536
package tzif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// NOTE: All multi-octet integer values MUST be stored in network octet
// order format (high-order octet first, otherwise known as big-endian),
// with all bits significant.  Signed integer values MUST be represented
// using two's complement.
var order = binary.BigEndian

// ErrInvalidSignature is returned when the first four octets of a header
// are not the Magic sequence. Every other decoding failure wraps the I/O
// error reported by the underlying reader.
var ErrInvalidSignature = errors.New("invalid signature")

// Version represents the version of a TZif file.
// The version is an octet identifying the version of the file's format.
// In V1, time values are 32bit (four-octets) and in V2 upwards time
// values are 64bit (eight-octets).
type Version byte

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 (0x32)"
	case V3:
		return "V3 (0x33)"
	case V4:
		return "V4 (0x34)"
	default:
		return fmt.Sprintf("<undefined version (%d)>", byte(v))
	}
}

// TimeSize returns the octet width of one time value in a data block of
// this version: four octets for V1, eight octets for anything else.
func (v Version) TimeSize() int {
	if v == V1 {
		return 4
	}
	return 8
}

const (
	// V1 represents a version 1 TZif file.
	//
	// NUL (0x00)  Version 1 - The file contains only the version 1
	// header and data block.  Version 1 files MUST NOT contain a
	// version 2+ header, data block, or footer.
	V1 Version = 0x00
	// V2 represents a version 2 TZif file.
	//
	// '2' (0x32)  Version 2 - The file MUST contain the version 1 header
	// and data block, a version 2+ header and data block, and a
	// footer.  The TZ string in the footer (Section 3.3), if
	// nonempty, MUST strictly adhere to the requirements for the TZ
	// environment variable as defined in Section 8.3 of the "Base
	// Definitions" volume of [POSIX] and MUST encode the POSIX
	// portable character set as ASCII.
	V2 Version = 0x32
	// V3 represents a version 3 TZif file. Same as V2, except that the
	// TZ string in the footer MAY use the extensions described in
	// Section 3.3.1 of RFC8536.
	V3 Version = 0x33 // '3'
	// V4 represents a version 4 TZif file. It is not specified in
	// RFC8536 as of Feb 2019, but is specified in the tzfile(5) man
	// page: the first leap second record can have a correction that is
	// neither +1 nor -1, and a trailing record repeating the previous
	// correction denotes the expiration of the leap second table.
	V4 Version = 0x34 // '4'
)

// Magic is the four-octet ASCII sequence "TZif" (0x54 0x5A 0x69 0x66),
// which identifies the file as utilizing the Time Zone Information Format.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// Header is the header of one TZif block.
//
// A TZif header is structured as follows (the lengths of multi-octet
// fields are shown in parentheses):
//
//	+---------------+---+
//	|  magic    (4) |ver|
//	+---------------+---+---------------------------------------+
//	|           [unused - reserved for future use] (15)         |
//	+---------------+---------------+---------------+-----------+
//	|  isutcnt  (4) |  isstdcnt (4) |  leapcnt  (4) |
//	+---------------+---------------+---------------+
//	|  timecnt  (4) |  typecnt  (4) |  charcnt  (4) |
//	+---------------+---------------+---------------+
//
// The reserved octets are consumed during reading but carry no
// information and are not retained.
type Header struct {
	// Version is an octet identifying the version of the file's format.
	Version Version

	// Isutcnt is a four-octet unsigned integer specifying the number of UT/
	// local indicators contained in the data block -- MUST either be
	// zero or equal to "typecnt".
	Isutcnt uint32

	// Isstdcnt is a four-octet unsigned integer specifying the number of
	// standard/wall indicators contained in the data block -- MUST
	// either be zero or equal to "typecnt".
	Isstdcnt uint32

	// Leapcnt is a four-octet unsigned integer specifying the number of
	// leap-second records contained in the data block.
	Leapcnt uint32

	// Timecnt is a four-octet unsigned integer specifying the number of
	// transition times contained in the data block.
	Timecnt uint32

	// Typecnt is a four-octet unsigned integer specifying the number of
	// local time type records contained in the data block -- MUST NOT be
	// zero.  (Although local time type records convey no useful
	// information in files that have nonempty TZ strings but no
	// transitions, at least one such record is nevertheless required
	// because many TZif readers reject files that have zero time types.)
	Typecnt uint32

	// Charcnt is a four-octet unsigned integer specifying the total number
	// of octets used by the set of time zone designations contained in
	// the data block - MUST NOT be zero.  The count includes the
	// trailing NUL (0x00) octet at the end of the last time zone
	// designation.
	Charcnt uint32
}

// headerFields mirrors the fixed octet layout following the magic.
type headerFields struct {
	Version  Version
	Reserved [15]byte
	Isutcnt  uint32
	Isstdcnt uint32
	Leapcnt  uint32
	Timecnt  uint32
	Typecnt  uint32
	Charcnt  uint32
}

// ReadHeader reads one 44-octet header from r. The magic is checked
// before anything else is consumed, so a stream that does not carry the
// signature fails with ErrInvalidSignature after only four octets.
func ReadHeader(r io.Reader) (Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Header{}, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic[:], Magic[:]) {
		return Header{}, fmt.Errorf("%w: % x", ErrInvalidSignature, magic)
	}
	var f headerFields
	if err := binary.Read(r, order, &f); err != nil {
		return Header{}, fmt.Errorf("reading counts: %w", err)
	}
	return Header{
		Version:  f.Version,
		Isutcnt:  f.Isutcnt,
		Isstdcnt: f.Isstdcnt,
		Leapcnt:  f.Leapcnt,
		Timecnt:  f.Timecnt,
		Typecnt:  f.Typecnt,
		Charcnt:  f.Charcnt,
	}, nil
}

// DataBlock is the data block of a TZif file, decoded into its
// version-independent form: time values are widened to 64 bits no matter
// whether the block stored them as four or eight octets.
// The data block is structured as follows, with TIME_SIZE being 4 for
// version 1 and 8 for version 2 upwards:
//
//	+---------------------------------------------------------+
//	|  transition times          (timecnt x TIME_SIZE)        |
//	+---------------------------------------------------------+
//	|  transition types          (timecnt)                    |
//	+---------------------------------------------------------+
//	|  local time type records   (typecnt x 6)                |
//	+---------------------------------------------------------+
//	|  time zone designations    (charcnt)                    |
//	+---------------------------------------------------------+
//	|  leap-second records       (leapcnt x (TIME_SIZE + 4))  |
//	+---------------------------------------------------------+
//	|  standard/wall indicators  (isstdcnt)                   |
//	+---------------------------------------------------------+
//	|  UT/local indicators       (isutcnt)                    |
//	+---------------------------------------------------------+
type DataBlock struct {
	// TransitionTimes is a series of UNIX leap-time values sorted in
	// strictly ascending order.  Each value is used as a transition
	// time at which the rules for computing local time may change.
	// The number of time values is specified by the "timecnt" field in
	// the header.
	TransitionTimes []int64

	// TransitionTypes is a series of one-octet unsigned integers specifying
	// the type of local time of the corresponding transition time.
	// These values serve as zero-based indices into the array of local
	// time type records.  The number of type indices is specified by the
	// "timecnt" field in the header.  Each type index MUST be in the
	// range [0, "typecnt" - 1].
	TransitionTypes []uint8

	// LocalTimeTypeRecords is a series of six-octet records specifying a
	// local time type.  The number of records is specified by the
	// "typecnt" field in the header.
	LocalTimeTypeRecords []LocalTimeTypeRecord

	// TimeZoneDesignations is a series of octets constituting an array of
	// NUL-terminated (0x00) time zone designation strings.  The total
	// number of octets is specified by the "charcnt" field in the
	// header.  Note that two designations MAY overlap if one is a suffix
	// of the other.
	TimeZoneDesignations []byte

	// LeapSecondRecords is a series of records specifying the
	// corrections that need to be applied to UTC in order to determine
	// TAI.  The records are sorted by the occurrence time in strictly
	// ascending order.  The number of records is specified by the
	// "leapcnt" field in the header.
	LeapSecondRecords []LeapSecondRecord

	// StandardWallIndicators is a series of one-octet values indicating
	// whether the transition times associated with local time types were
	// specified as standard time (1) or wall-clock time (0).  The
	// number of values is specified by the "isstdcnt" field in the
	// header.  If "isstdcnt" is zero (0), all transition times
	// associated with local time types are assumed to be specified as
	// wall time.  The octets are retained as read.
	StandardWallIndicators []byte

	// UTLocalIndicators is a series of one-octet values indicating whether
	// the transition times associated with local time types were
	// specified as UT (1) or local time (0).  The number of values is
	// specified by the "isutcnt" field in the header.  If "isutcnt" is
	// zero (0), all transition times associated with local time types
	// are assumed to be specified as local time.  The octets are
	// retained as read.
	UTLocalIndicators []byte
}

// ReadDataBlock reads the data block described by h from r. The
// version recorded in h selects the time value width. Every region is
// read in full; a short region fails the whole read, no partial block is
// ever surfaced.
func ReadDataBlock(r io.Reader, h Header) (DataBlock, error) {
	var (
		b    DataBlock
		size = h.Version.TimeSize()
	)
	if h.Timecnt > 0 {
		raw := make([]byte, int(h.Timecnt)*size)
		if _, err := io.ReadFull(r, raw); err != nil {
			return b, fmt.Errorf("reading transition times: %w", err)
		}
		b.TransitionTimes = make([]int64, h.Timecnt)
		for i := range b.TransitionTimes {
			b.TransitionTimes[i] = decodeTime(raw[i*size : (i+1)*size])
		}
	}
	if h.Timecnt > 0 {
		b.TransitionTypes = make([]uint8, h.Timecnt)
		if _, err := io.ReadFull(r, b.TransitionTypes); err != nil {
			return b, fmt.Errorf("reading transition types: %w", err)
		}
	}
	if h.Typecnt > 0 {
		raw := make([]byte, 6*int(h.Typecnt))
		if _, err := io.ReadFull(r, raw); err != nil {
			return b, fmt.Errorf("reading local time type records: %w", err)
		}
		b.LocalTimeTypeRecords = make([]LocalTimeTypeRecord, h.Typecnt)
		for i := range b.LocalTimeTypeRecords {
			rec := raw[i*6 : (i+1)*6]
			b.LocalTimeTypeRecords[i] = LocalTimeTypeRecord{
				Utoff: int32(order.Uint32(rec)),
				Dst:   rec[4] == 1,
				Idx:   rec[5],
			}
		}
	}
	if h.Charcnt > 0 {
		b.TimeZoneDesignations = make([]byte, h.Charcnt)
		if _, err := io.ReadFull(r, b.TimeZoneDesignations); err != nil {
			return b, fmt.Errorf("reading time zone designations: %w", err)
		}
	}
	if h.Leapcnt > 0 {
		stride := size + 4
		raw := make([]byte, int(h.Leapcnt)*stride)
		if _, err := io.ReadFull(r, raw); err != nil {
			return b, fmt.Errorf("reading leap second records: %w", err)
		}
		b.LeapSecondRecords = make([]LeapSecondRecord, h.Leapcnt)
		for i := range b.LeapSecondRecords {
			rec := raw[i*stride : (i+1)*stride]
			b.LeapSecondRecords[i] = LeapSecondRecord{
				Occur: decodeTime(rec[:size]),
				Corr:  int32(order.Uint32(rec[size:])),
			}
		}
	}
	if h.Isstdcnt > 0 {
		b.StandardWallIndicators = make([]byte, h.Isstdcnt)
		if _, err := io.ReadFull(r, b.StandardWallIndicators); err != nil {
			return b, fmt.Errorf("reading standard/wall indicators: %w", err)
		}
	}
	if h.Isutcnt > 0 {
		b.UTLocalIndicators = make([]byte, h.Isutcnt)
		if _, err := io.ReadFull(r, b.UTLocalIndicators); err != nil {
			return b, fmt.Errorf("reading UT/local indicators: %w", err)
		}
	}
	return b, nil
}

// decodeTime interprets p as a big-endian signed integer of four or
// eight octets, sign-extending the four-octet form.
func decodeTime(p []byte) int64 {
	if len(p) == 4 {
		return int64(int32(order.Uint32(p)))
	}
	return int64(order.Uint64(p))
}

// LocalTimeTypeRecord represents a local time type record.
// Each record has the following format (the lengths of multi-octet fields
// are shown in parentheses):
//
//	+---------------+---+---+
//	|  utoff (4)    |dst|idx|
//	+---------------+---+---+
type LocalTimeTypeRecord struct {
	// Utoff is a four-octet signed integer specifying the number of
	// seconds to be added to UT in order to determine local time.
	// The value MUST NOT be -2**31 and SHOULD be in the range
	// [-89999, 93599] (i.e., its value SHOULD be more than -25 hours
	// and less than 26 hours).
	Utoff int32

	// Dst is a one-octet value indicating whether local time should
	// be considered Daylight Saving Time (DST).  The value MUST be 0
	// or 1.  A value of one (1) indicates that this type of time is
	// DST.  Dst is true exactly when the octet equals 1.
	Dst bool

	// Idx is a one-octet unsigned integer specifying a zero-based
	// index into the series of time zone designation octets, thereby
	// selecting a particular designation string.  Each index MUST be
	// in the range [0, "charcnt" - 1]; it designates the
	// NUL-terminated string of octets starting at position "idx" in
	// the time zone designations.  (This string MAY be empty.)
	Idx uint8
}

// LeapSecondRecord represents a leap-second record. The occurrence is
// stored as four octets in version 1 data blocks and eight octets in
// version 2+ data blocks; decoded records always carry it widened to 64
// bits.
//
//	+---------------+---------------+
//	| occur (4 / 8) |  corr (4)     |
//	+---------------+---------------+
type LeapSecondRecord struct {
	// Occur is a UNIX leap time value specifying the time at which a
	// leap-second correction occurs.  The first value, if present,
	// MUST be nonnegative, and each later value MUST be at least
	// 2419199 greater than the previous value.
	Occur int64

	// Corr is a four-octet signed integer specifying the value of
	// LEAPCORR on or after the occurrence.  The correction value in
	// the first leap-second record, if present, MUST be either one
	// (1) or minus one (-1), and the correction values in adjacent
	// leap-second records MUST differ by exactly one (1).
	Corr int32
}

// Footer represents the footer of a TZif file.
// The footer is structured as follows (the lengths of multi-octet
// fields are shown in parentheses):
//
//	+---+--------------------+---+
//	| NL|  TZ string (0...)  |NL |
//	+---+--------------------+---+
type Footer struct {
	// TZString contains a rule for computing local time changes after the last
	// transition time stored in the version 2+ data block.  The string
	// is either empty or uses the expanded format of the "TZ"
	// environment variable as defined in Section 8.3 of the "Base
	// Definitions" volume of [POSIX] with ASCII encoding, possibly
	// utilizing extensions described in Section 3.3.1 of RFC8536 in
	// version 3 files.  If the string is empty, the corresponding
	// information is not available.  The string MUST NOT contain NUL
	// octets or be NUL-terminated, and it SHOULD NOT begin with the
	// ':' (colon) character.
	TZString []byte
}

var asciiNewLine = byte(0x0A)

// ReadFooter reads a footer from r: one NL octet, the TZ string, and the
// closing NL octet. It reads one octet at a time and never consumes past
// the closing NL.
func ReadFooter(r io.Reader) (Footer, error) {
	var f Footer
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return f, fmt.Errorf("reading newline: %w", err)
	}
	if buf[0] != asciiNewLine {
		return f, fmt.Errorf("expected newline: %v", buf[0])
	}
	var b []byte
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return f, fmt.Errorf("reading TZ string: %w", err)
		}
		if buf[0] == asciiNewLine {
			break
		}
		b = append(b, buf[0])
	}
	f.TZString = b
	return f, nil
}
