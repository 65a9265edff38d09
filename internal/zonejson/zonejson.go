// Package zonejson flattens decoded TZif structures into a JSON
// friendly view.
//
// The structures in package tzif stay close to the RFC8536 wire
// layout; this package resolves the indirections that make that layout
// awkward to consume as JSON: transition times are paired with their
// type indices, designation indices become strings, and the indicator
// octets are folded into the local time types they describe.
package zonejson

import (
	"bytes"

	"github.com/zoneinfo/go-tzif/tzif"
)

// File is the JSON view of a decoded TZif file.
type File struct {
	V1 Block  `json:"v1"`
	V2 *Block `json:"v2,omitempty"`
	TZ string `json:"tz,omitempty"`
}

// Block is the JSON view of one header and data block pair.
type Block struct {
	Version        int             `json:"version"`
	Transitions    []Transition    `json:"transitions,omitempty"`
	LocalTimeTypes []LocalTimeType `json:"local_time_types"`
	Designations   []string        `json:"designations"`
	LeapSeconds    []LeapSecond    `json:"leap_seconds,omitempty"`
}

// Transition pairs a transition time with the index of the local time
// type in effect from that time on.
type Transition struct {
	Unix int64 `json:"unix"`
	Type int   `json:"type"`
}

// LocalTimeType is one local time type record with its designation
// resolved and the standard/UT indicator octets folded in.
type LocalTimeType struct {
	UTOffset    int32  `json:"ut_offset"`
	DST         bool   `json:"dst"`
	Designation string `json:"designation"`
	Standard    bool   `json:"standard,omitempty"`
	UT          bool   `json:"ut,omitempty"`
}

// LeapSecond is one leap second record.
type LeapSecond struct {
	Occurrence int64 `json:"occurrence"`
	Correction int32 `json:"correction"`
}

// FromFile builds the JSON view of f.
func FromFile(f tzif.File) File {
	out := File{V1: fromBlock(f.V1)}
	if f.V2 != nil {
		b := fromBlock(*f.V2)
		out.V2 = &b
	}
	if f.Footer != nil {
		out.TZ = string(f.Footer.TZString)
	}
	return out
}

func fromBlock(b tzif.Block) Block {
	out := Block{
		Version:      versionNumber(b.Header.Version),
		Designations: splitDesignations(b.Data.TimeZoneDesignations),
	}
	for i, at := range b.Data.TransitionTimes {
		tr := Transition{Unix: at}
		if i < len(b.Data.TransitionTypes) {
			tr.Type = int(b.Data.TransitionTypes[i])
		}
		out.Transitions = append(out.Transitions, tr)
	}
	for i, rec := range b.Data.LocalTimeTypeRecords {
		ltt := LocalTimeType{
			UTOffset:    rec.Utoff,
			DST:         rec.Dst,
			Designation: designationAt(b.Data.TimeZoneDesignations, rec.Idx),
		}
		if i < len(b.Data.StandardWallIndicators) {
			ltt.Standard = b.Data.StandardWallIndicators[i] == 1
		}
		if i < len(b.Data.UTLocalIndicators) {
			ltt.UT = b.Data.UTLocalIndicators[i] == 1
		}
		out.LocalTimeTypes = append(out.LocalTimeTypes, ltt)
	}
	for _, leap := range b.Data.LeapSecondRecords {
		out.LeapSeconds = append(out.LeapSeconds, LeapSecond{
			Occurrence: leap.Occur,
			Correction: leap.Corr,
		})
	}
	return out
}

func versionNumber(v tzif.Version) int {
	switch v {
	case tzif.V1:
		return 1
	case tzif.V2:
		return 2
	case tzif.V3:
		return 3
	case tzif.V4:
		return 4
	default:
		return int(v)
	}
}

// designationAt returns the NUL-terminated string starting at idx.
func designationAt(des []byte, idx uint8) string {
	if int(idx) >= len(des) {
		return ""
	}
	s := des[idx:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}

// splitDesignations splits the designation octets into the strings
// they encode. Overlapping designations appear once.
func splitDesignations(des []byte) []string {
	var out []string
	for len(des) > 0 {
		i := bytes.IndexByte(des, 0)
		if i < 0 {
			out = append(out, string(des))
			break
		}
		out = append(out, string(des[:i]))
		des = des[i+1:]
	}
	return out
}
