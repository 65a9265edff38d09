package tzif

import (
	"strings"
	"testing"
)

// validFile is structurally sound under Validate: one local time type,
// NUL-terminated designations, matching counts throughout.
func validFile() File {
	return File{
		V1: Block{
			Header: Header{Version: V1, Timecnt: 2, Typecnt: 1, Charcnt: 4},
			Data: DataBlock{
				TransitionTimes: []int64{100, 200},
				TransitionTypes: []uint8{0, 0},
				LocalTimeTypeRecords: []LocalTimeTypeRecord{
					{Utoff: 3600, Dst: false, Idx: 0},
				},
				TimeZoneDesignations: []byte("CET\x00"),
			},
		},
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(validFile()); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestValidate_ReportsEveryViolation(t *testing.T) {
	f := File{
		V1: Block{
			// Counts promise more than the data holds, and typecnt
			// and charcnt are zero.
			Header: Header{Version: V1, Isutcnt: 3, Leapcnt: 1},
		},
	}
	err := Validate(f)
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{
		"isutcnt (3): must be 0 or equal to typecnt (0)",
		"invalid v1 isutcnt: header = 3, data = 0",
		"invalid v1 leapcnt: header = 1, data = 0",
		"invalid v1 typecnt: must not be zero",
		"invalid v1 charcnt: must not be zero",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error does not mention %q:\n%v", want, err)
		}
	}
}

func TestValidate_TransitionTimesNotAscending(t *testing.T) {
	f := validFile()
	f.V1.Data.TransitionTimes = []int64{200, 100}
	err := Validate(f)
	if err == nil || !strings.Contains(err.Error(), "not strictly ascending") {
		t.Errorf("Validate() = %v, want ascending-order error", err)
	}

	// Equal neighbors are just as invalid as descending ones.
	f.V1.Data.TransitionTimes = []int64{100, 100}
	err = Validate(f)
	if err == nil || !strings.Contains(err.Error(), "not strictly ascending") {
		t.Errorf("Validate() = %v, want ascending-order error", err)
	}
}

func TestValidate_TransitionTypeOutOfRange(t *testing.T) {
	f := validFile()
	f.V1.Data.TransitionTypes = []uint8{0, 7}
	err := Validate(f)
	if err == nil || !strings.Contains(err.Error(), "transition type at index 1: 7 out of range") {
		t.Errorf("Validate() = %v, want out-of-range error", err)
	}
}

func TestValidate_DesignationIndexOutOfRange(t *testing.T) {
	f := validFile()
	f.V1.Data.LocalTimeTypeRecords[0].Idx = 9
	err := Validate(f)
	if err == nil || !strings.Contains(err.Error(), "designation index 9 out of range") {
		t.Errorf("Validate() = %v, want out-of-range error", err)
	}
}

func TestValidate_MissingNullTerminator(t *testing.T) {
	f := validFile()
	f.V1.Data.TimeZoneDesignations = []byte("CET!")
	err := Validate(f)
	if err == nil || !strings.Contains(err.Error(), "missing null terminator") {
		t.Errorf("Validate() = %v, want terminator error", err)
	}
}

func TestValidate_SecondBlock(t *testing.T) {
	f := validFile()
	f.V2 = &Block{
		Header: Header{Version: V2, Typecnt: 1, Charcnt: 4},
		Data: DataBlock{
			LocalTimeTypeRecords: []LocalTimeTypeRecord{
				{Utoff: 3600, Dst: false, Idx: 0},
			},
			TimeZoneDesignations: []byte("CET\x00"),
		},
	}
	if err := Validate(f); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	f.V2.Data.TimeZoneDesignations = []byte("CET!")
	err := Validate(f)
	if err == nil || !strings.Contains(err.Error(), "invalid v2") {
		t.Errorf("Validate() = %v, want v2-labeled error", err)
	}
}
