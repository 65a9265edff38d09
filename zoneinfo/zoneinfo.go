// Package zoneinfo locates and decodes time zone data installed on the
// host system.
//
// Compiled zone files are looked up in the conventional platform
// directories, overridable with the ZONEINFO environment variable. The
// package only surfaces the decoded TZif structures; computing local
// times from them is up to the caller.
package zoneinfo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zoneinfo/go-tzif/tzif"
)

var (
	// ErrInvalidName is returned for zone names that are empty,
	// absolute, or would escape the zoneinfo directory.
	ErrInvalidName = errors.New("invalid zone name")

	// ErrNotFound is returned when no search path contains the zone.
	ErrNotFound = errors.New("zone not found")
)

// platformDirs are the directories Unix systems conventionally install
// compiled zone data to. They are searched in order.
var platformDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
	"/etc/zoneinfo",
}

// localtimeFile is the zone the system is configured to use, usually a
// symlink into one of the platform directories.
const localtimeFile = "/etc/localtime"

// SearchPaths returns the zoneinfo directories in lookup order. If the
// ZONEINFO environment variable is set, its value is consulted first.
func SearchPaths() []string {
	if dir := os.Getenv("ZONEINFO"); dir != "" {
		return append([]string{dir}, platformDirs...)
	}
	return append([]string(nil), platformDirs...)
}

// CheckName reports whether name is acceptable as a zone name:
// non-empty, relative, and free of ".." elements. Anything else could
// address files outside the zoneinfo directories.
func CheckName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidName, name)
	}
	for _, elem := range strings.Split(name, "/") {
		if elem == ".." {
			return fmt.Errorf("%w: %q escapes the zone directory", ErrInvalidName, name)
		}
	}
	return nil
}

// LoadFile resolves a zone name like "Europe/Berlin" against
// SearchPaths and decodes the first match.
func LoadFile(name string) (tzif.File, error) {
	if err := CheckName(name); err != nil {
		return tzif.File{}, err
	}
	for _, dir := range SearchPaths() {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return DecodePath(path)
	}
	return tzif.File{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// DecodePath decodes the TZif file at path.
func DecodePath(path string) (tzif.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return tzif.File{}, fmt.Errorf("open zone file: %w", err)
	}
	defer f.Close()
	file, err := tzif.Decode(bufio.NewReader(f))
	if err != nil {
		return tzif.File{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return file, nil
}

// System returns the name and data of the zone the host is configured
// to use. The TZ environment variable takes precedence: an unset TZ
// means the system zone at /etc/localtime, an empty TZ means UTC, and
// any other value is resolved like a LoadFile argument. A leading
// colon is ignored and absolute values are decoded directly, mirroring
// what libc does with TZ.
func System() (string, tzif.File, error) {
	tz, ok := os.LookupEnv("TZ")
	if !ok {
		f, err := DecodePath(localtimeFile)
		if err != nil {
			return "", tzif.File{}, err
		}
		return localtimeName(), f, nil
	}
	if tz == "" {
		f, err := LoadFile("UTC")
		if err != nil {
			return "", tzif.File{}, err
		}
		return "UTC", f, nil
	}
	tz = strings.TrimPrefix(tz, ":")
	if filepath.IsAbs(tz) {
		f, err := DecodePath(tz)
		if err != nil {
			return "", tzif.File{}, err
		}
		return tz, f, nil
	}
	f, err := LoadFile(tz)
	if err != nil {
		return "", tzif.File{}, err
	}
	return tz, f, nil
}

// localtimeName derives a zone name from the localtime symlink target,
// falling back to "Local" when the target is not inside a zoneinfo
// directory.
func localtimeName() string {
	target, err := os.Readlink(localtimeFile)
	if err != nil {
		return "Local"
	}
	const marker = "zoneinfo/"
	if i := strings.LastIndex(target, marker); i >= 0 {
		return target[i+len(marker):]
	}
	return "Local"
}
