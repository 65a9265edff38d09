package zoneinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoneinfo/go-tzif/tzif"
)

// zoneBytes is a complete single-type TZif stream: one local time type
// with a one-hour offset and a lone NUL designation.
func zoneBytes() []byte {
	return []byte{
		0x54, 0x5a, 0x69, 0x66, // magic
		0x00, // version
		0x00, 0x00, 0x00, 0x00, 0x00, // reserved
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, // isutcnt
		0x00, 0x00, 0x00, 0x00, // isstdcnt
		0x00, 0x00, 0x00, 0x00, // leapcnt
		0x00, 0x00, 0x00, 0x00, // timecnt
		0x00, 0x00, 0x00, 0x01, // typecnt
		0x00, 0x00, 0x00, 0x01, // charcnt
		0x00, 0x00, 0x0e, 0x10, // utoff
		0x00, // isdst
		0x00, // desigidx
		0x00, // designations
	}
}

func writeZone(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, zoneBytes(), 0o644))
	return path
}

func TestSearchPaths(t *testing.T) {
	t.Setenv("ZONEINFO", "")
	paths := SearchPaths()
	require.NotEmpty(t, paths)
	assert.Equal(t, "/usr/share/zoneinfo", paths[0])

	t.Setenv("ZONEINFO", "/custom/zoneinfo")
	paths = SearchPaths()
	assert.Equal(t, "/custom/zoneinfo", paths[0])
	assert.Contains(t, paths, "/usr/share/zoneinfo")
}

func TestCheckName(t *testing.T) {
	for _, name := range []string{"UTC", "Europe/Berlin", "America/Argentina/Ushuaia"} {
		assert.NoError(t, CheckName(name), name)
	}
	for _, name := range []string{"", "/etc/passwd", "../outside", "Europe/../../etc/passwd"} {
		assert.ErrorIs(t, CheckName(name), ErrInvalidName, name)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeZone(t, dir, "Test/Zone")
	t.Setenv("ZONEINFO", dir)

	f, err := LoadFile("Test/Zone")
	require.NoError(t, err)
	require.Len(t, f.V1.Data.LocalTimeTypeRecords, 1)
	assert.Equal(t, int32(3600), f.V1.Data.LocalTimeTypeRecords[0].Utoff)
}

func TestLoadFile_NotFound(t *testing.T) {
	t.Setenv("ZONEINFO", t.TempDir())
	_, err := LoadFile("No/Such/Zone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFile_InvalidName(t *testing.T) {
	_, err := LoadFile("../evil")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestLoadFile_NotTZif(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("hello"), 0o644))
	t.Setenv("ZONEINFO", dir)

	_, err := LoadFile("README")
	assert.ErrorIs(t, err, tzif.ErrInvalidSignature)
}

func TestSystem(t *testing.T) {
	dir := t.TempDir()
	writeZone(t, dir, "UTC")
	writeZone(t, dir, "Test/Zone")
	t.Setenv("ZONEINFO", dir)

	t.Run("empty TZ means UTC", func(t *testing.T) {
		t.Setenv("TZ", "")
		name, _, err := System()
		require.NoError(t, err)
		assert.Equal(t, "UTC", name)
	})

	t.Run("named zone", func(t *testing.T) {
		t.Setenv("TZ", "Test/Zone")
		name, f, err := System()
		require.NoError(t, err)
		assert.Equal(t, "Test/Zone", name)
		assert.NotEmpty(t, f.V1.Data.LocalTimeTypeRecords)
	})

	t.Run("leading colon", func(t *testing.T) {
		t.Setenv("TZ", ":Test/Zone")
		name, _, err := System()
		require.NoError(t, err)
		assert.Equal(t, "Test/Zone", name)
	})

	t.Run("absolute path", func(t *testing.T) {
		path := writeZone(t, dir, "direct")
		t.Setenv("TZ", path)
		name, _, err := System()
		require.NoError(t, err)
		assert.Equal(t, path, name)
	})

	t.Run("unknown zone", func(t *testing.T) {
		t.Setenv("TZ", "Not/Installed")
		_, _, err := System()
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
