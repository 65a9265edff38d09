package zoneapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v5"
)

// zoneBytes is a minimal version 1 TZif file: a single local time type
// with a one-hour offset and a one-byte designation.
func zoneBytes() []byte {
	return []byte{
		'T', 'Z', 'i', 'f', // magic
		0x00,                         // version 1
		0, 0, 0, 0, 0, 0, 0, 0,       // reserved
		0, 0, 0, 0, 0, 0, 0,          // reserved
		0x00, 0x00, 0x00, 0x00, // isutcnt
		0x00, 0x00, 0x00, 0x00, // isstdcnt
		0x00, 0x00, 0x00, 0x00, // leapcnt
		0x00, 0x00, 0x00, 0x00, // timecnt
		0x00, 0x00, 0x00, 0x01, // typecnt
		0x00, 0x00, 0x00, 0x01, // charcnt
		0x00, 0x00, 0x0e, 0x10, // utoff (+3600)
		0x00,                   // isdst
		0x00,                   // desigidx
		0x00,                   // designations
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "UTC"), zoneBytes())
	mustWrite(t, filepath.Join(dir, "Europe", "Berlin"), zoneBytes())
	mustWrite(t, filepath.Join(dir, "zone.tab"), []byte("# not a zone\n"))
	e := echo.New()
	e.Use(RequestID())
	NewServer(dir, nil).Register(e)
	return e
}

func mustWrite(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func get(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t)

	rec := get(t, e, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Errorf("missing %s header", requestIDHeader)
	}
}

func TestListZones(t *testing.T) {
	e := newTestServer(t)

	rec := get(t, e, "/v1/zones")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Zones []string `json:"zones"`
		Count int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	want := []string{"Europe/Berlin", "UTC"}
	if body.Count != len(want) || len(body.Zones) != len(want) {
		t.Fatalf("zones = %v (count %d), want %v", body.Zones, body.Count, want)
	}
	for i := range want {
		if body.Zones[i] != want[i] {
			t.Errorf("zones[%d] = %q, want %q", i, body.Zones[i], want[i])
		}
	}
}

func TestGetZone(t *testing.T) {
	e := newTestServer(t)

	rec := get(t, e, "/v1/zones/Europe/Berlin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		V1 struct {
			LocalTimeTypes []struct {
				UTOffset int `json:"ut_offset"`
			} `json:"local_time_types"`
			Designations []string `json:"designations"`
		} `json:"v1"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body.V1.LocalTimeTypes) != 1 || body.V1.LocalTimeTypes[0].UTOffset != 3600 {
		t.Errorf("local time types = %+v, want one with ut_offset 3600", body.V1.LocalTimeTypes)
	}
}

func TestGetZone_NotFound(t *testing.T) {
	e := newTestServer(t)

	rec := get(t, e, "/v1/zones/Atlantis/Capital")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetZone_InvalidName(t *testing.T) {
	e := newTestServer(t)

	for _, path := range []string{
		"/v1/zones/",
		"/v1/zones/Europe/../../etc/passwd",
	} {
		rec := get(t, e, path)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s: status = %d, want %d", path, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestGetZone_NotTZif(t *testing.T) {
	e := newTestServer(t)

	rec := get(t, e, "/v1/zones/zone.tab")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}
