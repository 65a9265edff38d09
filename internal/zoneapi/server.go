// Package zoneapi serves decoded time zone data over HTTP.
//
// The API is read-only and backed by a single zoneinfo directory:
//
//	GET /healthz        liveness probe
//	GET /v1/zones       names of all zones below the directory
//	GET /v1/zones/NAME  decoded contents of one zone
package zoneapi

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v5"
	"go.uber.org/zap"

	"github.com/zoneinfo/go-tzif/internal/zonejson"
	"github.com/zoneinfo/go-tzif/tzif"
	"github.com/zoneinfo/go-tzif/zoneinfo"
)

// Server answers zone queries from a single zoneinfo directory.
type Server struct {
	dir string
	log *zap.Logger
}

// NewServer returns a server reading zones below dir. A nil logger
// disables logging.
func NewServer(dir string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{dir: dir, log: log}
}

// Register mounts the API routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/zones", s.handleListZones)
	e.GET("/v1/zones/*", s.handleGetZone)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// zoneList is the body of the zone listing response.
type zoneList struct {
	Zones []string `json:"zones"`
	Count int      `json:"count"`
}

func (s *Server) handleListZones(c *echo.Context) error {
	names, err := zoneinfo.Names(s.dir)
	if err != nil {
		s.log.Error("listing zones", zap.String("dir", s.dir), zap.Error(err))
		return writeError(c, http.StatusInternalServerError, "listing zones failed")
	}
	return c.JSON(http.StatusOK, zoneList{Zones: names, Count: len(names)})
}

func (s *Server) handleGetZone(c *echo.Context) error {
	name := strings.TrimPrefix(c.Request().URL.Path, "/v1/zones/")
	if err := zoneinfo.CheckName(name); err != nil {
		return writeError(c, http.StatusBadRequest, err.Error())
	}
	path := filepath.Join(s.dir, filepath.FromSlash(name))
	if _, err := os.Stat(path); err != nil {
		return writeError(c, http.StatusNotFound, "unknown zone "+name)
	}
	f, err := zoneinfo.DecodePath(path)
	if err != nil {
		s.log.Warn("decoding zone", zap.String("zone", name), zap.Error(err))
		if errors.Is(err, tzif.ErrInvalidSignature) {
			return writeError(c, http.StatusUnprocessableEntity, name+" is not a TZif file")
		}
		return writeError(c, http.StatusUnprocessableEntity, "decoding "+name+" failed")
	}
	return c.JSON(http.StatusOK, zonejson.FromFile(f))
}

// apiError is the uniform error body of all non-2xx responses.
type apiError struct {
	Error string `json:"error"`
}

func writeError(c *echo.Context, status int, msg string) error {
	return c.JSON(status, apiError{Error: msg})
}
