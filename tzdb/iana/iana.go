// Package iana downloads tzdata releases distributed by IANA.
//
// Releases are fetched from the [IANA data server]. Callers are advised
// to store the [ETags] returned by this package and pass them to later
// calls so unchanged releases are not transferred again.
//
// [ETags]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/ETag
// [IANA data server]: https://www.iana.org/time-zones
package iana

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/opencontainers/go-digest"
	"go.uber.org/zap"
)

const (
	// defaultBaseURL is the directory on the IANA data server holding
	// time zone releases.
	defaultBaseURL = "https://data.iana.org/time-zones/"
	// latestArchive is the path of the current tzdata release,
	// relative to the base URL.
	latestArchive = "tzdata-latest.tar.gz"
	// dataFileMagic identifies tzdb data files inside the archive.
	dataFileMagic = "# tzdb data for"
	// leapSecondsFile is the name of the leap seconds list in the
	// archive.
	leapSecondsFile = "leapseconds"
	// versionFile is the name of the version file in the archive.
	versionFile = "version"
)

// ErrDigestMismatch is returned when a downloaded archive does not
// hash to the digest the client was pinned to.
var ErrDigestMismatch = errors.New("archive digest mismatch")

// Release is one unpacked tzdata release.
type Release struct {
	// Version is the release name, for example "2025a".
	Version string

	// DataFiles maps tzdb data file names ("africa", "europe", ...) to
	// their contents. File contents always start with the magic header
	// that marks a data file:
	//
	//	# tzdb data for
	DataFiles map[string][]byte

	// LeapSeconds is the content of the leap seconds list.
	LeapSeconds []byte
}

// Client downloads tzdata releases. The zero value is ready to use;
// NewClient applies options on top of it.
type Client struct {
	// HTTPClient is used for all requests. When nil, http.DefaultClient
	// is used.
	//
	// This field is useful to prevent network calls during tests by
	// installing a fake http.RoundTripper, and to set timeouts or
	// control redirects. Timeouts are also controlled by the context
	// passed to the download methods.
	HTTPClient *http.Client

	baseURL string
	digest  digest.Digest
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the http.Client used for all requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTPClient = h }
}

// WithBaseURL points the client at a mirror of the IANA data server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithDigest pins the archive contents: a download that does not hash
// to d fails with ErrDigestMismatch.
func WithDigest(d digest.Digest) Option {
	return func(c *Client) { c.digest = d }
}

// NewClient returns a Client with the given options applied.
func NewClient(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultClient backs the top-level Latest and Download functions.
var DefaultClient = NewClient()

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		return http.DefaultClient
	}
	return c.HTTPClient
}

func (c *Client) base() string {
	if c.baseURL == "" {
		return defaultBaseURL
	}
	return c.baseURL
}

// WalkFunc receives one archive member. The reader is only valid until
// the function returns. Returning an error stops the walk.
type WalkFunc func(name string, r io.Reader) error

// Walk streams a gzip-compressed tar archive from r and calls fn for
// every regular file in it.
func Walk(r io.Reader, fn WalkFunc) error {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("read gzip: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if err := fn(hdr.Name, tr); err != nil {
			return err
		}
	}
}

// Unpack reads a release archive from r.
//
// The io.Reader must contain a gzip-compressed tar archive as found at
// https://data.iana.org/time-zones/releases/.
func Unpack(r io.Reader) (*Release, error) {
	rel := &Release{DataFiles: make(map[string][]byte)}
	err := Walk(r, func(name string, r io.Reader) error {
		switch name {
		case versionFile:
			b, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read version file: %w", err)
			}
			rel.Version = strings.TrimSpace(string(b))
			return nil
		case leapSecondsFile:
			b, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read leap seconds file: %w", err)
			}
			rel.LeapSeconds = b
			return nil
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("read %q: %w", name, err)
		}
		if !bytes.HasPrefix(b, []byte(dataFileMagic)) {
			// Makefiles, man pages, and other distribution files.
			return nil
		}
		rel.DataFiles[name] = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rel.Version == "" {
		return nil, errors.New("no version found")
	}
	if len(rel.DataFiles) == 0 {
		return nil, errors.New("no data files found")
	}
	return rel, nil
}

// Latest downloads and unpacks the current tzdata release.
//
// If the server responds with a 304 Not Modified status code, the
// returned ETag is the same as the input and the returned Release and
// error are both nil.
//
// Latest is a wrapper around DefaultClient.Latest.
func Latest(ctx context.Context, etag string) (*Release, string, error) {
	return DefaultClient.Latest(ctx, etag)
}

// Latest downloads and unpacks the current tzdata release.
//
// If the server responds with a 304 Not Modified status code, the
// returned ETag is the same as the input and the returned Release and
// error are both nil.
func (c *Client) Latest(ctx context.Context, etag string) (*Release, string, error) {
	body, newTag, err := c.Download(ctx, latestArchive, etag)
	if err != nil {
		return nil, "", err
	}
	if body == nil {
		Logger().Debug("release not modified", zap.String("etag", etag))
		return nil, etag, nil
	}
	defer func() {
		// Drain and close so the connection can be reused.
		_, _ = io.Copy(io.Discard, body)
		_ = body.Close()
	}()

	rel, err := c.unpackVerified(body)
	if err != nil {
		return nil, "", err
	}
	Logger().Info("downloaded release",
		zap.String("version", rel.Version),
		zap.String("etag", newTag))
	return rel, newTag, nil
}

// unpackVerified unpacks an archive stream, first checking it against
// the pinned digest when one is configured.
func (c *Client) unpackVerified(r io.Reader) (*Release, error) {
	if c.digest == "" {
		return Unpack(r)
	}
	if err := c.digest.Validate(); err != nil {
		return nil, fmt.Errorf("pinned digest: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	verifier := c.digest.Verifier()
	if _, err := verifier.Write(data); err != nil {
		return nil, fmt.Errorf("verify archive: %w", err)
	}
	if !verifier.Verified() {
		return nil, fmt.Errorf("%w: want %s", ErrDigestMismatch, c.digest)
	}
	return Unpack(bytes.NewReader(data))
}

// FetchLatest streams the current release archive to w without
// unpacking it. It returns the new ETag and whether anything was
// written: false means the server reported the release unchanged for
// the given etag.
//
// When a digest is pinned the archive is verified as it is copied; on
// mismatch w has already received the bytes and the caller must
// discard them.
func (c *Client) FetchLatest(ctx context.Context, w io.Writer, etag string) (string, bool, error) {
	body, newTag, err := c.Download(ctx, latestArchive, etag)
	if err != nil {
		return "", false, err
	}
	if body == nil {
		Logger().Debug("release not modified", zap.String("etag", etag))
		return etag, false, nil
	}
	defer func() {
		_, _ = io.Copy(io.Discard, body)
		_ = body.Close()
	}()

	var verifier digest.Verifier
	if c.digest != "" {
		if err := c.digest.Validate(); err != nil {
			return "", false, fmt.Errorf("pinned digest: %w", err)
		}
		verifier = c.digest.Verifier()
		w = io.MultiWriter(w, verifier)
	}
	n, err := io.Copy(w, body)
	if err != nil {
		return "", false, fmt.Errorf("download archive: %w", err)
	}
	if verifier != nil && !verifier.Verified() {
		return "", false, fmt.Errorf("%w: want %s", ErrDigestMismatch, c.digest)
	}
	Logger().Info("fetched archive",
		zap.Int64("bytes", n),
		zap.String("etag", newTag))
	return newTag, true, nil
}

// Download fetches the resource at the given path below the data
// server root.
//
// The returned ETag is the ETag of the downloaded resource. If the
// server responds with a 304 Not Modified status code, the returned
// ETag is the same as the input and the returned io.ReadCloser and
// error are both nil.
//
// If no error is returned, the io.ReadCloser is a [http.Response.Body]
// and needs to be read fully and closed by the caller to prevent
// resource leaks.
//
// An error is returned for HTTP status codes other than 200 OK and
// 304 Not Modified.
//
// Download is a wrapper around DefaultClient.Download.
func Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	return DefaultClient.Download(ctx, path, etag)
}

// Download fetches the resource at the given path below the data
// server root. See the package-level Download for the ETag contract.
func (c *Client) Download(ctx context.Context, path, etag string) (io.ReadCloser, string, error) {
	u, err := url.JoinPath(c.base(), path)
	if err != nil {
		return nil, "", fmt.Errorf("join URL: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request for %q: %w", u, err)
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	Logger().Debug("downloading", zap.String("url", u))
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("GET %q: %w", u, err)
	}

	if resp.StatusCode != http.StatusOK {
		// Drain and close the response body to reuse the connection.
		// Not every status comes with a body, but draining before
		// closing is the safe thing to do.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusNotModified {
			return nil, etag, nil
		}
		return nil, "", fmt.Errorf("response for %q: unexpected status: %s", u, resp.Status)
	}

	// Caller must take care of closing the response body.
	return resp.Body, resp.Header.Get("Etag"), nil
}
