// Command tzfetch downloads the latest IANA time zone database
// release archive.
//
// An ETag cache file makes repeated runs cheap: when the server still
// serves the cached release, nothing is downloaded and the existing
// archive is left untouched.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/zoneinfo/go-tzif/tzdb/iana"
)

func main() {
	app := fetchCmd()
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func fetchCmd() *cli.Command {
	var (
		out       string
		etagCache string
		digestStr string
		baseURL   string
		verbose   bool
	)

	return &cli.Command{
		Name:  "tzfetch",
		Usage: "Download the latest IANA time zone database archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "write the archive to this file",
				Value:       "tzdata-latest.tar.gz",
				Destination: &out,
			},
			&cli.StringFlag{
				Name:        "etag-cache",
				Usage:       "file remembering the ETag of the last download",
				Destination: &etagCache,
			},
			&cli.StringFlag{
				Name:        "digest",
				Usage:       "expected digest of the archive, e.g. sha256:...",
				Destination: &digestStr,
			},
			&cli.StringFlag{
				Name:        "base-url",
				Usage:       "download from this mirror instead of data.iana.org",
				Destination: &baseURL,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "log download progress",
				Destination: &verbose,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if verbose {
				log, err := zap.NewDevelopment()
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: creating logger: %v", err), 1)
				}
				defer func() { _ = log.Sync() }()
				iana.SetLogger(log)
			}

			var opts []iana.Option
			if digestStr != "" {
				opts = append(opts, iana.WithDigest(digest.Digest(digestStr)))
			}
			if baseURL != "" {
				opts = append(opts, iana.WithBaseURL(baseURL))
			}
			client := iana.NewClient(opts...)

			etag, err := readEtag(etagCache)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			// Download next to the target so the final rename stays on
			// one filesystem.
			f, err := os.CreateTemp(filepath.Dir(out), ".tzfetch-*")
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: creating temporary file: %v", err), 1)
			}
			defer func() { _ = os.Remove(f.Name()) }()

			newEtag, modified, err := client.FetchLatest(ctx, f, etag)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if !modified {
				fmt.Println("archive is up to date")
				return nil
			}

			if err := os.Rename(f.Name(), out); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := writeEtag(etagCache, newEtag); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			fmt.Println("wrote", out)
			return nil
		},
	}
}

func readEtag(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading etag cache: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func writeEtag(path, etag string) error {
	if path == "" || etag == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(etag+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing etag cache: %w", err)
	}
	return nil
}
