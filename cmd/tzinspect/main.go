// Command tzinspect decodes a TZif file and prints its contents.
//
// The argument is a file path, "-" for standard input, or a zone name
// such as Europe/Berlin which is looked up in the system zoneinfo
// directories.
package main

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/zoneinfo/go-tzif/internal/unixtime"
	"github.com/zoneinfo/go-tzif/internal/zonejson"
	"github.com/zoneinfo/go-tzif/tzif"
	"github.com/zoneinfo/go-tzif/zoneinfo"
)

func main() {
	app := inspectCmd()
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func inspectCmd() *cli.Command {
	var (
		asJSON   bool
		validate bool
		fromDate string
		toDate   string
	)

	return &cli.Command{
		Name:      "tzinspect",
		Usage:     "Decode a TZif file and print its contents",
		ArgsUsage: "<file | zone name | ->",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the decoded file as JSON", Destination: &asJSON},
			&cli.BoolFlag{Name: "validate", Usage: "report inconsistencies instead of printing", Destination: &validate},
			&cli.StringFlag{Name: "from", Usage: "only list transitions at or after this date (YYYY-MM-DD)", Destination: &fromDate},
			&cli.StringFlag{Name: "to", Usage: "only list transitions before this date (YYYY-MM-DD)", Destination: &toDate},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			if c.Args().Len() != 1 {
				return cli.Exit("usage: tzinspect [options] <file | zone name | ->", 1)
			}

			f, err := load(c.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if validate {
				if err := tzif.Validate(f); err != nil {
					return cli.Exit(fmt.Sprintf("file is inconsistent:\n%v", err), 1)
				}
				fmt.Println("file is consistent")
				return nil
			}

			in, err := rangeFilter(fromDate, toDate)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if asJSON {
				return printJSON(f, in)
			}
			printFile(f, in)
			return nil
		},
	}
}

// load resolves the command line argument to a decoded file.
func load(arg string) (tzif.File, error) {
	if arg == "-" {
		f, err := tzif.Decode(bufio.NewReader(os.Stdin))
		if err != nil {
			return tzif.File{}, fmt.Errorf("decode stdin: %w", err)
		}
		return f, nil
	}
	if _, err := os.Stat(arg); err == nil {
		return zoneinfo.DecodePath(arg)
	}
	return zoneinfo.LoadFile(arg)
}

// rangeFilter builds the transition filter from the --from and --to
// flags. An empty flag leaves that end of the range open.
func rangeFilter(from, to string) (func(int64) bool, error) {
	lo := int64(math.MinInt64)
	hi := int64(math.MaxInt64)
	if from != "" {
		t, err := unixtime.ParseDate(from)
		if err != nil {
			return nil, err
		}
		lo = t
	}
	if to != "" {
		t, err := unixtime.ParseDate(to)
		if err != nil {
			return nil, err
		}
		hi = t
	}
	return func(t int64) bool { return t >= lo && t < hi }, nil
}

func printJSON(f tzif.File, in func(int64) bool) error {
	view := zonejson.FromFile(f)
	view.V1.Transitions = filterTransitions(view.V1.Transitions, in)
	if view.V2 != nil {
		view.V2.Transitions = filterTransitions(view.V2.Transitions, in)
	}
	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: encoding JSON: %v", err), 1)
	}
	fmt.Println(string(out))
	return nil
}

func filterTransitions(ts []zonejson.Transition, in func(int64) bool) []zonejson.Transition {
	kept := ts[:0]
	for _, t := range ts {
		if in(t.Unix) {
			kept = append(kept, t)
		}
	}
	return kept
}

func printFile(f tzif.File, in func(int64) bool) {
	printBlock(f.V1, in)
	if f.V2 != nil {
		printBlock(*f.V2, in)
	}
	if f.Footer != nil {
		fmt.Println("Footer")
		fmt.Println("  TZString =", string(f.Footer.TZString))
	}
}

func printBlock(b tzif.Block, in func(int64) bool) {
	h := b.Header
	fmt.Println("Header")
	fmt.Println("  version =", h.Version)
	fmt.Println("  isutcnt =", h.Isutcnt)
	fmt.Println("  isstdcnt =", h.Isstdcnt)
	fmt.Println("  leapcnt =", h.Leapcnt)
	fmt.Println("  timecnt =", h.Timecnt)
	fmt.Println("  typecnt =", h.Typecnt)
	fmt.Println("  charcnt =", h.Charcnt)
	fmt.Println()

	d := b.Data
	fmt.Println("Data block", h.Version)
	fmt.Printf("  Transitions (%d):\n", len(d.TransitionTimes))
	for i, when := range d.TransitionTimes {
		if !in(when) {
			continue
		}
		var typ uint8
		if i < len(d.TransitionTypes) {
			typ = d.TransitionTypes[i]
		}
		fmt.Printf("    %12d  type=%d  %s\n", when, typ, time.Unix(when, 0).UTC().Format(time.RFC3339))
	}
	fmt.Printf("  LocalTimeTypeRecords (%d) = %+v\n", len(d.LocalTimeTypeRecords), d.LocalTimeTypeRecords)
	fmt.Printf("  TimeZoneDesignations (%d) = %v\n", len(d.TimeZoneDesignations), strings.Split(string(d.TimeZoneDesignations), "\x00"))
	fmt.Printf("  LeapSecondRecords (%d) = %+v\n", len(d.LeapSecondRecords), d.LeapSecondRecords)
	fmt.Printf("  StandardWallIndicators (%d) = %v\n", len(d.StandardWallIndicators), d.StandardWallIndicators)
	fmt.Printf("  UTLocalIndicators (%d) = %v\n", len(d.UTLocalIndicators), d.UTLocalIndicators)
	fmt.Println()
}
