// Command tzdiff compares the decoded contents of two TZif files.
//
// It exits 0 when the files decode to the same data and 1 when they
// differ, printing the difference. Byte-level differences that do not
// survive decoding, such as trailing garbage, are not reported.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v3"

	"github.com/zoneinfo/go-tzif/zoneinfo"
)

func main() {
	app := diffCmd()
	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:      "tzdiff",
		Usage:     "Compare the decoded contents of two TZif files",
		ArgsUsage: "<file A> <file B>",
		Action: func(ctx context.Context, c *cli.Command) error {
			_ = ctx
			if c.Args().Len() != 2 {
				return cli.Exit("usage: tzdiff <file A> <file B>", 1)
			}

			a, err := zoneinfo.DecodePath(c.Args().Get(0))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			b, err := zoneinfo.DecodePath(c.Args().Get(1))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if diff := cmp.Diff(a, b); diff != "" {
				fmt.Println("files are different: -A +B")
				fmt.Println(diff)
				return cli.Exit("", 1)
			}
			fmt.Println("files are identical")
			return nil
		},
	}
}
