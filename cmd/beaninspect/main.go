// Command beaninspect dumps the field headers (index, wire variant, and
// length where applicable) of every record in a file of concatenated
// beanwire records, without needing the Go struct type the records were
// written from.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/kungfusheep/beanwire"
)

func main() {
	app := cli.NewApp()
	app.Name = "beaninspect"
	app.Usage = "dump beanwire record field headers from a file"
	app.ArgsUsage = "<file>"
	app.Action = inspectCommand

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "beaninspect:", err)
		os.Exit(1)
	}
}

func inspectCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("expected exactly one file argument", 1)
	}

	f, err := os.Open(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer f.Close()

	return beanwire.InspectStream(f, func(recordIndex int, headers []beanwire.FieldHeader) {
		fmt.Printf("record %d: %d fields\n", recordIndex, len(headers))
		for _, h := range headers {
			if h.Length >= 0 {
				fmt.Printf("  field %3d  %-24s  %d bytes\n", h.Index, h.Variant, h.Length)
			} else {
				fmt.Printf("  field %3d  %-24s\n", h.Index, h.Variant)
			}
		}
	})
}
