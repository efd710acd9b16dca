package main

import (
	"flag"
	"fmt"
	"os"
)

const helpText = `fsdrift generates a mixed filesystem/block-device workload: a
configurable blend of creates, reads, writes, truncates, links, renames,
deletes and discards, under a uniform or gaussian "moving mean" filename
distribution that simulates an aging namespace.
`

func usage(fset *flag.FlagSet) func() {
	return func() {
		fmt.Fprintln(os.Stderr, helpText)
		fmt.Fprintln(os.Stderr, "Flags:")
		fset.PrintDefaults()
	}
}
