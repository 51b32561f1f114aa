// Command acparser validates acquirer settlement files.
package main

import (
	"fmt"
	"os"

	"github.com/IgorHorta/acparser/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "acparser: %v\n", err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
