// Command directdict queries direct dictionaries from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/directdict/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.ExitCode(err))
}
