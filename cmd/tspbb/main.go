// Command tspbb is the command-line entry point for the branch-and-bound
// traveling salesman solver.
package main

import "github.com/tspbb/bnbtsp/cmd/tspbb/cmd"

func main() {
	cmd.Execute()
}
