// Command matgen is the MatGen-Intelligence CLI: it serves the generation
// API and runs one-shot material generation from the terminal.
package main

import "github.com/turtacn/MatGen-Intelligence/internal/interfaces/cli"

func main() {
	cli.Execute()
}
