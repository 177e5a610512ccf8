// hostprint — host configuration fingerprinting and drift detection.
package main

import "github.com/ppiankov/hostprint/internal/cli"

func main() {
	cli.Execute()
}
