// Package main runs scripted fibula worlds from the command line.
package main

import "github.com/fibula-mmo/fibula/fibulasim/cmd"

func main() {
	cmd.Execute()
}
