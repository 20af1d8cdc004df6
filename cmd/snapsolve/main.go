// Package main is the single-binary entrypoint for SnapSolve.
package main

import "github.com/snapsolve/snapsolve/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
