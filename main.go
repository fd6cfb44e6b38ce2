// Package main is the entry point for the aflcorr CLI tool, which builds
// player-to-player correlation matrices from per-round team statistics.
package main

import "github.com/pable/aflcorr/cmd"

func main() {
	cmd.Execute()
}
