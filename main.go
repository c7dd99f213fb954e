// Package main is the entry point for the highlights CLI tool, which detects
// tactical events in soccer match video and ranks highlight clips.
package main

import "github.com/pitchlab/go-match-highlights/cmd"

func main() {
	cmd.Execute()
}
