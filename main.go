// Package main is the entry point for the SOCForge CLI.
package main

import "socforge/cmd"

func main() {
	cmd.Execute()
}
