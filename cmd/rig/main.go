// Package main provides the entry point for the rig CLI.
package main

import "os"

func main() {
	os.Exit(execute())
}
