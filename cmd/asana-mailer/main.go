// Package main is the entry point for the asana-mailer CLI tool.
package main

import (
	"github.com/palantir/asana-mailer/internal/cmd"
)

func main() {
	cmd.Execute()
}
