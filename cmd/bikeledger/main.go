// Package main provides the bikeledger CLI.
package main

import "github.com/mesh-intelligence/bikeledger/internal/cli"

func main() {
	cli.Execute()
}
