// Package main is the entry point of the kanzlei-server application.
// It sets up and starts the server by calling initialization functions from the internal package.
package main

import (
	"kanzlei-server/internal"
)

func main() {
	internal.Init()
}
