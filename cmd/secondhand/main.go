// Package main is the entry point for the secondhand CLI client.
package main

import (
	"github.com/Yuyang-Ding1102/SecondHandPlatform/cmd/secondhand/cmd"
)

func main() {
	cmd.Execute()
}
