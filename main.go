package main

import (
	"os"

	"github.com/AlfredBerg/jobdigest/cmd"
)

func main() {
	// errors are already logged by the command
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
