package main

import (
	"github.com/BioHazard786/diceroom/cli/cmd"
	"github.com/BioHazard786/diceroom/cli/internal/logging"
)

func main() {
	closeLog := logging.Init()
	defer closeLog()
	cmd.Execute()
}
