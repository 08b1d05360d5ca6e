package main

import (
	"fmt"
	"os"

	"beeb/emu"
)

var version = "devel"

func main() {
	args := parseArgs(os.Args[1:])
	cfg := emu.LoadConfigOrDefault()

	switch args.mode {
	case versionMode:
		fmt.Println("beeb", version)

	case debugMode:
		debugMain(args.Debug, cfg)

	case runMode:
		emuMain(args.Run, cfg)
	}
}
