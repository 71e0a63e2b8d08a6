package main

import (
	"fmt"
	"os"

	"github.com/DaGoOfMaN/solarcoin/infrastructure/logger"
	"github.com/DaGoOfMaN/solarcoin/util/panics"
)

func main() {
	defer panics.HandlePanic(log, nil)

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing command-line arguments: %s\n", err)
		os.Exit(1)
	}

	err = initLog(&cfg.DebugFlags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error setting log levels: %s\n", err)
		os.Exit(1)
	}
	defer logger.BackendLog.Close()

	err = run(cfg, os.Stdout)
	if err != nil {
		panics.Exit(log, err.Error())
	}
}
