package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/DaGoOfMaN/solarcoin/infrastructure/config"
	"github.com/DaGoOfMaN/solarcoin/version"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

type configFlags struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	BlockFile   string `short:"f" long:"file" description:"Read the hex encoded block from this file"`
	HeaderOnly  bool   `long:"headeronly" description:"The block is in the header-only encoding"`
	BlockHex    string
	config.DebugFlags
	config.PolicyFlags
	config.NetworkFlags
}

func (cfg *configFlags) blockEncoding() appmessage.BlockEncoding {
	if cfg.HeaderOnly {
		return appmessage.BlockEncodingHeaderOnly
	}
	return appmessage.BlockEncodingFull
}

func parseConfig(args []string) (*configFlags, error) {
	cfg := &configFlags{
		DebugFlags:  config.DefaultDebugFlags(),
		PolicyFlags: config.DefaultPolicyFlags(),
	}
	parser := flags.NewParser(cfg, flags.HelpFlag)
	parser.Usage = "blockinfo [OPTIONS] [HEX BLOCK]\n\nThe block is read from --file when no hex block is given."
	remainingArgs, err := parser.ParseArgs(args)

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	if err != nil {
		return nil, err
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}
	err = cfg.ValidateDebugFlags()
	if err != nil {
		return nil, err
	}
	err = cfg.ValidatePolicyFlags()
	if err != nil {
		return nil, err
	}

	if len(remainingArgs) > 1 {
		return nil, errors.Errorf("Expected a single hex block, got %d arguments", len(remainingArgs))
	}
	if len(remainingArgs) == 1 {
		cfg.BlockHex = remainingArgs[0]
	}
	if (cfg.BlockHex == "") == (cfg.BlockFile == "") {
		return nil, errors.New("Exactly one of --file or a hex block must be specified")
	}

	return cfg, nil
}
