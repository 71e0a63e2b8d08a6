package config

import (
	"fmt"
	"os"

	"github.com/DaGoOfMaN/solarcoin/domain/chaincfg"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet bool `long:"testnet" description:"Use the test network"`
	Regtest bool `long:"regtest" description:"Use the regression test network"`

	ActiveNetParams *chaincfg.Params
}

// ResolveNetwork parses the network command line argument and sets
// ActiveNetParams accordingly. It returns an error if more than one network
// was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// default net is main net
	networkFlags.ActiveNetParams = &chaincfg.MainnetParams

	// Multiple networks can't be selected simultaneously. Count the
	// network flags passed and assign the active network params while
	// we're at it.
	numNets := 0
	if networkFlags.Testnet {
		numNets++
		networkFlags.ActiveNetParams = &chaincfg.TestnetParams
	}
	if networkFlags.Regtest {
		numNets++
		networkFlags.ActiveNetParams = &chaincfg.RegressionNetParams
	}
	if numNets > 1 {
		err := errors.New("Multiple networks parameters (testnet, regtest) cannot be used " +
			"together. Please choose only one network")
		if parser != nil {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
		}
		return err
	}

	return nil
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *chaincfg.Params {
	return networkFlags.ActiveNetParams
}
