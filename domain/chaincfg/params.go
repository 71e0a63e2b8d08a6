// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math/big"
	"sync"
	"time"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/pkg/errors"
)

// These variables are the chain proof-of-work limit parameters for each default
// network.
var (
	// bigOne is 1 represented as a big.Int. It is defined here to avoid
	// the overhead of creating it multiple times.
	bigOne = big.NewInt(1)

	// mainPowMax is the highest proof of work target a block can have for
	// the main network. It is the value 2^236 - 1.
	mainPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)

	// testnetPowMax is the highest proof of work target a block can have
	// for the test network. It is the value 2^236 - 1.
	testnetPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 236), bigOne)

	// regressionPowMax is the highest proof of work target a block can
	// have for the regression test network. It is the value 2^255 - 1.
	regressionPowMax = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)
)

const (
	targetTimePerBlock = 60 * time.Second

	// defaultMaxBlockWeight matches the weight of a block of
	// MaxBlockSerializedSize bytes without witness data.
	defaultMaxBlockWeight = 4000000
)

// Params defines a SolarCoin network by its parameters. These parameters may
// be used by applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// PowMax defines the highest allowed proof of work target for a
	// proof-of-work block.
	PowMax *big.Int

	// PowMaxBits is PowMax in compact form.
	PowMaxBits uint32

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.
	TargetTimePerBlock time.Duration

	// MaxBlockWeight is the highest weight a block can have.
	MaxBlockWeight int64

	// SkipProofOfWork skips the proof-of-work check of proof-of-work
	// blocks. Only meant for tests.
	SkipProofOfWork bool
}

// MainnetParams defines the network parameters for the main network.
var MainnetParams = Params{
	Name:               "mainnet",
	PowMax:             mainPowMax,
	PowMaxBits:         blockchain.BigToCompact(mainPowMax),
	TargetTimePerBlock: targetTimePerBlock,
	MaxBlockWeight:     defaultMaxBlockWeight,
}

// TestnetParams defines the network parameters for the test network.
var TestnetParams = Params{
	Name:               "testnet",
	PowMax:             testnetPowMax,
	PowMaxBits:         blockchain.BigToCompact(testnetPowMax),
	TargetTimePerBlock: targetTimePerBlock,
	MaxBlockWeight:     defaultMaxBlockWeight,
}

// RegressionNetParams defines the network parameters for the regression test
// network. Its proof-of-work limit lets blocks be mined in a few attempts.
var RegressionNetParams = Params{
	Name:               "regtest",
	PowMax:             regressionPowMax,
	PowMaxBits:         blockchain.BigToCompact(regressionPowMax),
	TargetTimePerBlock: targetTimePerBlock,
	MaxBlockWeight:     defaultMaxBlockWeight,
}

var (
	// ErrDuplicateNet describes an error where the parameters for a
	// network could not be set due to the network already being a
	// registered network.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where no parameters are registered
	// under the requested network name.
	ErrUnknownNet = errors.New("unknown network")
)

var (
	registeredNets      = make(map[string]*Params)
	registeredNetsMutex sync.RWMutex
)

// Register registers the network parameters for a SolarCoin network. This
// may error with ErrDuplicateNet if a network of the same name is already
// registered.
//
// Network parameters should be registered into this package by a main package
// as early as possible. Then, library packages may lookup networks or network
// parameters based on inputs and work regardless of the network being standard
// or not.
func Register(params *Params) error {
	registeredNetsMutex.Lock()
	defer registeredNetsMutex.Unlock()

	if _, ok := registeredNets[params.Name]; ok {
		return errors.Wrapf(ErrDuplicateNet, "network %s", params.Name)
	}
	registeredNets[params.Name] = params
	return nil
}

// ParamsByName returns the parameters registered under name.
func ParamsByName(name string) (*Params, error) {
	registeredNetsMutex.RLock()
	defer registeredNetsMutex.RUnlock()

	params, ok := registeredNets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNet, "network %s", name)
	}
	return params, nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error. This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainnetParams)
	mustRegister(&TestnetParams)
	mustRegister(&RegressionNetParams)
}
