package blocklocator

import (
	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// denseHashes is the number of most recent blocks added to a locator before
// the step between entries starts doubling.
const denseHashes = 10

// HashAtHeight returns the hash of the chain block at the given height.
type HashAtHeight func(height int32) (*chainhash.Hash, error)

// Build returns a locator for the chain whose tip is at tipHeight. The
// algorithm for building the block locator is to add the hashes in reverse
// order until the genesis block is reached. In order to keep the list of
// locator hashes to a reasonable number of entries, first the most recent
// block hashes are added one by one, then once the locator holds more than
// 10 hashes the step is doubled each loop iteration to
// exponentially decrease the number of hashes as a function of the distance
// from the tip.
//
// For example, for a chain whose tip is at height 17 the locator would be
// the hashes of the blocks at:
//
//	[17 16 15 14 13 12 11 10 9 8 7 6 4 genesis]
func Build(tipHeight int32, hashAt HashAtHeight) (*appmessage.MsgBlockLocator, error) {
	if tipHeight < 0 {
		return nil, errors.Errorf("cannot build a locator for tip height %d", tipHeight)
	}

	hashes := make([]*chainhash.Hash, 0, denseHashes+32)
	height := tipHeight
	step := int64(1)
	for {
		hash, err := hashAt(height)
		if err != nil {
			return nil, errors.Wrapf(err, "could not get the hash of block at height %d", height)
		}
		hashes = append(hashes, hash)

		// Nothing more to add once the genesis block has been added.
		if height == 0 {
			break
		}

		nextHeight := int64(height) - step
		if nextHeight < 0 {
			nextHeight = 0
		}
		height = int32(nextHeight)

		// Double the distance between included hashes.
		if len(hashes) > denseHashes {
			step *= 2
		}
	}

	return appmessage.NewMsgBlockLocator(hashes), nil
}
