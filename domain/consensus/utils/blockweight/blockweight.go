package blockweight

import (
	"math"

	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/pkg/errors"
)

// WitnessScaleFactor is the factor by which bytes outside of a witness count
// towards the weight of a block.
const WitnessScaleFactor = 4

// BlockWeight returns the weight of a block: its stripped size (everything
// but witness data) counted WitnessScaleFactor-1 times plus its total size.
// Transactions carry no witness data, so both sizes are equal, but they are
// computed separately so the rule stays the same once that changes.
func BlockWeight(block *appmessage.MsgBlock) int64 {
	return FromSizes(strippedSize(block), totalSize(block))
}

// FromSizes combines the stripped and total size of a block into its weight.
// It panics if either size is negative or the weight does not fit an int64.
// Such a block cannot exist, so there is no weight to return for it.
func FromSizes(stripped, total int64) int64 {
	if stripped < 0 || total < 0 {
		panic(errors.Errorf("negative block size (stripped %d, total %d)", stripped, total))
	}
	if stripped > (math.MaxInt64-total)/(WitnessScaleFactor-1) {
		panic(errors.Errorf("block weight overflow (stripped %d, total %d)", stripped, total))
	}
	return stripped*(WitnessScaleFactor-1) + total
}

func strippedSize(block *appmessage.MsgBlock) int64 {
	return int64(block.SerializeSize(appmessage.BlockEncodingFull))
}

func totalSize(block *appmessage.MsgBlock) int64 {
	return int64(block.SerializeSize(appmessage.BlockEncodingFull))
}
