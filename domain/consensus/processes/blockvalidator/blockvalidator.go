package blockvalidator

import (
	"math"

	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/DaGoOfMaN/solarcoin/domain/chaincfg"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/blockcache"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/misbehavior"
	"github.com/DaGoOfMaN/solarcoin/infrastructure/logger"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// BlockValidator checks blocks against the consensus rules that need
// nothing but the block itself.
type BlockValidator struct {
	params        *chaincfg.Params
	merkleTrees   *blockcache.MerkleTrees
	checkedBlocks *blockcache.CheckedBlocks
	misbehavior   *misbehavior.Tracker
}

// New instantiates a new BlockValidator
func New(params *chaincfg.Params,
	merkleTrees *blockcache.MerkleTrees,
	checkedBlocks *blockcache.CheckedBlocks,
	misbehaviorTracker *misbehavior.Tracker) *BlockValidator {

	return &BlockValidator{
		params:        params,
		merkleTrees:   merkleTrees,
		checkedBlocks: checkedBlocks,
		misbehavior:   misbehaviorTracker,
	}
}

// ValidateBlockInIsolation validates the header and body of a block in
// isolation from the chain state. Blocks that passed before, body and
// signature included, are not checked again.
//
// A rejected block is penalized by the ban score of the violated rule. Only
// the version rule is decided by the header alone and scored against the
// block hash. All other failures are scored against the BlockDigest of the
// rejected block, since a copy with a tampered body or signature shares the
// hash of the honest block.
func (v *BlockValidator) ValidateBlockInIsolation(block *appmessage.MsgBlock) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBlockInIsolation")
	defer onEnd()

	blockHash := block.BlockHash()
	digest := blockcache.BlockDigest(block)
	if v.checkedBlocks.IsChecked(blockHash, digest) {
		return nil
	}

	err := v.checkBlockVersion(block)
	if err != nil {
		return v.reject(v.misbehavior.Context(blockHash), blockHash, err)
	}

	err = v.checkProofOfWork(block)
	if err == nil {
		err = v.validateBodyInIsolation(block)
	}
	if err != nil {
		return v.reject(v.misbehavior.Context(digest), blockHash, err)
	}

	v.checkedBlocks.MarkChecked(blockHash, digest)
	return nil
}

func (v *BlockValidator) reject(scope *misbehavior.Scope, blockHash chainhash.Hash, err error) error {
	err = scope.Reject(err)
	log.Debugf("Block %s rejected, misbehavior score %d: %s", blockHash, scope.Score(), err)
	return err
}

// MisbehaviorScore returns the score of the header of block plus the score of
// this exact body and signature.
func (v *BlockValidator) MisbehaviorScore(block *appmessage.MsgBlock) uint32 {
	headerScore := v.misbehavior.Score(block.BlockHash())
	bodyScore := v.misbehavior.Score(blockcache.BlockDigest(block))
	if headerScore > math.MaxUint32-bodyScore {
		return math.MaxUint32
	}
	return headerScore + bodyScore
}
