package blockvalidator

import (
	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/misbehavior"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/ruleerrors"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/blockweight"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	coinBaseTransactionIndex  = 0
	coinStakeTransactionIndex = 1
)

func (v *BlockValidator) validateBodyInIsolation(block *appmessage.MsgBlock) error {
	err := v.checkBlockContainsAtLeastOneTransaction(block)
	if err != nil {
		return err
	}

	err = v.checkBlockWeight(block)
	if err != nil {
		return err
	}

	err = v.checkFirstBlockTransactionIsCoinbase(block)
	if err != nil {
		return err
	}

	err = v.checkBlockContainsOnlyOneCoinbase(block)
	if err != nil {
		return err
	}

	err = v.checkCoinStakePlacement(block)
	if err != nil {
		return err
	}

	err = v.checkCoinStakeTime(block)
	if err != nil {
		return err
	}

	err = v.checkBlockHashMerkleRoot(block)
	if err != nil {
		return err
	}

	err = v.checkBlockDuplicateTransactions(block)
	if err != nil {
		return err
	}

	err = v.checkBlockSignature(block)
	if err != nil {
		return err
	}

	return nil
}

func (v *BlockValidator) checkBlockContainsAtLeastOneTransaction(block *appmessage.MsgBlock) error {
	if len(block.Transactions) == 0 {
		return misbehavior.Wrapf(misbehavior.BanScoreNoTransactions, ruleerrors.ErrNoTransactions,
			"block does not contain any transactions")
	}
	return nil
}

func (v *BlockValidator) checkBlockWeight(block *appmessage.MsgBlock) error {
	weight := blockweight.BlockWeight(block)
	if weight > v.params.MaxBlockWeight {
		return misbehavior.Wrapf(misbehavior.BanScoreBlockTooLarge, ruleerrors.ErrBlockTooBig,
			"block weight %d is larger than max allowed weight of %d", weight, v.params.MaxBlockWeight)
	}
	return nil
}

func (v *BlockValidator) checkFirstBlockTransactionIsCoinbase(block *appmessage.MsgBlock) error {
	if !block.Transactions[coinBaseTransactionIndex].IsCoinBase() {
		return misbehavior.Wrapf(misbehavior.BanScoreFirstTxNotCoinBase, ruleerrors.ErrFirstTxNotCoinbase,
			"first transaction in block is not a coinbase")
	}
	return nil
}

func (v *BlockValidator) checkBlockContainsOnlyOneCoinbase(block *appmessage.MsgBlock) error {
	for i, tx := range block.Transactions[coinBaseTransactionIndex+1:] {
		if tx.IsCoinBase() {
			return misbehavior.Wrapf(misbehavior.BanScoreMultipleCoinBases, ruleerrors.ErrMultipleCoinbases,
				"block contains second coinbase at index %d", i+coinBaseTransactionIndex+1)
		}
	}
	return nil
}

// checkCoinStakePlacement makes sure a coinstake, if any, directly follows
// the coinbase and is the only one in the block.
func (v *BlockValidator) checkCoinStakePlacement(block *appmessage.MsgBlock) error {
	for i, tx := range block.Transactions {
		if i == coinStakeTransactionIndex || !tx.IsCoinStake() {
			continue
		}
		if block.IsProofOfStake() {
			return misbehavior.Wrapf(misbehavior.BanScoreMultipleCoinStakes, ruleerrors.ErrCoinStakeNotSecond,
				"block contains second coinstake at index %d", i)
		}
		return misbehavior.Wrapf(misbehavior.BanScoreCoinStakeNotSecond, ruleerrors.ErrCoinStakeNotSecond,
			"coinstake at index %d is not the second transaction", i)
	}
	return nil
}

func (v *BlockValidator) checkCoinStakeTime(block *appmessage.MsgBlock) error {
	_, coinStakeTime, ok := block.ProofOfStakeKernel()
	if !ok {
		return nil
	}
	if coinStakeTime != block.Header.Timestamp {
		return misbehavior.Wrapf(misbehavior.BanScoreCoinStakeTimeViolation, ruleerrors.ErrCoinStakeTimeViolation,
			"coinstake time %d differs from block time %d", coinStakeTime, block.Header.Timestamp)
	}
	return nil
}

// checkBlockHashMerkleRoot recomputes the merkle tree from the block's own
// transactions. A tree cached under the same hash may belong to a block with
// a different body, so it is dropped first, and a tree that does not match
// the header is not kept.
func (v *BlockValidator) checkBlockHashMerkleRoot(block *appmessage.MsgBlock) error {
	blockHash := block.BlockHash()
	v.merkleTrees.Remove(blockHash)
	calculatedMerkleRoot := v.merkleTrees.Root(block)
	if block.Header.MerkleRoot != calculatedMerkleRoot {
		v.merkleTrees.Remove(blockHash)
		return misbehavior.Wrapf(misbehavior.BanScoreBadMerkleRoot, ruleerrors.ErrBadMerkleRoot,
			"block merkle root is invalid - block header indicates %s, but calculated value is %s",
			block.Header.MerkleRoot, calculatedMerkleRoot)
	}
	return nil
}

func (v *BlockValidator) checkBlockDuplicateTransactions(block *appmessage.MsgBlock) error {
	existingTxHashes := make(map[chainhash.Hash]struct{}, len(block.Transactions))
	for _, txHash := range block.TxHashes() {
		if _, exists := existingTxHashes[txHash]; exists {
			return misbehavior.Wrapf(misbehavior.BanScoreDuplicateTx, ruleerrors.ErrDuplicateTx,
				"block contains duplicate transaction %s", txHash)
		}
		existingTxHashes[txHash] = struct{}{}
	}
	return nil
}

// checkBlockSignature verifies the producer signature. Blocks older than
// LegacyBlockVersion3 carry no signature on the wire.
func (v *BlockValidator) checkBlockSignature(block *appmessage.MsgBlock) error {
	if block.Header.Version < appmessage.LegacyBlockVersion3 {
		return nil
	}
	if !block.VerifySignature(block.IsProofOfStake()) {
		return misbehavior.Wrapf(misbehavior.BanScoreBadBlockSignature, ruleerrors.ErrBadBlockSignature,
			"block %s has an invalid signature", block.BlockHash())
	}
	return nil
}
