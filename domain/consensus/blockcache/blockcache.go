// Package blockcache holds memory-only data derived from blocks: their merkle
// trees and whether they already passed validation. Entries are keyed by block
// hash so that blocks themselves stay plain values that can be shared between
// goroutines.
package blockcache

import (
	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/hashes"
	"github.com/DaGoOfMaN/solarcoin/domain/consensus/utils/merkle"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

// DefaultCapacity is the default number of blocks each cache holds.
const DefaultCapacity = 1000

// MerkleTrees is a cache of merkle tree stores indexed by block hash.
//
// Two goroutines that miss on the same block both build its tree and the
// later Add wins. Both trees are identical, so the duplicate work is the only
// cost.
type MerkleTrees struct {
	cache *lru.ARCCache
}

// NewMerkleTrees creates a merkle tree cache holding up to capacity blocks.
func NewMerkleTrees(capacity int) (*MerkleTrees, error) {
	cache, err := lru.NewARC(capacity)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create merkle tree cache of capacity %d", capacity)
	}
	return &MerkleTrees{cache: cache}, nil
}

// Get returns the merkle tree store of block, building and caching it on a
// miss. The returned store is shared and must not be modified.
func (c *MerkleTrees) Get(block *appmessage.MsgBlock) []*chainhash.Hash {
	blockHash := block.BlockHash()
	if merkles, ok := c.cache.Get(blockHash); ok {
		return merkles.([]*chainhash.Hash)
	}

	merkles := merkle.BuildMerkleTreeStore(block.Transactions)
	c.cache.Add(blockHash, merkles)
	return merkles
}

// Root returns the merkle root of the transactions of block.
func (c *MerkleTrees) Root(block *appmessage.MsgBlock) chainhash.Hash {
	return merkle.Root(c.Get(block))
}

// Has returns whether the tree of the block with the given hash is cached.
func (c *MerkleTrees) Has(blockHash chainhash.Hash) bool {
	return c.cache.Contains(blockHash)
}

// Remove drops the tree of the block with the given hash. Callers that
// change the transactions of a block must remove its tree.
func (c *MerkleTrees) Remove(blockHash chainhash.Hash) {
	c.cache.Remove(blockHash)
}

// Len returns the number of cached trees.
func (c *MerkleTrees) Len() int {
	return c.cache.Len()
}

// BlockDigest returns the hash of the full encoding of block. Unlike the
// block hash it commits to the transactions and the block signature.
func BlockDigest(block *appmessage.MsgBlock) chainhash.Hash {
	return hashes.IdentityHash(block.Bytes(appmessage.BlockEncodingFull))
}

// CheckedBlocks remembers the blocks that passed full validation. Entries are
// keyed by block hash and hold the BlockDigest of the validated block, since
// the hash alone does not commit to the signature or to a body that does not
// match the merkle root.
type CheckedBlocks struct {
	cache *lru.ARCCache
}

// NewCheckedBlocks creates a set holding up to capacity blocks.
func NewCheckedBlocks(capacity int) (*CheckedBlocks, error) {
	cache, err := lru.NewARC(capacity)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create checked block cache of capacity %d", capacity)
	}
	return &CheckedBlocks{cache: cache}, nil
}

// MarkChecked records that the block with the given hash and digest passed
// validation.
func (c *CheckedBlocks) MarkChecked(blockHash, digest chainhash.Hash) {
	c.cache.Add(blockHash, digest)
}

// IsChecked returns whether the block with the given hash and digest passed
// validation and is still remembered. A block sharing the hash of a checked
// block but not its digest is not checked.
func (c *CheckedBlocks) IsChecked(blockHash, digest chainhash.Hash) bool {
	checkedDigest, ok := c.cache.Get(blockHash)
	if !ok {
		return false
	}
	return checkedDigest.(chainhash.Hash) == digest
}

// Remove forgets the block with the given hash.
func (c *CheckedBlocks) Remove(blockHash chainhash.Hash) {
	c.cache.Remove(blockHash)
}
