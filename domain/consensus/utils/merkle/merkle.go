// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"math"

	"github.com/DaGoOfMaN/solarcoin/app/appmessage"
	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// nextPowerOfTwo returns the next highest power of two from a given number if
// it is not already a power of two. This is a helper function used during the
// calculation of a merkle tree.
func nextPowerOfTwo(n int) int {
	// Return the number if it's already a power of 2.
	if n&(n-1) == 0 {
		return n
	}

	// Figure out and return the next power of two.
	exponent := uint(math.Log2(float64(n))) + 1
	return 1 << exponent // 2^exponent
}

// BuildMerkleTreeStore creates a merkle tree from a slice of transactions,
// stores it using a linear array, and returns a slice of the backing array. A
// linear array was chosen as opposed to an actual tree structure since it uses
// about half as much memory. The following describes a merkle tree and how it
// is stored in a linear array.
//
// A merkle tree is a tree in which every non-leaf node is the hash of its
// children nodes. A diagram depicting how this works for transactions
// where h(x) is a double sha256 follows:
//
//	         root = h1234 = h(h12 + h34)
//	        /                           \
//	  h12 = h(h1 + h2)            h34 = h(h3 + h4)
//	   /            \              /            \
//	h1 = h(tx1)  h2 = h(tx2)    h3 = h(tx3)  h4 = h(tx4)
//
// The above stored as a linear array is as follows:
//
//	[h1 h2 h3 h4 h12 h34 root]
//
// As the above shows, the merkle root is always the last element in the array.
//
// The number of inputs is not always a power of two which results in a
// balanced tree structure as above. In that case, parent nodes with no
// children are also zero and parent nodes with only a single left node
// are calculated by concatenating the left node with itself before hashing.
// Since this function uses nodes that are pointers to the hashes, empty nodes
// will be nil.
//
// An empty transaction list has no tree and yields a nil store.
func BuildMerkleTreeStore(transactions []*appmessage.MsgTx) []*chainhash.Hash {
	if len(transactions) == 0 {
		return nil
	}

	// Calculate how many entries are required to hold the binary merkle
	// tree as a linear array and create an array of that size.
	nextPoT := nextPowerOfTwo(len(transactions))
	arraySize := nextPoT*2 - 1
	merkles := make([]*chainhash.Hash, arraySize)

	// Create the base transaction hashes and populate the array with them.
	for i, tx := range transactions {
		txHash := tx.TxHash()
		merkles[i] = &txHash
	}

	// Start the array offset after the last transaction and adjusted to the
	// next power of two.
	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		// When there is no left child node, the parent is nil too.
		case merkles[i] == nil:
			merkles[offset] = nil

		// When there is no right child, the parent is generated by
		// hashing the concatenation of the left child with itself.
		case merkles[i+1] == nil:
			newHash := blockchain.HashMerkleBranches(merkles[i], merkles[i])
			merkles[offset] = &newHash

		// The normal case sets the parent node to the double sha256
		// of the concatentation of the left and right children.
		default:
			newHash := blockchain.HashMerkleBranches(merkles[i], merkles[i+1])
			merkles[offset] = &newHash
		}
		offset++
	}

	return merkles
}

// Root returns the merkle root of a store built by BuildMerkleTreeStore, or
// the zero hash for an empty store.
func Root(merkles []*chainhash.Hash) chainhash.Hash {
	if len(merkles) == 0 {
		return chainhash.Hash{}
	}
	return *merkles[len(merkles)-1]
}

// CalcMerkleRoot returns the merkle root of the given transactions. The root
// of an empty transaction list is the zero hash.
func CalcMerkleRoot(transactions []*appmessage.MsgTx) chainhash.Hash {
	return Root(BuildMerkleTreeStore(transactions))
}

// Branch returns the sibling hashes on the path from the transaction at
// index up to the root of a store built by BuildMerkleTreeStore, lowest
// level first. A node without a sibling is paired with itself. It returns nil
// if index is out of range.
func Branch(merkles []*chainhash.Hash, index int) []chainhash.Hash {
	if len(merkles) == 0 {
		return nil
	}
	width := (len(merkles) + 1) / 2
	if index < 0 || index >= width || merkles[index] == nil {
		return nil
	}

	branch := make([]chainhash.Hash, 0, int(math.Log2(float64(width))))
	offset := 0
	for ; width > 1; width /= 2 {
		sibling := merkles[offset+(index^1)]
		if sibling == nil {
			sibling = merkles[offset+index]
		}
		branch = append(branch, *sibling)
		offset += width
		index >>= 1
	}
	return branch
}

// CheckBranch returns the merkle root implied by a leaf hash, its branch as
// returned by Branch, and its index in the transaction list.
func CheckBranch(leaf chainhash.Hash, branch []chainhash.Hash, index int) chainhash.Hash {
	current := leaf
	for i := range branch {
		if index&1 == 1 {
			current = blockchain.HashMerkleBranches(&branch[i], &current)
		} else {
			current = blockchain.HashMerkleBranches(&current, &branch[i])
		}
		index >>= 1
	}
	return current
}
