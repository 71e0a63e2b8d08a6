// Package misbehavior keeps the denial-of-service scores of blocks. Scores
// live in a table keyed by hash instead of on the block itself, so a block
// can be shared between goroutines while it is being validated. Callers pick
// the key: the block hash for offences the header commits to, or a digest of
// the whole block for offences it does not.
package misbehavior

import (
	"math"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Tracker accumulates misbehavior scores per block hash. It is safe for
// concurrent use.
type Tracker struct {
	mtx          sync.Mutex
	scores       map[chainhash.Hash]uint32
	banThreshold uint32
}

// NewTracker returns a tracker that bans at banThreshold, or at
// DefaultBanThreshold if banThreshold is zero.
func NewTracker(banThreshold uint32) *Tracker {
	if banThreshold == 0 {
		banThreshold = DefaultBanThreshold
	}
	return &Tracker{
		scores:       make(map[chainhash.Hash]uint32),
		banThreshold: banThreshold,
	}
}

// Penalize adds amount to the score of the block with the given hash and
// returns outcome unchanged, so validation code can record misbehavior and
// return its verdict in one statement:
//
//	return tracker.Penalize(blockHash, BanScoreHighHash, false)
//
// Scores saturate instead of wrapping around.
func (t *Tracker) Penalize(blockHash chainhash.Hash, amount uint32, outcome bool) bool {
	if amount == 0 {
		return outcome
	}

	t.mtx.Lock()
	defer t.mtx.Unlock()

	score := t.scores[blockHash]
	if score > math.MaxUint32-amount {
		score = math.MaxUint32
	} else {
		score += amount
	}
	t.scores[blockHash] = score
	return outcome
}

// Score returns the accumulated score of the block with the given hash.
func (t *Tracker) Score(blockHash chainhash.Hash) uint32 {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return t.scores[blockHash]
}

// IsBanned returns whether the score of the block with the given hash reached
// the ban threshold.
func (t *Tracker) IsBanned(blockHash chainhash.Hash) bool {
	return t.Score(blockHash) >= t.banThreshold
}

// BanThreshold returns the score at which blocks are banned.
func (t *Tracker) BanThreshold() uint32 {
	return t.banThreshold
}

// Forget drops the score of the block with the given hash.
func (t *Tracker) Forget(blockHash chainhash.Hash) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	delete(t.scores, blockHash)
}

// Len returns the number of blocks with a score.
func (t *Tracker) Len() int {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	return len(t.scores)
}

// Context returns a Scope that penalizes the block with the given hash.
func (t *Tracker) Context(blockHash chainhash.Hash) *Scope {
	return &Scope{
		tracker:   t,
		blockHash: blockHash,
	}
}

// Scope is the misbehavior score of a single block, handed to the code that
// validates it.
type Scope struct {
	tracker   *Tracker
	blockHash chainhash.Hash
}

// BlockHash returns the hash of the block the scope penalizes.
func (s *Scope) BlockHash() chainhash.Hash {
	return s.blockHash
}

// Penalize adds amount to the block's score and returns outcome unchanged.
func (s *Scope) Penalize(amount uint32, outcome bool) bool {
	return s.tracker.Penalize(s.blockHash, amount, outcome)
}

// Reject adds the ban score carried by err to the block's score and returns
// err. Errors without a ban score are returned untouched.
func (s *Scope) Reject(err error) error {
	s.Penalize(BanScoreOf(err), false)
	return err
}

// Score returns the block's accumulated score.
func (s *Scope) Score() uint32 {
	return s.tracker.Score(s.blockHash)
}

// IsBanned returns whether the block's score reached the ban threshold.
func (s *Scope) IsBanned() bool {
	return s.tracker.IsBanned(s.blockHash)
}
