// Package hashes holds the two hash primitives blocks are identified and
// mined with: a double SHA-256 identity hash and the scrypt proof-of-work
// hash.
package hashes

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// HeaderSize is the size of a serialized block header, and the only input
// size ProofOfWorkHash accepts.
const HeaderSize = 80

// scrypt parameters of the proof-of-work function.
const (
	scryptN      = 1024
	scryptR      = 1
	scryptP      = 1
	scryptKeyLen = chainhash.HashSize
)

// IdentityHash returns the double SHA-256 of b.
func IdentityHash(b []byte) chainhash.Hash {
	return chainhash.DoubleHashH(b)
}

// ProofOfWorkHash returns the scrypt(1024, 1, 1) hash of a serialized
// block header. The header is used as both password and salt.
//
// Passing anything other than a HeaderSize byte slice is a programming
// error and panics.
func ProofOfWorkHash(header []byte) chainhash.Hash {
	if len(header) != HeaderSize {
		panic(errors.Errorf("proof of work input must be %d bytes, got %d", HeaderSize, len(header)))
	}

	key, err := scrypt.Key(header, header, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		// scrypt.Key only fails on invalid parameters, which are constant here.
		panic(errors.Wrap(err, "this should never happen. scrypt parameters are constant"))
	}

	var powHash chainhash.Hash
	copy(powHash[:], key)
	return powHash
}
