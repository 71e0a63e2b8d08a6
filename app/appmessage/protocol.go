// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package appmessage

// ProtocolVersion is the latest protocol version this package supports.
const ProtocolVersion int32 = 70015

// Block versions. The block version decides which fields follow the header
// on the wire, see MsgBlock.Encode.
const (
	// LegacyBlockVersion2 is the block version of the original chain.
	LegacyBlockVersion2 int32 = 2

	// LegacyBlockVersion3 is the transitional version for legacy nodes.
	// From this version on the transactions always follow the header,
	// even in header-only encodings, and full encodings carry the block
	// signature.
	LegacyBlockVersion3 int32 = 3

	// CurrentBlockVersion is the version of blocks produced by this node.
	CurrentBlockVersion int32 = 4
)

// MaxMessagePayload is the maximum bytes a message can be regardless of other
// individual limits imposed by messages themselves.
const MaxMessagePayload = 1024 * 1024 * 32 // 32MB

// MaxBlockSerializedSize is the maximum size of a serialized block.
const MaxBlockSerializedSize = 4000000

// BlockEncoding selects how much of a block MsgBlock.Encode writes.
type BlockEncoding int

const (
	// BlockEncodingFull writes the header, the transactions and, from
	// LegacyBlockVersion3 on, the block signature.
	BlockEncodingFull BlockEncoding = iota

	// BlockEncodingHeaderOnly writes only the header for blocks older than
	// LegacyBlockVersion3. Newer blocks still carry their transactions, but
	// never the signature.
	BlockEncodingHeaderOnly
)

func (e BlockEncoding) String() string {
	switch e {
	case BlockEncodingFull:
		return "full"
	case BlockEncodingHeaderOnly:
		return "header-only"
	default:
		return "unknown"
	}
}

// EncodingContext tells encoders whether the bytes they produce go on the
// wire (or to disk) or are only fed to a hash function. Some messages omit
// fields when they are being hashed.
type EncodingContext int

const (
	// EncodingContextWire is used for network and disk encodings.
	EncodingContextWire EncodingContext = iota

	// EncodingContextHash is used when the encoding is only hashed.
	EncodingContextHash
)

func (c EncodingContext) String() string {
	switch c {
	case EncodingContextWire:
		return "wire"
	case EncodingContextHash:
		return "hash"
	default:
		return "unknown"
	}
}
