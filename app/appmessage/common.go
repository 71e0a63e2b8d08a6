// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package appmessage

import (
	"fmt"
	"io"
	"math"

	"github.com/DaGoOfMaN/solarcoin/util/binaryserializer"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// MaxVarIntPayload is the maximum payload size for a variable length integer.
const MaxVarIntPayload = 9

const errNonCanonicalVarInt = "non-canonical varint %x - discriminant %x must " +
	"encode at least %x"

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

// ReadElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func ReadElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		rv, err := binaryserializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = int32(rv)
		return nil

	case *uint32:
		rv, err := binaryserializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil

	case *int64:
		rv, err := binaryserializer.Uint64(r)
		if err != nil {
			return err
		}
		*e = int64(rv)
		return nil

	case *uint64:
		rv, err := binaryserializer.Uint64(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil

	case *uint8:
		rv, err := binaryserializer.Uint8(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil

	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		if err != nil {
			return errors.WithStack(err)
		}
		return nil
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
}

// readElements reads multiple items from r. It is equivalent to multiple
// calls to ReadElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := ReadElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteElement writes the little endian representation of element to w.
func WriteElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		return binaryserializer.PutUint32(w, uint32(e))

	case uint32:
		return binaryserializer.PutUint32(w, e)

	case int64:
		return binaryserializer.PutUint64(w, uint64(e))

	case uint64:
		return binaryserializer.PutUint64(w, e)

	case uint8:
		return binaryserializer.PutUint8(w, e)

	case chainhash.Hash:
		_, err := w.Write(e[:])
		return errors.WithStack(err)

	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return errors.WithStack(err)
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
}

// writeElements writes multiple items to w. It is equivalent to multiple
// calls to WriteElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := WriteElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// Variable length integers are a single byte below varIntDiscriminant16, or a
// discriminant byte followed by a little endian uint16, uint32 or uint64.
const (
	varIntDiscriminant16 = 0xfd
	varIntDiscriminant32 = 0xfe
	varIntDiscriminant64 = 0xff
)

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64. Values encoded in a longer form than needed are rejected.
func ReadVarInt(r io.Reader) (uint64, error) {
	discriminant, err := binaryserializer.Uint8(r)
	if err != nil {
		return 0, err
	}

	var value, minValue uint64
	switch discriminant {
	case varIntDiscriminant64:
		value, err = binaryserializer.Uint64(r)
		minValue = math.MaxUint32 + 1

	case varIntDiscriminant32:
		var value32 uint32
		value32, err = binaryserializer.Uint32(r)
		value, minValue = uint64(value32), math.MaxUint16+1

	case varIntDiscriminant16:
		var value16 uint16
		value16, err = binaryserializer.Uint16(r)
		value, minValue = uint64(value16), varIntDiscriminant16

	default:
		return uint64(discriminant), nil
	}
	if err != nil {
		return 0, err
	}

	if value < minValue {
		return 0, messageError("ReadVarInt", fmt.Sprintf(
			errNonCanonicalVarInt, value, discriminant, minValue))
	}
	return value, nil
}

// WriteVarInt serializes val to w in the shortest variable length form.
func WriteVarInt(w io.Writer, val uint64) error {
	switch VarIntSerializeSize(val) {
	case 1:
		return binaryserializer.PutUint8(w, uint8(val))
	case 3:
		return writeVarIntPayload(w, varIntDiscriminant16, func() error {
			return binaryserializer.PutUint16(w, uint16(val))
		})
	case 5:
		return writeVarIntPayload(w, varIntDiscriminant32, func() error {
			return binaryserializer.PutUint32(w, uint32(val))
		})
	default:
		return writeVarIntPayload(w, varIntDiscriminant64, func() error {
			return binaryserializer.PutUint64(w, val)
		})
	}
}

func writeVarIntPayload(w io.Writer, discriminant uint8, writePayload func() error) error {
	err := binaryserializer.PutUint8(w, discriminant)
	if err != nil {
		return err
	}
	return writePayload()
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < varIntDiscriminant16:
		return 1
	case val <= math.MaxUint16:
		return 3
	case val <= math.MaxUint32:
		return 5
	default:
		return MaxVarIntPayload
	}
}

// ReadVarString reads a variable length string from r and returns it as a Go
// string. An error is returned if the length is greater than maxAllowed,
// which protects against memory exhaustion through malformed messages.
func ReadVarString(r io.Reader, maxAllowed uint32, fieldName string) (string, error) {
	b, err := ReadVarBytes(r, maxAllowed, fieldName)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteVarString serializes str to w as a variable length integer containing
// the length of the string followed by the bytes that represent the string
// itself.
func WriteVarString(w io.Writer, str string) error {
	return WriteVarBytes(w, []byte(str))
}

// ReadVarBytes reads a variable length byte array. A byte array is encoded
// as a varInt containing the length of the array followed by the bytes
// themselves. An error is returned if the length is greater than the
// passed maxAllowed parameter which helps protect against memory exhaustion
// attacks and forced panics through malformed messages. The fieldName
// parameter is only used for the error message so it provides more context in
// the error.
func ReadVarBytes(r io.Reader, maxAllowed uint32, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	// Prevent byte array larger than the max message size. It would
	// be possible to cause memory exhaustion and panics without a sane
	// upper bound on this count.
	if count > uint64(maxAllowed) {
		str := fmt.Sprintf("%s is larger than the max allowed size "+
			"[count %d, max %d]", fieldName, count, maxAllowed)
		return nil, messageError("ReadVarBytes", str)
	}

	b := make([]byte, count)
	_, err = io.ReadFull(r, b)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// WriteVarBytes serializes a variable length byte array to w as a varInt
// containing the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	err := WriteVarInt(w, uint64(len(bytes)))
	if err != nil {
		return err
	}

	_, err = w.Write(bytes)
	return errors.WithStack(err)
}

// varBytesSerializeSize returns the number of bytes WriteVarBytes writes for
// a payload of the given length.
func varBytesSerializeSize(length int) int {
	return VarIntSerializeSize(uint64(length)) + length
}
