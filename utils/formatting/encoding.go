// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package formatting encodes bytes for the API and the command line.
package formatting

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/luxfi/daovm/utils/hashing"
)

const (
	hexPrefix   = "0x"
	checksumLen = 4
)

var (
	errUnknownEncoding = errors.New("unknown encoding")
	errMissingPrefix   = errors.New("missing 0x prefix")
	errBadChecksum     = errors.New("invalid input checksum")
	errMissingChecksum = errors.New("input string is smaller than the checksum size")
)

// Encoding is a byte encoding.
type Encoding uint8

const (
	// Hex is 0x prefixed hex with a trailing 4 byte checksum, the last 4
	// bytes of the SHA-256 of the payload.
	Hex Encoding = iota
	// HexNC is 0x prefixed hex without a checksum.
	HexNC
)

func (enc Encoding) String() string {
	switch enc {
	case Hex:
		return "hex"
	case HexNC:
		return "hexnc"
	default:
		return errUnknownEncoding.Error()
	}
}

func (enc Encoding) MarshalJSON() ([]byte, error) {
	switch enc {
	case Hex, HexNC:
		return []byte(`"` + enc.String() + `"`), nil
	default:
		return nil, errUnknownEncoding
	}
}

func (enc *Encoding) UnmarshalJSON(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "null", `""`, `"hex"`:
		*enc = Hex
	case `"hexnc"`:
		*enc = HexNC
	default:
		return fmt.Errorf("%w: %s", errUnknownEncoding, b)
	}
	return nil
}

// Encode returns the string representation of b in the given encoding.
func Encode(enc Encoding, b []byte) (string, error) {
	switch enc {
	case Hex:
		checked := make([]byte, 0, len(b)+checksumLen)
		checked = append(checked, b...)
		checked = append(checked, checksum(b)...)
		return hexPrefix + hex.EncodeToString(checked), nil
	case HexNC:
		return hexPrefix + hex.EncodeToString(b), nil
	default:
		return "", errUnknownEncoding
	}
}

// Decode parses str in the given encoding. An empty string decodes to nil.
func Decode(enc Encoding, str string) ([]byte, error) {
	if len(str) == 0 {
		return nil, nil
	}
	if !strings.HasPrefix(str, hexPrefix) {
		return nil, errMissingPrefix
	}
	decoded, err := hex.DecodeString(str[len(hexPrefix):])
	if err != nil {
		return nil, err
	}

	switch enc {
	case Hex:
		if len(decoded) < checksumLen {
			return nil, errMissingChecksum
		}
		payload := decoded[:len(decoded)-checksumLen]
		if !bytes.Equal(checksum(payload), decoded[len(payload):]) {
			return nil, errBadChecksum
		}
		return payload, nil
	case HexNC:
		return decoded, nil
	default:
		return nil, errUnknownEncoding
	}
}

func checksum(b []byte) []byte {
	hash := hashing.ComputeHash256(b)
	return hash[len(hash)-checksumLen:]
}
