// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hashing wraps the hash functions used by the DAO VM.
//
// Keccak-256 (the pre-standard SHA-3 variant) is used for everything a group
// member can observe: masked hashes and the selection hash. SHA-256 is used for
// block, transaction and state identifiers.
package hashing

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/luxfi/ids"
)

// Keccak256 hashes the concatenation of the given byte slices.
func Keccak256(data ...[]byte) ids.ID {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}

	var id ids.ID
	copy(id[:], h.Sum(nil))
	return id
}

// HashValue returns the masked hash of a secret value: the Keccak-256 of its
// 8 byte little-endian encoding.
func HashValue(value uint64) ids.ID {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], value)
	return Keccak256(b[:])
}

// ComputeHash256 returns the SHA-256 of the given bytes.
func ComputeHash256(data []byte) ids.ID {
	return sha256.Sum256(data)
}
