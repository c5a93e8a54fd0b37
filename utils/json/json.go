// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package json provides the JSON-RPC codec and numeric wire types of the
// DAO VM API.
package json

import "strconv"

const Null = "null"

// Uint16 is a uint16 that is JSON marshaled as a string.
type Uint16 uint16

func (u Uint16) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint16) UnmarshalJSON(b []byte) error {
	val, err := parseUint(b, 16)
	*u = Uint16(val)
	return err
}

// Uint64 is a uint64 that is JSON marshaled as a string.
type Uint64 uint64

func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	val, err := parseUint(b, 64)
	*u = Uint64(val)
	return err
}

// parseUint accepts both quoted and bare numbers. null decodes to 0.
func parseUint(b []byte, bitSize int) (uint64, error) {
	str := string(b)
	if str == Null {
		return 0, nil
	}
	if len(str) >= 2 {
		if lastIndex := len(str) - 1; str[0] == '"' && str[lastIndex] == '"' {
			str = str[1:lastIndex]
		}
	}
	return strconv.ParseUint(str, 10, bitSize)
}
