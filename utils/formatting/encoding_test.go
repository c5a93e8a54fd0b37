// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package formatting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		encoding Encoding
		bytes    []byte
		str      string
	}{
		{
			encoding: HexNC,
			bytes:    []byte{0x00, 0x01, 0xff},
			str:      "0x0001ff",
		},
		{
			encoding: HexNC,
			bytes:    []byte{},
			str:      "0x",
		},
		{
			// sha256("") ends in 7852b855
			encoding: Hex,
			bytes:    []byte{},
			str:      "0x7852b855",
		},
	}
	for _, test := range tests {
		t.Run(test.encoding.String(), func(t *testing.T) {
			require := require.New(t)

			str, err := Encode(test.encoding, test.bytes)
			require.NoError(err)
			require.Equal(test.str, str)

			decoded, err := Decode(test.encoding, str)
			require.NoError(err)
			require.Equal(test.bytes, decoded)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name        string
		encoding    Encoding
		str         string
		expectedErr error
	}{
		{
			name:        "missing prefix",
			encoding:    HexNC,
			str:         "0001",
			expectedErr: errMissingPrefix,
		},
		{
			name:        "short checksum",
			encoding:    Hex,
			str:         "0x0102",
			expectedErr: errMissingChecksum,
		},
		{
			name:        "bad checksum",
			encoding:    Hex,
			str:         "0x7852b856",
			expectedErr: errBadChecksum,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(test.encoding, test.str)
			require.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestHexRoundTrip(t *testing.T) {
	require := require.New(t)

	b := []byte("dao")
	str, err := Encode(Hex, b)
	require.NoError(err)
	decoded, err := Decode(Hex, str)
	require.NoError(err)
	require.Equal(b, decoded)
}

func TestEncodingJSON(t *testing.T) {
	require := require.New(t)

	var enc Encoding
	require.NoError(json.Unmarshal([]byte(`"hexnc"`), &enc))
	require.Equal(HexNC, enc)
	require.NoError(json.Unmarshal([]byte(`"hex"`), &enc))
	require.Equal(Hex, enc)
	require.Error(json.Unmarshal([]byte(`"cb58"`), &enc))
}
