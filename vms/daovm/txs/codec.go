// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package txs

import (
	"errors"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const CodecVersion = 0

var Codec codec.Manager

func init() {
	Codec = codec.NewManager(math.MaxInt32)
	lc := linearcodec.NewDefault()

	// The registration order fixes the type ids on the wire. Append only.
	err := errors.Join(
		lc.RegisterType(&CreateGroupTx{}),
		lc.RegisterType(&AddMemberTx{}),
		lc.RegisterType(&RemoveMemberTx{}),
		lc.RegisterType(&SubmitCommitmentTx{}),
		lc.RegisterType(&RevealTx{}),
		lc.RegisterType(&StartNewRoundTx{}),
		Codec.RegisterCodec(CodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}
