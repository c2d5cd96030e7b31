// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// Licensed under the Apache License, Version 2.0

package ledger_cosmos

import (
	"crypto/sha256"

	"github.com/cosmos/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // cosmos addresses are defined over RIPEMD-160
)

// CreateCosmosAddress derives the bech32 account address of a compressed
// secp256k1 public key: bech32(cosmos, ripemd160(sha256(pk))).
func CreateCosmosAddress(compressedPK []byte) (string, error) {
	if len(compressedPK) != secp256k1.PubKeyBytesLenCompressed {
		return "", errors.Errorf("invalid compressed public key length %d", len(compressedPK))
	}
	if _, err := secp256k1.ParsePubKey(compressedPK); err != nil {
		return "", errors.Wrap(err, "invalid compressed public key")
	}

	sha := sha256.Sum256(compressedPK)
	hasher := ripemd160.New()
	hasher.Write(sha[:])

	address, err := bech32.EncodeFromBase256(BECH32Prefix, hasher.Sum(nil))
	if err != nil {
		return "", errors.Wrap(err, "bech32 encode")
	}
	return address, nil
}
