package solana

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	sol "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

var (
	// WhirlpoolProgramID is the Orca Whirlpool program on mainnet.
	WhirlpoolProgramID = sol.MustPublicKeyFromBase58("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc")

	// Token2022ProgramID is the SPL Token-2022 program.
	Token2022ProgramID = sol.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
)

// positionDiscriminator is the Anchor account discriminator of Position.
var positionDiscriminator = []byte{170, 188, 143, 228, 122, 64, 247, 208}

// positionMinLen covers every field up to fee_owed_b; reward infos follow.
const positionMinLen = 8 + 32 + 32 + 16 + 4 + 4 + 16 + 8 + 16 + 8

var ErrNotPosition = errors.New("account is not a whirlpool position")

// Position is a decoded Whirlpool position account.
type Position struct {
	Address      string
	Whirlpool    string
	PositionMint string
	Liquidity    decimal.Decimal
	TickLower    int32
	TickUpper    int32
	FeeOwedA     uint64
	FeeOwedB     uint64
}

// PositionAddress derives the position PDA for a position NFT mint.
func PositionAddress(mint sol.PublicKey) (sol.PublicKey, error) {
	addr, _, err := sol.FindProgramAddress([][]byte{[]byte("position"), mint.Bytes()}, WhirlpoolProgramID)
	if err != nil {
		return sol.PublicKey{}, fmt.Errorf("derive position address for %s: %w", mint, err)
	}
	return addr, nil
}

// DecodePosition parses raw Position account data.
func DecodePosition(data []byte) (Position, error) {
	if len(data) < positionMinLen || !bytes.Equal(data[:8], positionDiscriminator) {
		return Position{}, ErrNotPosition
	}

	off := 8
	p := Position{
		Whirlpool:    base58.Encode(data[off : off+32]),
		PositionMint: base58.Encode(data[off+32 : off+64]),
	}
	off += 64

	p.Liquidity = decimal.NewFromBigInt(u128(data[off:off+16]), 0)
	off += 16
	p.TickLower = int32(binary.LittleEndian.Uint32(data[off:]))
	p.TickUpper = int32(binary.LittleEndian.Uint32(data[off+4:]))
	off += 8

	off += 16 // fee_growth_checkpoint_a
	p.FeeOwedA = binary.LittleEndian.Uint64(data[off:])
	off += 8
	off += 16 // fee_growth_checkpoint_b
	p.FeeOwedB = binary.LittleEndian.Uint64(data[off:])
	return p, nil
}

// u128 reads a little-endian unsigned 128-bit integer.
func u128(b []byte) *big.Int {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[15-i] = b[i]
	}
	return new(big.Int).SetBytes(be)
}

// PositionsForOwner lists the open Whirlpool positions held by owner. Both
// token programs are scanned for position NFTs; mints whose derived account
// is missing or is not a position are ignored.
func (c *Client) PositionsForOwner(ctx context.Context, owner sol.PublicKey) ([]Position, error) {
	var pdas []sol.PublicKey
	for _, program := range []sol.PublicKey{sol.TokenProgramID, Token2022ProgramID} {
		accounts, err := c.TokenAccountsByOwner(ctx, owner, program)
		if err != nil {
			return nil, fmt.Errorf("token accounts under %s: %w", program, err)
		}
		for _, ta := range accounts {
			if !ta.IsNFT() {
				continue
			}
			mint, err := sol.PublicKeyFromBase58(ta.Mint)
			if err != nil {
				return nil, fmt.Errorf("token account %s: bad mint: %w", ta.Address, err)
			}
			pda, err := PositionAddress(mint)
			if err != nil {
				return nil, err
			}
			pdas = append(pdas, pda)
		}
	}

	var positions []Position
	for start := 0; start < len(pdas); start += maxAccountsPerCall {
		end := min(start+maxAccountsPerCall, len(pdas))
		accounts, err := c.MultipleAccounts(ctx, pdas[start:end])
		if err != nil {
			return nil, fmt.Errorf("position accounts: %w", err)
		}
		for i, acc := range accounts {
			if acc == nil || acc.Owner != WhirlpoolProgramID.String() {
				continue
			}
			p, err := DecodePosition(acc.Data)
			if err != nil {
				continue
			}
			p.Address = pdas[start+i].String()
			positions = append(positions, p)
		}
	}
	return positions, nil
}

// getMultipleAccounts accepts at most 100 keys.
const maxAccountsPerCall = 100
