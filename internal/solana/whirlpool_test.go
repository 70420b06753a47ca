package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sol "github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOwner     = sol.MustPublicKeyFromBase58("HKhMuLcetQ163owVrpKT3fgUszV64Cqa3bgdYGJQj4qh")
	testWhirlpool = sol.PublicKeyFromBytes(bytes.Repeat([]byte{7}, 32))
	nftMint       = sol.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	otherNFTMint  = sol.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
)

func positionData(mint sol.PublicKey, liquidity uint64, lower, upper int32, feeA, feeB uint64) []byte {
	data := make([]byte, 216)
	copy(data, positionDiscriminator)
	copy(data[8:], testWhirlpool.Bytes())
	copy(data[40:], mint.Bytes())
	binary.LittleEndian.PutUint64(data[72:], liquidity)
	binary.LittleEndian.PutUint32(data[88:], uint32(lower))
	binary.LittleEndian.PutUint32(data[92:], uint32(upper))
	binary.LittleEndian.PutUint64(data[112:], feeA)
	binary.LittleEndian.PutUint64(data[136:], feeB)
	return data
}

func TestDecodePosition(t *testing.T) {
	p, err := DecodePosition(positionData(nftMint, 123456789, -443584, 443584, 42, 7))
	require.NoError(t, err)

	assert.Equal(t, testWhirlpool.String(), p.Whirlpool)
	assert.Equal(t, nftMint.String(), p.PositionMint)
	assert.Equal(t, "123456789", p.Liquidity.String())
	assert.Equal(t, int32(-443584), p.TickLower)
	assert.Equal(t, int32(443584), p.TickUpper)
	assert.Equal(t, uint64(42), p.FeeOwedA)
	assert.Equal(t, uint64(7), p.FeeOwedB)
}

func TestDecodePositionLargeLiquidity(t *testing.T) {
	data := positionData(nftMint, 0, 0, 0, 0, 0)
	// 2^64 sits in the high half of the u128.
	binary.LittleEndian.PutUint64(data[80:], 1)

	p, err := DecodePosition(data)
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551616", p.Liquidity.String())
}

func TestDecodePositionRejects(t *testing.T) {
	_, err := DecodePosition(make([]byte, 100))
	assert.ErrorIs(t, err, ErrNotPosition)

	data := positionData(nftMint, 1, 0, 0, 0, 0)
	data[0] = 0
	_, err = DecodePosition(data)
	assert.ErrorIs(t, err, ErrNotPosition)
}

func TestPositionAddressDeterministic(t *testing.T) {
	a, err := PositionAddress(nftMint)
	require.NoError(t, err)
	b, err := PositionAddress(nftMint)
	require.NoError(t, err)
	c, err := PositionAddress(otherNFTMint)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func tokenAccount(pubkey string, mint sol.PublicKey, amount string, decimals int) map[string]any {
	return map[string]any{
		"pubkey": pubkey,
		"account": map[string]any{
			"data": map[string]any{
				"parsed": map[string]any{
					"info": map[string]any{
						"mint":  mint.String(),
						"owner": testOwner.String(),
						"tokenAmount": map[string]any{
							"amount":   amount,
							"decimals": decimals,
						},
					},
					"type": "account",
				},
				"program": "spl-token",
			},
		},
	}
}

func newRPCServer(t *testing.T, handle func(method string, params []json.RawMessage) any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     uint64            `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  handle(req.Method, req.Params),
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPositionsForOwner(t *testing.T) {
	pda, err := PositionAddress(nftMint)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(positionData(nftMint, 1000, -10, 10, 5, 6))

	srv := newRPCServer(t, func(method string, params []json.RawMessage) any {
		switch method {
		case "getTokenAccountsByOwner":
			var owner string
			var filter map[string]string
			_ = json.Unmarshal(params[0], &owner)
			_ = json.Unmarshal(params[1], &filter)
			assert.Equal(t, testOwner.String(), owner)

			if filter["programId"] == Token2022ProgramID.String() {
				// Position NFT whose account no longer exists.
				return map[string]any{"value": []any{tokenAccount("acc3", otherNFTMint, "1", 0)}}
			}
			return map[string]any{"value": []any{
				tokenAccount("acc1", nftMint, "1", 0),
				tokenAccount("acc2", otherNFTMint, "5000000", 6),
			}}
		case "getMultipleAccounts":
			var keys []string
			_ = json.Unmarshal(params[0], &keys)
			out := make([]any, len(keys))
			for i, k := range keys {
				if k == pda.String() {
					out[i] = map[string]any{
						"owner": WhirlpoolProgramID.String(),
						"data":  []string{encoded, "base64"},
					}
				}
			}
			return map[string]any{"value": out}
		}
		t.Errorf("unexpected method %s", method)
		return nil
	})

	positions, err := NewClient(srv.URL).PositionsForOwner(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, positions, 1)

	p := positions[0]
	assert.Equal(t, pda.String(), p.Address)
	assert.Equal(t, nftMint.String(), p.PositionMint)
	assert.Equal(t, base58.Encode(testWhirlpool.Bytes()), p.Whirlpool)
	assert.Equal(t, "1000", p.Liquidity.String())
	assert.Equal(t, int32(-10), p.TickLower)
	assert.Equal(t, uint64(6), p.FeeOwedB)
}

func TestClientRPCErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid param"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithRetryDelay(time.Millisecond)).TokenAccountsByOwner(context.Background(), testOwner, sol.TokenProgramID)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32602, rpcErr.Code)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"value":[]}}`))
	}))
	defer srv.Close()

	accounts, err := NewClient(srv.URL, WithRetryDelay(time.Millisecond)).TokenAccountsByOwner(context.Background(), testOwner, sol.TokenProgramID)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithRetryDelay(time.Millisecond), WithMaxRetries(2))
	_, err := c.MultipleAccounts(context.Background(), []sol.PublicKey{nftMint})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
}
