package solana

import (
	"context"
	"encoding/base64"
	"fmt"

	sol "github.com/gagliardetto/solana-go"
)

// TokenAccount is the parsed form of an SPL token account.
type TokenAccount struct {
	Address  string
	Mint     string
	Amount   string
	Decimals int
}

// IsNFT reports whether the account holds exactly one unit of a
// zero-decimal mint.
func (t TokenAccount) IsNFT() bool {
	return t.Decimals == 0 && t.Amount == "1"
}

// Account is raw account data as returned by getMultipleAccounts.
type Account struct {
	Owner string
	Data  []byte
}

// TokenAccountsByOwner lists the token accounts of owner under one token
// program, using the node's jsonParsed encoding.
func (c *Client) TokenAccountsByOwner(ctx context.Context, owner, tokenProgram sol.PublicKey) ([]TokenAccount, error) {
	var result struct {
		Value []struct {
			Pubkey  string `json:"pubkey"`
			Account struct {
				Data struct {
					Parsed struct {
						Info struct {
							Mint        string `json:"mint"`
							TokenAmount struct {
								Amount   string `json:"amount"`
								Decimals int    `json:"decimals"`
							} `json:"tokenAmount"`
						} `json:"info"`
					} `json:"parsed"`
				} `json:"data"`
			} `json:"account"`
		} `json:"value"`
	}

	params := []any{
		owner.String(),
		map[string]string{"programId": tokenProgram.String()},
		map[string]string{"encoding": "jsonParsed"},
	}
	if err := c.call(ctx, "getTokenAccountsByOwner", params, &result); err != nil {
		return nil, err
	}

	accounts := make([]TokenAccount, 0, len(result.Value))
	for _, v := range result.Value {
		info := v.Account.Data.Parsed.Info
		accounts = append(accounts, TokenAccount{
			Address:  v.Pubkey,
			Mint:     info.Mint,
			Amount:   info.TokenAmount.Amount,
			Decimals: info.TokenAmount.Decimals,
		})
	}
	return accounts, nil
}

// MultipleAccounts fetches raw account data. The result is aligned with
// keys; a missing account is nil.
func (c *Client) MultipleAccounts(ctx context.Context, keys []sol.PublicKey) ([]*Account, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	addrs := make([]string, len(keys))
	for i, k := range keys {
		addrs[i] = k.String()
	}

	var result struct {
		Value []*struct {
			Owner string   `json:"owner"`
			Data  []string `json:"data"`
		} `json:"value"`
	}
	params := []any{addrs, map[string]string{"encoding": "base64"}}
	if err := c.call(ctx, "getMultipleAccounts", params, &result); err != nil {
		return nil, err
	}
	if len(result.Value) != len(keys) {
		return nil, fmt.Errorf("getMultipleAccounts: got %d accounts for %d keys", len(result.Value), len(keys))
	}

	out := make([]*Account, len(keys))
	for i, v := range result.Value {
		if v == nil {
			continue
		}
		if len(v.Data) == 0 {
			return nil, fmt.Errorf("account %s: empty data", addrs[i])
		}
		data, err := base64.StdEncoding.DecodeString(v.Data[0])
		if err != nil {
			return nil, fmt.Errorf("account %s: decode data: %w", addrs[i], err)
		}
		out[i] = &Account{Owner: v.Owner, Data: data}
	}
	return out, nil
}
