package chain

import (
	"context"
	"encoding/hex"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// call packs and executes a view method against current chain state.
func (c *Client) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, newError(ErrSigningFailed, method, err)
	}

	res, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &c.contract, Data: data}, nil)
	if err != nil {
		return nil, newError(ErrRpcUnavailable, method, err)
	}

	out, err := c.abi.Unpack(method, res)
	if err != nil {
		return nil, newError(ErrRpcUnavailable, method, err)
	}
	return out, nil
}

func (c *Client) GetTransaction(ctx context.Context, id int64) (*OnChainTransaction, error) {
	out, err := c.call(ctx, "getTransaction", big.NewInt(id))
	if err != nil {
		return nil, err
	}

	hash := out[0].([32]byte)
	return &OnChainTransaction{
		ID:             id,
		TranscriptHash: hex.EncodeToString(hash[:]),
		ShopAddress:    out[1].(common.Address).Hex(),
		AmountMinor:    out[2].(*big.Int).Int64(),
		TxType:         TxType(out[3].(uint8)),
		Timestamp:      out[4].(*big.Int).Int64(),
	}, nil
}

func (c *Client) GetCreditScore(ctx context.Context, address string) (int64, error) {
	out, err := c.call(ctx, "getCreditScore", common.HexToAddress(address))
	if err != nil {
		return 0, err
	}
	return out[0].(*big.Int).Int64(), nil
}

func (c *Client) IsShopkeeperRegistered(ctx context.Context, address string) (bool, error) {
	out, err := c.call(ctx, "isShopkeeperRegistered", common.HexToAddress(address))
	if err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (c *Client) GetCooperative(ctx context.Context, id int64) (*Cooperative, error) {
	out, err := c.call(ctx, "getCooperative", big.NewInt(id))
	if err != nil {
		return nil, err
	}

	members := out[1].([]common.Address)
	coop := &Cooperative{
		ID:          id,
		Name:        out[0].(string),
		MemberCount: int64(len(members)),
	}
	for _, m := range members {
		coop.Members = append(coop.Members, m.Hex())
	}
	return coop, nil
}

func (c *Client) GetNextTransactionID(ctx context.Context) (int64, error) {
	out, err := c.call(ctx, "getNextTransactionId")
	if err != nil {
		return 0, err
	}
	return out[0].(*big.Int).Int64(), nil
}

func (c *Client) Balance(ctx context.Context, address string) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, newError(ErrRpcUnavailable, "balance_at", err)
	}
	return balance, nil
}
