package network

import (
	"context"
	"fmt"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/ledger"
	"github.com/phantomarchive/libphantom-go/sealing"
)

// Oracle is the decryption side of a node: its public parameters and the
// re-encryption endpoint. *sealing.Coprocessor and *Client implement it.
type Oracle interface {
	sealing.Oracle
	NetworkInfo(ctx context.Context) (*sealing.NetworkInfo, error)
}

var (
	_ Oracle = (*sealing.Coprocessor)(nil)
	_ Oracle = (*Client)(nil)

	_ ledger.Ledger = (*Client)(nil)
)

// Client talks to a remote node. Reads need no key; AddFile signs each
// submission with the configured signer.
type Client struct {
	rpc    *RPCClient
	signer sealing.Signer
}

// NewClient wraps rpc. signer may be nil for a read-only client.
func NewClient(rpc *RPCClient, signer sealing.Signer) *Client {
	return &Client{rpc: rpc, signer: signer}
}

// Dial is shorthand for NewClient(NewRPCClient(cfg), signer).
func Dial(cfg RPCConfig, signer sealing.Signer) *Client {
	return NewClient(NewRPCClient(cfg), signer)
}

// URL returns the node base URL.
func (c *Client) URL() string { return c.rpc.URL() }

// ContractAddress returns the archive address served by the node.
func (c *Client) ContractAddress(ctx context.Context) (addrcrypt.Address, error) {
	var a addrcrypt.Address
	if err := c.rpc.Call(ctx, MethodContractAddress, nil, &a); err != nil {
		return addrcrypt.Address{}, err
	}
	return a, nil
}

// AddFile submits a record as caller, which must be the signer's address.
func (c *Client) AddFile(ctx context.Context, caller addrcrypt.Address, name, encryptedPayload string, in *sealing.Input) (uint64, error) {
	if c.signer == nil {
		return 0, ErrNoSigner
	}
	if caller != c.signer.Address() {
		return 0, fmt.Errorf("%w: caller %s is not the signer %s", ErrAuthFailed, caller, c.signer.Address())
	}
	if in == nil {
		return 0, fmt.Errorf("%w: input", ledger.ErrNilParam)
	}

	contract, err := c.ContractAddress(ctx)
	if err != nil {
		return 0, err
	}
	sig, err := c.signer.Sign(SubmissionDigest(contract, name, encryptedPayload, in.Handle))
	if err != nil {
		return 0, fmt.Errorf("network: sign submission: %w", err)
	}

	params := AddFileParams{
		Name:             name,
		EncryptedPayload: encryptedPayload,
		Input:            in,
		SignerPublicKey:  c.signer.PublicKey().Compressed(),
		Signature:        sig,
	}
	var res AddFileResult
	if err := c.rpc.Call(ctx, MethodAddFile, []any{params}, &res); err != nil {
		return 0, err
	}
	return res.Index, nil
}

// FileCount returns the number of records user has stored.
func (c *Client) FileCount(ctx context.Context, user addrcrypt.Address) (uint64, error) {
	var res FileCountResult
	if err := c.rpc.Call(ctx, MethodFileCount, []any{user}, &res); err != nil {
		return 0, err
	}
	return res.Count, nil
}

// File returns record index of user.
func (c *Client) File(ctx context.Context, user addrcrypt.Address, index uint64) (*ledger.Record, error) {
	var rec ledger.Record
	if err := c.rpc.Call(ctx, MethodFile, []any{user, index}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// NetworkInfo returns the network public key and EIP-712 domain of the node.
func (c *Client) NetworkInfo(ctx context.Context) (*sealing.NetworkInfo, error) {
	var info sealing.NetworkInfo
	if err := c.rpc.Call(ctx, MethodNetworkPublicKey, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// UserDecrypt forwards a signed decrypt request to the node's oracle.
func (c *Client) UserDecrypt(ctx context.Context, req *sealing.DecryptRequest) (*sealing.DecryptResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request", sealing.ErrNilParam)
	}
	var resp sealing.DecryptResponse
	if err := c.rpc.Call(ctx, MethodUserDecrypt, []any{req}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
