package network

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/ledger"
	"github.com/phantomarchive/libphantom-go/sealing"
	"github.com/phantomarchive/libphantom-go/storage"
	"github.com/phantomarchive/libphantom-go/wallet"
)

type node struct {
	url     string
	cop     *sealing.Coprocessor
	archive *ledger.Archive
	content *storage.FileStore
}

func startNode(t *testing.T, opts ...ServerOption) *node {
	t.Helper()

	networkKey, err := wallet.NewPrivateKey(nil)
	require.NoError(t, err)
	cop, err := sealing.NewCoprocessor(networkKey, sealing.NewMemStore(), 31337)
	require.NoError(t, err)

	deployer := addrcrypt.MustParseAddress("0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	archive, err := ledger.New(ledger.ContractAddress(deployer), ledger.NewMemBackend(), cop)
	require.NoError(t, err)

	content, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	srv, err := NewServer(archive, cop, append([]ServerOption{WithContentStore(content)}, opts...)...)
	require.NoError(t, err)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &node{url: ts.URL, cop: cop, archive: archive, content: content}
}

func newAccount(t *testing.T) *wallet.Account {
	t.Helper()
	priv, err := wallet.NewPrivateKey(nil)
	require.NoError(t, err)
	acct, err := wallet.NewAccount(priv, "")
	require.NoError(t, err)
	return acct
}

// sealFor seals value for account through the node's advertised key.
func sealFor(t *testing.T, c *Client, account *wallet.Account, value addrcrypt.Address) *sealing.Input {
	t.Helper()
	ctx := context.Background()

	info, err := c.NetworkInfo(ctx)
	require.NoError(t, err)
	pub, err := sealing.ParsePublicKey(info.PublicKey)
	require.NoError(t, err)
	contract, err := c.ContractAddress(ctx)
	require.NoError(t, err)

	sealer, err := sealing.NewSealer(pub)
	require.NoError(t, err)
	in, err := sealer.Seal(value, contract, account.Address())
	require.NoError(t, err)
	return in
}

func TestServer_EndToEnd(t *testing.T) {
	ctx := context.Background()
	n := startNode(t)
	alice := newAccount(t)
	c := Dial(RPCConfig{URL: n.url}, alice)

	contract, err := c.ContractAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, n.archive.Address(), contract)

	info, err := c.NetworkInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, n.cop.Domain(), info.Domain)

	value := addrcrypt.MustParseAddress("0x00000000000000000000000000000000000000aa")
	in := sealFor(t, c, alice, value)

	idx, err := c.AddFile(ctx, alice.Address(), "report.pdf", "bm9uY2U=:Y3Q=", in)
	require.NoError(t, err)
	assert.Zero(t, idx)

	count, err := c.FileCount(ctx, alice.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	rec, err := c.File(ctx, alice.Address(), 0)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", rec.Name)
	assert.Equal(t, in.Handle, rec.SealedAddress)

	unsealer, err := sealing.NewUnsealer(c, info.Domain)
	require.NoError(t, err)
	got, err := unsealer.Unseal(ctx, rec.SealedAddress, contract, alice)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	// Another account is not on the ACL.
	bob := newAccount(t)
	_, err = unsealer.Unseal(ctx, rec.SealedAddress, contract, bob)
	assert.ErrorIs(t, err, sealing.ErrUnauthorized)
}

func TestServer_ErrorsCrossTheWire(t *testing.T) {
	ctx := context.Background()
	n := startNode(t)
	alice := newAccount(t)
	c := Dial(RPCConfig{URL: n.url}, alice)

	_, err := c.File(ctx, alice.Address(), 0)
	assert.ErrorIs(t, err, ledger.ErrIndexOutOfRange)

	in := sealFor(t, c, alice, addrcrypt.Address{1})
	_, err = c.AddFile(ctx, alice.Address(), "", "p", in)
	assert.ErrorIs(t, err, ledger.ErrEmptyName)
	_, err = c.AddFile(ctx, alice.Address(), "n", "", in)
	assert.ErrorIs(t, err, ledger.ErrEmptyPayload)

	// Sealed for bob, submitted by alice.
	bob := newAccount(t)
	_, err = c.AddFile(ctx, alice.Address(), "n", "p", sealFor(t, c, bob, addrcrypt.Address{1}))
	assert.ErrorIs(t, err, sealing.ErrHandleMismatch)

	err = c.rpc.Call(ctx, "archive_nope", nil, nil)
	assert.ErrorIs(t, err, ErrMethodNotFound)

	err = c.rpc.Call(ctx, MethodFileCount, []any{"not-an-address"}, nil)
	assert.ErrorIs(t, err, ErrInvalidParams)

	err = c.rpc.Call(ctx, MethodFile, []any{alice.Address()}, nil)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestServer_AddFileRequiresValidSignature(t *testing.T) {
	ctx := context.Background()
	n := startNode(t)
	alice := newAccount(t)
	c := Dial(RPCConfig{URL: n.url}, alice)
	in := sealFor(t, c, alice, addrcrypt.Address{1})

	contract, err := c.ContractAddress(ctx)
	require.NoError(t, err)
	sig, err := alice.Sign(SubmissionDigest(contract, "n", "p", in.Handle))
	require.NoError(t, err)

	tests := []struct {
		name   string
		params AddFileParams
	}{
		{"signed different name", AddFileParams{Name: "other", EncryptedPayload: "p", Input: in, SignerPublicKey: alice.PublicKey().Compressed(), Signature: sig}},
		{"bad key", AddFileParams{Name: "n", EncryptedPayload: "p", Input: in, SignerPublicKey: []byte{2, 1}, Signature: sig}},
		{"bad signature", AddFileParams{Name: "n", EncryptedPayload: "p", Input: in, SignerPublicKey: alice.PublicKey().Compressed(), Signature: []byte{0x30}}},
		{"other signer", AddFileParams{Name: "n", EncryptedPayload: "p", Input: in, SignerPublicKey: newAccount(t).PublicKey().Compressed(), Signature: sig}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.rpc.Call(ctx, MethodAddFile, []any{tt.params}, nil)
			assert.ErrorIs(t, err, ErrAuthFailed)
		})
	}

	count, err := c.FileCount(ctx, alice.Address())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestClient_AddFileNeedsMatchingSigner(t *testing.T) {
	ctx := context.Background()
	n := startNode(t)
	alice := newAccount(t)

	_, err := Dial(RPCConfig{URL: n.url}, nil).AddFile(ctx, alice.Address(), "n", "p", &sealing.Input{})
	assert.ErrorIs(t, err, ErrNoSigner)

	_, err = Dial(RPCConfig{URL: n.url}, alice).AddFile(ctx, newAccount(t).Address(), "n", "p", &sealing.Input{})
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = Dial(RPCConfig{URL: n.url}, alice).AddFile(ctx, alice.Address(), "n", "p", nil)
	assert.ErrorIs(t, err, ledger.ErrNilParam)
}

func TestServer_BasicAuth(t *testing.T) {
	ctx := context.Background()
	n := startNode(t, WithBasicAuth("phantom", "s3cret"))

	_, err := Dial(RPCConfig{URL: n.url}, nil).ContractAddress(ctx)
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = Dial(RPCConfig{URL: n.url, User: "phantom", Password: "wrong"}, nil).ContractAddress(ctx)
	assert.ErrorIs(t, err, ErrAuthFailed)

	_, err = Dial(RPCConfig{URL: n.url, User: "phantom", Password: "s3cret"}, nil).ContractAddress(ctx)
	assert.NoError(t, err)
}

func TestServer_Content(t *testing.T) {
	n := startNode(t)
	c, err := n.content.Put([]byte("hello phantom"))
	require.NoError(t, err)

	resp, err := http.Get(n.url + storage.ContentPathPrefix + c.String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello phantom", string(body))

	missing, err := storage.ContentID([]byte("missing"))
	require.NoError(t, err)
	resp, err = http.Get(n.url + storage.ContentPathPrefix + missing.String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(n.url + storage.ContentPathPrefix + "garbage")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The resolver fetches through the node and verifies the CID.
	local, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	data, err := storage.NewContentResolver(local, n.url).Fetch(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, "hello phantom", string(data))
}

func TestServer_Routing(t *testing.T) {
	n := startNode(t)

	resp, err := http.Get(n.url + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(n.url + "/elsewhere")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(n.url+"/", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	var out rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	require.NotNil(t, out.Error)
	assert.Equal(t, CodeParseError, out.Error.Code)

	resp, err = http.Post(n.url+"/", "application/json", strings.NewReader(`{"jsonrpc":"1.0","id":4,"method":"x"}`))
	require.NoError(t, err)
	out = rpcResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	resp.Body.Close()
	require.NotNil(t, out.Error)
	assert.Equal(t, CodeInvalidRequest, out.Error.Code)
	assert.Equal(t, int64(4), out.ID)
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	networkKey, err := wallet.NewPrivateKey(nil)
	require.NoError(t, err)
	cop, err := sealing.NewCoprocessor(networkKey, sealing.NewMemStore(), 31337)
	require.NoError(t, err)
	archive, err := ledger.New(addrcrypt.Address{9}, ledger.NewMemBackend(), cop)
	require.NoError(t, err)
	srv, err := NewServer(archive, cop)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	a, err := Dial(RPCConfig{URL: "http://" + ln.Addr().String()}, nil).ContractAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, addrcrypt.Address{9}, a)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewServer_NilParams(t *testing.T) {
	_, err := NewServer(nil, nil)
	assert.ErrorIs(t, err, ledger.ErrNilParam)

	n := startNode(t)
	_, err = NewServer(n.archive, nil)
	assert.ErrorIs(t, err, sealing.ErrNilParam)
}
