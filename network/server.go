package network

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/sirupsen/logrus"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/ledger"
	"github.com/phantomarchive/libphantom-go/sealing"
	"github.com/phantomarchive/libphantom-go/storage"
	"github.com/phantomarchive/libphantom-go/wallet"
)

const (
	// maxRequestSize bounds the body of a JSON-RPC request (1 MB).
	maxRequestSize = 1 << 20

	shutdownTimeout = 5 * time.Second
)

// Server exposes a ledger and a decryption oracle over JSON-RPC 2.0 (POST /)
// and, when a content store is configured, serves content at
// GET /_phantom/content/{cid}.
type Server struct {
	ledger  ledger.Ledger
	oracle  Oracle
	content storage.Store
	user    string
	pass    string
	log     *logrus.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithContentStore serves content from store.
func WithContentStore(store storage.Store) ServerOption {
	return func(s *Server) { s.content = store }
}

// WithBasicAuth requires HTTP Basic Auth on RPC requests.
func WithBasicAuth(user, pass string) ServerOption {
	return func(s *Server) {
		s.user = user
		s.pass = pass
	}
}

// WithServerLogger sets the logger. Without it nothing is logged.
func WithServerLogger(l *logrus.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a Server for l and o.
func NewServer(l ledger.Ledger, o Oracle, opts ...ServerOption) (*Server, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: ledger", ledger.ErrNilParam)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: oracle", sealing.ErrNilParam)
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Server{ledger: l, oracle: o, log: discard}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, storage.ContentPathPrefix):
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		s.serveContent(w, r)
	case r.URL.Path == "/":
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !s.authorized(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="phantom"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		s.serveRPC(w, r)
	default:
		http.NotFound(w, r)
	}
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.WithField("addr", ln.Addr().String()).Info("rpc server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("rpc server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("network: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) authorized(r *http.Request) bool {
	if s.user == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.user)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.pass)) == 1
	return userOK && passOK
}

func (s *Server) serveContent(w http.ResponseWriter, r *http.Request) {
	if s.content == nil {
		http.NotFound(w, r)
		return
	}
	c, err := storage.ParseContentID(strings.TrimPrefix(r.URL.Path, storage.ContentPathPrefix))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	data, err := s.content.Get(c)
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.WithError(err).WithField("cid", c.String()).Error("content read failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestSize)).Decode(&req); err != nil {
		s.writeError(w, 0, CodeParseError, err)
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.writeError(w, req.ID, CodeInvalidRequest, fmt.Errorf("%w: not a JSON-RPC 2.0 request", ErrInvalidParams))
		return
	}

	result, err := s.dispatch(r.Context(), req.Method, req.Params)
	if err != nil {
		code := codeFor(err)
		entry := s.log.WithFields(logrus.Fields{"method": req.Method, "code": code})
		if code == CodeInternalError {
			entry.WithError(err).Error("rpc call failed")
		} else {
			entry.WithError(err).Debug("rpc call rejected")
		}
		s.writeError(w, req.ID, code, err)
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, req.ID, CodeInternalError, err)
		return
	}
	s.write(w, rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: raw})
}

func (s *Server) dispatch(ctx context.Context, method string, params []json.RawMessage) (any, error) {
	switch method {
	case MethodContractAddress:
		return s.ledger.ContractAddress(ctx)

	case MethodFileCount:
		var user addrcrypt.Address
		if err := param(params, 0, &user); err != nil {
			return nil, err
		}
		n, err := s.ledger.FileCount(ctx, user)
		if err != nil {
			return nil, err
		}
		return FileCountResult{Count: n}, nil

	case MethodFile:
		var user addrcrypt.Address
		var index uint64
		if err := param(params, 0, &user); err != nil {
			return nil, err
		}
		if err := param(params, 1, &index); err != nil {
			return nil, err
		}
		return s.ledger.File(ctx, user, index)

	case MethodAddFile:
		var p AddFileParams
		if err := param(params, 0, &p); err != nil {
			return nil, err
		}
		return s.addFile(ctx, &p)

	case MethodNetworkPublicKey:
		return s.oracle.NetworkInfo(ctx)

	case MethodUserDecrypt:
		var req sealing.DecryptRequest
		if err := param(params, 0, &req); err != nil {
			return nil, err
		}
		return s.oracle.UserDecrypt(ctx, &req)

	default:
		return nil, fmt.Errorf("%w: %s", ErrMethodNotFound, method)
	}
}

// addFile authenticates the submission and appends it as the signer.
func (s *Server) addFile(ctx context.Context, p *AddFileParams) (*AddFileResult, error) {
	if p.Input == nil {
		return nil, fmt.Errorf("%w: input", ledger.ErrNilParam)
	}
	pub, err := sealing.ParsePublicKey(p.SignerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: signer key: %w", ErrAuthFailed, err)
	}
	sig, err := ec.ParseDERSignature(p.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %w", ErrAuthFailed, err)
	}

	contract, err := s.ledger.ContractAddress(ctx)
	if err != nil {
		return nil, err
	}
	if !sig.Verify(SubmissionDigest(contract, p.Name, p.EncryptedPayload, p.Input.Handle), pub) {
		return nil, fmt.Errorf("%w: submission signature", ErrAuthFailed)
	}

	caller := wallet.AddressFromPublicKey(pub)
	index, err := s.ledger.AddFile(ctx, caller, p.Name, p.EncryptedPayload, p.Input)
	if err != nil {
		return nil, err
	}
	return &AddFileResult{Index: index}, nil
}

// param decodes params[i] into v.
func param(params []json.RawMessage, i int, v any) error {
	if i >= len(params) {
		return fmt.Errorf("%w: missing parameter %d", ErrInvalidParams, i)
	}
	if err := json.Unmarshal(params[i], v); err != nil {
		return fmt.Errorf("%w: parameter %d: %w", ErrInvalidParams, i, err)
	}
	return nil
}

func (s *Server) writeError(w http.ResponseWriter, id int64, code int, err error) {
	s.write(w, rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: err.Error()},
	})
}

func (s *Server) write(w http.ResponseWriter, resp rpcResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.WithError(err).Warn("write rpc response")
	}
}
