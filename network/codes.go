package network

import (
	"errors"
	"fmt"

	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/ledger"
	"github.com/phantomarchive/libphantom-go/sealing"
)

// JSON-RPC 2.0 reserved error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application error codes. Each maps onto one sentinel error so errors.Is
// works on the client side of a call.
const (
	CodeAuthFailed = 1000 + iota
	CodeIndexOutOfRange
	CodeEmptyName
	CodeEmptyPayload
	CodeInvalidAddress
	CodeInvalidProof
	CodeHandleMismatch
	CodeHandleNotFound
	CodeUnauthorized
	CodeExpiredAuthorization
	CodeInvalidSignature
	CodeInvalidPublicKey
	CodeInvalidHandle
)

var codeErrors = []struct {
	code int
	err  error
}{
	{CodeMethodNotFound, ErrMethodNotFound},
	{CodeInvalidParams, ErrInvalidParams},
	{CodeInvalidRequest, ErrInvalidParams},
	{CodeParseError, ErrInvalidParams},
	{CodeInvalidParams, ledger.ErrNilParam},
	{CodeInvalidParams, sealing.ErrNilParam},
	{CodeInternalError, ErrInternal},
	{CodeAuthFailed, ErrAuthFailed},
	{CodeIndexOutOfRange, ledger.ErrIndexOutOfRange},
	{CodeEmptyName, ledger.ErrEmptyName},
	{CodeEmptyPayload, ledger.ErrEmptyPayload},
	{CodeInvalidAddress, addrcrypt.ErrInvalidAddress},
	{CodeInvalidProof, sealing.ErrInvalidProof},
	{CodeHandleMismatch, sealing.ErrHandleMismatch},
	{CodeHandleNotFound, sealing.ErrHandleNotFound},
	{CodeUnauthorized, sealing.ErrUnauthorized},
	{CodeExpiredAuthorization, sealing.ErrExpiredAuthorization},
	{CodeInvalidSignature, sealing.ErrInvalidSignature},
	{CodeInvalidPublicKey, sealing.ErrInvalidPublicKey},
	{CodeInvalidHandle, sealing.ErrInvalidHandle},
}

// codeFor returns the wire code for err, or CodeInternalError.
func codeFor(err error) int {
	for _, ce := range codeErrors {
		if errors.Is(err, ce.err) {
			return ce.code
		}
	}
	return CodeInternalError
}

// errorFor rebuilds a client-side error from a wire error.
func errorFor(e *rpcError) error {
	for _, ce := range codeErrors {
		if ce.code == e.Code {
			return fmt.Errorf("%w (rpc %d: %s)", ce.err, e.Code, e.Message)
		}
	}
	return fmt.Errorf("network: rpc error %d: %s", e.Code, e.Message)
}
