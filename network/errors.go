package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrAuthFailed indicates RPC credentials or a submission signature were rejected.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrMethodNotFound indicates the node does not serve the requested method.
	ErrMethodNotFound = errors.New("network: method not found")

	// ErrInvalidParams indicates the request parameters could not be decoded.
	ErrInvalidParams = errors.New("network: invalid params")

	// ErrInternal indicates the node failed while handling the request.
	ErrInternal = errors.New("network: internal node error")

	// ErrNoSigner indicates a write call was made on a read-only client.
	ErrNoSigner = errors.New("network: client has no signer")

	// ErrDNSLookupFailed indicates a DNS lookup failed.
	ErrDNSLookupFailed = errors.New("network: DNS lookup failed")

	// ErrDNSSECValidationFailed indicates the DNS response was not DNSSEC-authenticated.
	ErrDNSSECValidationFailed = errors.New("network: DNSSEC validation failed")

	// ErrNoEndpoints indicates no SRV records were found for the domain.
	ErrNoEndpoints = errors.New("network: no endpoints found")

	// ErrNoContractRecord indicates no phantom= TXT record was found for the domain.
	ErrNoContractRecord = errors.New("network: no contract record found")
)
