package network

import (
	"github.com/phantomarchive/libphantom-go/addrcrypt"
	"github.com/phantomarchive/libphantom-go/sealing"
)

// RPC method names served by a node.
const (
	MethodAddFile          = "archive_addFile"
	MethodFileCount        = "archive_getUserFileCount"
	MethodFile             = "archive_getUserFile"
	MethodContractAddress  = "archive_contractAddress"
	MethodNetworkPublicKey = "sealing_networkPublicKey"
	MethodUserDecrypt      = "sealing_userDecrypt"
)

// submissionTag domain-separates AddFile signatures from other digests.
const submissionTag = "phantom-addfile"

// AddFileParams is the single parameter of archive_addFile. The caller is the
// address of SignerPublicKey, which must have signed SubmissionDigest.
type AddFileParams struct {
	Name             string         `json:"name"`
	EncryptedPayload string         `json:"encrypted_payload"`
	Input            *sealing.Input `json:"input"`
	SignerPublicKey  []byte         `json:"signer_public_key"`
	Signature        []byte         `json:"signature"`
}

// AddFileResult is returned by archive_addFile.
type AddFileResult struct {
	Index uint64 `json:"index"`
}

// FileCountResult is returned by archive_getUserFileCount.
type FileCountResult struct {
	Count uint64 `json:"count"`
}

// SubmissionDigest is the 32-byte digest a caller signs to submit a record:
//
//	Keccak256("phantom-addfile" || contract || Keccak256(name) || Keccak256(payload) || handle)
func SubmissionDigest(contract addrcrypt.Address, name, encryptedPayload string, h sealing.Handle) []byte {
	return addrcrypt.Keccak256(
		[]byte(submissionTag),
		contract[:],
		addrcrypt.Keccak256([]byte(name)),
		addrcrypt.Keccak256([]byte(encryptedPayload)),
		h[:],
	)
}
