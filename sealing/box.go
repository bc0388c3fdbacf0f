package sealing

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"golang.org/x/crypto/hkdf"

	"github.com/phantomarchive/libphantom-go/wallet"
)

const (
	// PublicKeyLen is the size of a compressed secp256k1 public key.
	PublicKeyLen = 33

	// NonceLen is the AES-GCM nonce size used by sealed boxes.
	NonceLen = 12

	// TagLen is the AES-GCM tag size.
	TagLen = 16

	// boxOverhead is the size of a box minus its plaintext.
	boxOverhead = PublicKeyLen + NonceLen + TagLen
)

// HKDF info strings for the two box directions.
var (
	infoSeal      = []byte("phantom-seal")
	infoReencrypt = []byte("phantom-reencrypt")
)

// sealBox encrypts plaintext to recipient with a one-time ECDH key:
//
//	ephemeralPub(33B) || nonce(12B) || AES-256-GCM(HKDF(ECDH.x, salt=ephemeralPub, info), plaintext) || tag(16B)
func sealBox(r io.Reader, recipient *ec.PublicKey, info, plaintext, aad []byte) ([]byte, error) {
	if recipient == nil {
		return nil, fmt.Errorf("%w: recipient public key", ErrNilParam)
	}

	ephemeral, err := wallet.NewPrivateKey(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}
	ephemeralPub := ephemeral.PubKey().Compressed()

	gcm, err := boxCipher(ephemeral, recipient, ephemeralPub, info)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceLen)
	if _, err := io.ReadFull(r, nonce); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRandomSource, err)
	}

	out := make([]byte, 0, boxOverhead+len(plaintext))
	out = append(out, ephemeralPub...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, aad), nil
}

// openBox reverses sealBox with the recipient's private key. Any failure is
// reported as errAuth so callers can map it onto their own sentinel.
func openBox(priv *ec.PrivateKey, info, box, aad []byte, errAuth error) ([]byte, error) {
	if len(box) < boxOverhead {
		return nil, fmt.Errorf("%w: box too short (%d bytes)", errAuth, len(box))
	}

	ephemeralPub := box[:PublicKeyLen]
	pub, err := ec.PublicKeyFromBytes(ephemeralPub)
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral key: %w", errAuth, err)
	}

	gcm, err := boxCipher(priv, pub, ephemeralPub, info)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errAuth, err)
	}

	nonce := box[PublicKeyLen : PublicKeyLen+NonceLen]
	plaintext, err := gcm.Open(nil, nonce, box[PublicKeyLen+NonceLen:], aad)
	if err != nil {
		return nil, errAuth
	}
	return plaintext, nil
}

// boxCipher derives the AES-256-GCM cipher shared by priv and pub.
func boxCipher(priv *ec.PrivateKey, pub *ec.PublicKey, salt, info []byte) (cipher.AEAD, error) {
	shared, err := priv.DeriveSharedSecret(pub)
	if err != nil {
		return nil, fmt.Errorf("sealing: ECDH failed: %w", err)
	}

	var secret [32]byte
	shared.X.FillBytes(secret[:])
	defer clear(secret[:])

	key := make([]byte, 32)
	defer clear(key)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret[:], salt, info), key); err != nil {
		return nil, fmt.Errorf("sealing: HKDF failed: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("sealing: AES cipher creation failed: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("sealing: GCM creation failed: %w", err)
	}
	return gcm, nil
}

// ParsePublicKey parses a compressed or uncompressed secp256k1 key.
func ParsePublicKey(b []byte) (*ec.PublicKey, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidPublicKey)
	}
	pub, err := ec.PublicKeyFromBytes(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	return pub, nil
}
