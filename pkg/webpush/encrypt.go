package webpush

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// Push services are not required to accept records larger than this.
	recordSize = 4096

	saltLen = 16

	// salt(16) + recordSize(4) + keyIDLen(1) + server public key(65)
	headerLen = saltLen + 4 + 1 + publicKeyLen

	// header + padding delimiter + GCM tag
	overhead = headerLen + 1 + 16

	// MaxPayloadLen is the largest message that fits a single record.
	// Multi-record payloads are deliberately unsupported; callers must
	// stay under this.
	MaxPayloadLen = recordSize - overhead
)

var (
	// ErrPayloadTooLarge means the message does not fit a single
	// aes128gcm record.
	ErrPayloadTooLarge = errors.New("webpush: payload exceeds record size")

	// ErrInvalidSubscriptionKeys means the stored p256dh/auth material
	// for a subscription is malformed.
	ErrInvalidSubscriptionKeys = errors.New("webpush: invalid subscription keys")
)

var (
	infoWebPush = []byte("WebPush: info\x00")
	infoCEK     = []byte("Content-Encoding: aes128gcm\x00")
	infoNonce   = []byte("Content-Encoding: nonce\x00")
)

func hkdfDerive(length int, secret, salt, info []byte) ([]byte, error) {
	out := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, err
	}
	return out, nil
}

// EncryptPayload builds the complete aes128gcm request body for one
// subscription: header (salt, record size, server public key) followed by
// the sealed ciphertext. The ephemeral keypair and salt are generated
// fresh per call and must never be reused, so there is nothing to cache
// across subscriptions or retries.
func EncryptPayload(message []byte, p256dh, auth string) ([]byte, error) {
	if len(message) > MaxPayloadLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(message), MaxPayloadLen)
	}

	serverKey, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	return encryptPayload(message, p256dh, auth, serverKey, salt)
}

func encryptPayload(message []byte, p256dh, auth string, serverKey *ecdh.PrivateKey, salt []byte) ([]byte, error) {
	if len(message) > MaxPayloadLen {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(message), MaxPayloadLen)
	}

	clientPubBytes, err := Decode(p256dh)
	if err != nil {
		return nil, fmt.Errorf("%w: p256dh: %v", ErrInvalidSubscriptionKeys, err)
	}
	if len(clientPubBytes) != publicKeyLen || clientPubBytes[0] != 0x04 {
		return nil, fmt.Errorf("%w: p256dh must be a %d-byte uncompressed point", ErrInvalidSubscriptionKeys, publicKeyLen)
	}
	authSecret, err := Decode(auth)
	if err != nil {
		return nil, fmt.Errorf("%w: auth: %v", ErrInvalidSubscriptionKeys, err)
	}

	clientPub, err := ecdh.P256().NewPublicKey(clientPubBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: p256dh: %v", ErrInvalidSubscriptionKeys, err)
	}
	sharedSecret, err := serverKey.ECDH(clientPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubscriptionKeys, err)
	}
	serverPubBytes := serverKey.PublicKey().Bytes()

	// RFC 8291 key schedule: auth secret and client/server keys mix into
	// the IKM, then salt keys the extract for CEK and nonce.
	keyInfo := make([]byte, 0, len(infoWebPush)+len(clientPubBytes)+len(serverPubBytes))
	keyInfo = append(keyInfo, infoWebPush...)
	keyInfo = append(keyInfo, clientPubBytes...)
	keyInfo = append(keyInfo, serverPubBytes...)
	ikm, err := hkdfDerive(32, sharedSecret, authSecret, keyInfo)
	if err != nil {
		return nil, err
	}
	cek, err := hkdfDerive(16, ikm, salt, infoCEK)
	if err != nil {
		return nil, err
	}
	nonce, err := hkdfDerive(12, ikm, salt, infoNonce)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(cek)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	// 0x02 marks the final (here: only) record.
	plaintext := make([]byte, 0, len(message)+1)
	plaintext = append(plaintext, message...)
	plaintext = append(plaintext, 0x02)

	body := make([]byte, 0, headerLen+len(plaintext)+gcm.Overhead())
	body = append(body, salt...)
	body = binary.BigEndian.AppendUint32(body, recordSize)
	body = append(body, byte(len(serverPubBytes)))
	body = append(body, serverPubBytes...)
	return gcm.Seal(body, nonce, plaintext, nil), nil
}
