package webpush

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"slices"
	"testing"
)

func testSubscriptionKeys(t *testing.T) (client *ecdh.PrivateKey, p256dh, auth string, authSecret []byte) {
	t.Helper()
	client, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate client key: %v", err)
	}
	authSecret = make([]byte, 16)
	if _, err := rand.Read(authSecret); err != nil {
		t.Fatalf("auth secret: %v", err)
	}
	return client, Encode(client.PublicKey().Bytes()), Encode(authSecret), authSecret
}

func hmacSHA256(key, msg []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(msg)
	return h.Sum(nil)
}

// deriveByHMACChain computes the content-encryption key and nonce with the
// plain HMAC formulation of RFC 8291, independently of the hkdf package.
func deriveByHMACChain(sharedSecret, authSecret, clientPub, serverPub, salt []byte) (cek, nonce []byte) {
	prkKey := hmacSHA256(authSecret, sharedSecret)
	keyInfo := []byte("WebPush: info\x00")
	keyInfo = append(keyInfo, clientPub...)
	keyInfo = append(keyInfo, serverPub...)
	keyInfo = append(keyInfo, 0x01)
	ikm := hmacSHA256(prkKey, keyInfo)
	prk := hmacSHA256(salt, ikm)
	cek = hmacSHA256(prk, []byte("Content-Encoding: aes128gcm\x00\x01"))[:16]
	nonce = hmacSHA256(prk, []byte("Content-Encoding: nonce\x00\x01"))[:12]
	return cek, nonce
}

func TestWireHeaderLayout(t *testing.T) {
	_, p256dh, auth, _ := testSubscriptionKeys(t)

	serverKey, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("server key: %v", err)
	}
	salt := []byte("0123456789abcdef")

	body, err := encryptPayload([]byte(`{"title":"hi"}`), p256dh, auth, serverKey, salt)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if !bytes.Equal(body[:16], salt) {
		t.Error("bytes 0..15 must be the salt")
	}
	if rs := binary.BigEndian.Uint32(body[16:20]); rs != 4096 {
		t.Errorf("record size = %d, want 4096", rs)
	}
	if body[20] != 65 {
		t.Errorf("key id length = %d, want 65", body[20])
	}
	if !bytes.Equal(body[21:86], serverKey.PublicKey().Bytes()) {
		t.Error("bytes 21..85 must be the ephemeral server public key")
	}
	// message + delimiter + tag after the 86-byte header
	if want := 86 + len(`{"title":"hi"}`) + 1 + 16; len(body) != want {
		t.Errorf("body length = %d, want %d", len(body), want)
	}
}

func TestDerivationMatchesHMACChain(t *testing.T) {
	clientKey, p256dh, auth, authSecret := testSubscriptionKeys(t)

	serverKey, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("server key: %v", err)
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		t.Fatalf("salt: %v", err)
	}

	message := []byte(`{"title":"t","body":"b","url":"/","icon":"/icons/icon-192.png"}`)
	body, err := encryptPayload(message, p256dh, auth, serverKey, salt)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// Recompute the key schedule from the subscriber's side of the ECDH
	// exchange and decrypt.
	sharedSecret, err := clientKey.ECDH(serverKey.PublicKey())
	if err != nil {
		t.Fatalf("client-side ECDH: %v", err)
	}
	cek, nonce := deriveByHMACChain(
		sharedSecret, authSecret,
		clientKey.PublicKey().Bytes(), serverKey.PublicKey().Bytes(),
		salt,
	)

	block, err := aes.NewCipher(cek)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		t.Fatalf("gcm: %v", err)
	}
	plaintext, err := gcm.Open(nil, nonce, body[86:], nil)
	if err != nil {
		t.Fatalf("decrypt with HMAC-chain keys: %v", err)
	}
	if plaintext[len(plaintext)-1] != 0x02 {
		t.Fatalf("final record delimiter = %#x, want 0x02", plaintext[len(plaintext)-1])
	}
	if !bytes.Equal(plaintext[:len(plaintext)-1], message) {
		t.Fatal("decrypted payload does not match the original message")
	}
}

func TestEncryptPayloadRoundTrip(t *testing.T) {
	clientKey, p256dh, auth, authSecret := testSubscriptionKeys(t)

	message := []byte(`{"title":"hello","body":"world"}`)
	body, err := EncryptPayload(message, p256dh, auth)
	if err != nil {
		t.Fatalf("EncryptPayload: %v", err)
	}

	// Salt and ephemeral key come out of the wire header, as a real push
	// service client would read them.
	salt := body[:16]
	serverPub, err := ecdh.P256().NewPublicKey(body[21:86])
	if err != nil {
		t.Fatalf("server public key from header: %v", err)
	}
	sharedSecret, err := clientKey.ECDH(serverPub)
	if err != nil {
		t.Fatalf("client-side ECDH: %v", err)
	}
	cek, nonce := deriveByHMACChain(
		sharedSecret, authSecret,
		clientKey.PublicKey().Bytes(), body[21:86],
		salt,
	)

	block, _ := aes.NewCipher(cek)
	gcm, _ := cipher.NewGCM(block)
	plaintext, err := gcm.Open(nil, nonce, body[86:], nil)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if !bytes.Equal(plaintext, append(slices.Clone(message), 0x02)) {
		t.Fatal("plaintext mismatch")
	}
}

func TestEncryptPayloadFreshMaterialPerCall(t *testing.T) {
	_, p256dh, auth, _ := testSubscriptionKeys(t)
	a, err := EncryptPayload([]byte("x"), p256dh, auth)
	if err != nil {
		t.Fatal(err)
	}
	b, err := EncryptPayload([]byte("x"), p256dh, auth)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a[:16], b[:16]) {
		t.Error("salt reused across calls")
	}
	if bytes.Equal(a[21:86], b[21:86]) {
		t.Error("ephemeral key reused across calls")
	}
}

func TestEncryptPayloadTooLarge(t *testing.T) {
	_, p256dh, auth, _ := testSubscriptionKeys(t)
	big := make([]byte, MaxPayloadLen+1)
	if _, err := EncryptPayload(big, p256dh, auth); err == nil {
		t.Fatal("expected ErrPayloadTooLarge")
	}
	if _, err := EncryptPayload(make([]byte, MaxPayloadLen), p256dh, auth); err != nil {
		t.Fatalf("payload at the limit should encrypt: %v", err)
	}
}

func TestEncryptPayloadRejectsBadKeys(t *testing.T) {
	_, p256dh, auth, _ := testSubscriptionKeys(t)
	cases := []struct {
		label        string
		p256dh, auth string
	}{
		{"truncated p256dh", Encode(make([]byte, 33)), auth},
		{"zero point", Encode(make([]byte, 65)), auth},
		{"garbage p256dh", "%%%", auth},
		{"garbage auth", p256dh, "%%%"},
	}
	for _, c := range cases {
		t.Run(c.label, func(t *testing.T) {
			if _, err := EncryptPayload([]byte("x"), c.p256dh, c.auth); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
