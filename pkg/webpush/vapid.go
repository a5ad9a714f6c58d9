package webpush

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Uncompressed P-256 point: 0x04 marker + 32-byte x + 32-byte y.
	publicKeyLen  = 65
	privateKeyLen = 32

	tokenLifetime = 12 * time.Hour
)

// ErrInvalidKeyMaterial means the configured VAPID keys do not decode to a
// valid P-256 keypair. This is misconfiguration affecting every recipient,
// so it is detected at startup rather than per send.
var ErrInvalidKeyMaterial = errors.New("webpush: invalid VAPID key material")

// Identity is the application server's VAPID identity: a P-256 keypair and
// a contact subject. Immutable for the process lifetime.
type Identity struct {
	publicKey  []byte // uncompressed point, kept for the k= parameter
	signingKey *ecdsa.PrivateKey
	subject    string
}

// NewIdentity reconstructs a VAPID identity from base64url-encoded key
// material: a 65-byte uncompressed public point and a 32-byte private
// scalar. The subject must be a mailto: or https: contact URI.
func NewIdentity(publicKey, privateKey, subject string) (*Identity, error) {
	pub, err := Decode(publicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", ErrInvalidKeyMaterial, err)
	}
	priv, err := Decode(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: private key: %v", ErrInvalidKeyMaterial, err)
	}
	if len(pub) != publicKeyLen || pub[0] != 0x04 {
		return nil, fmt.Errorf("%w: public key must be a %d-byte uncompressed point", ErrInvalidKeyMaterial, publicKeyLen)
	}
	if len(priv) != privateKeyLen {
		return nil, fmt.Errorf("%w: private key must be %d bytes", ErrInvalidKeyMaterial, privateKeyLen)
	}
	if !strings.HasPrefix(subject, "mailto:") && !strings.HasPrefix(subject, "https:") {
		return nil, fmt.Errorf("webpush: invalid subject %q", subject)
	}

	x := new(big.Int).SetBytes(pub[1:33])
	y := new(big.Int).SetBytes(pub[33:])
	if !elliptic.P256().IsOnCurve(x, y) {
		return nil, fmt.Errorf("%w: public key is not on P-256", ErrInvalidKeyMaterial)
	}

	signingKey := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y},
		D:         new(big.Int).SetBytes(priv),
	}

	return &Identity{
		publicKey:  pub,
		signingKey: signingKey,
		subject:    subject,
	}, nil
}

// PublicKey returns the base64url public key used as the k= parameter and
// as the applicationServerKey browsers subscribe with.
func (id *Identity) PublicKey() string {
	return Encode(id.publicKey)
}

// Token signs a short-lived JWT scoped to the endpoint's origin. ES256 in
// JOSE uses the raw 64-byte r||s signature form, never ASN.1 DER; jwt/v5
// emits exactly that.
func (id *Identity) Token(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("webpush: invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("webpush: invalid endpoint %q", endpoint)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"aud": u.Scheme + "://" + u.Host,
		"exp": time.Now().Add(tokenLifetime).Unix(),
		"sub": id.subject,
	})
	return token.SignedString(id.signingKey)
}

// AuthorizationHeader builds the vapid scheme Authorization header value
// for one push endpoint.
func (id *Identity) AuthorizationHeader(endpoint string) (string, error) {
	token, err := id.Token(endpoint)
	if err != nil {
		return "", err
	}
	return "vapid t=" + token + ", k=" + id.PublicKey(), nil
}
