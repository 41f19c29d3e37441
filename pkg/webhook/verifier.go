// Package webhook verifies signed identity-provider callbacks.
//
// The provider signs webhooks with the svix scheme: the signed content is
// "<msg-id>.<timestamp>.<raw body>", the secret is the base64 payload of a
// "whsec_"-prefixed string, and the svix-signature header carries one or more
// space-separated "v1,<base64 hmac-sha256>" entries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	secretPrefix     = "whsec_"
	signatureVersion = "v1"

	// DefaultTolerance bounds how far a webhook timestamp may drift from
	// the local clock before the delivery is rejected as a replay.
	DefaultTolerance = 5 * time.Minute
)

var (
	ErrMissingHeaders   = errors.New("missing signature headers")
	ErrInvalidSecret    = errors.New("invalid webhook secret")
	ErrInvalidTimestamp = errors.New("invalid webhook timestamp")
	ErrTimestampExpired = errors.New("webhook timestamp outside tolerance")
	ErrNoMatch          = errors.New("no matching signature")
)

type Verifier struct {
	key       []byte
	tolerance time.Duration
	now       func() time.Time
}

func NewVerifier(secret string) (*Verifier, error) {
	raw := strings.TrimPrefix(secret, secretPrefix)
	if raw == "" {
		return nil, ErrInvalidSecret
	}
	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return &Verifier{
		key:       key,
		tolerance: DefaultTolerance,
		now:       time.Now,
	}, nil
}

// Verify checks the three signature headers against the raw request body.
// It returns nil only when at least one v1 signature entry matches.
func (v *Verifier) Verify(body []byte, msgID, timestamp, signatureHeader string) error {
	if msgID == "" || timestamp == "" || signatureHeader == "" {
		return ErrMissingHeaders
	}

	if err := v.checkTimestamp(timestamp); err != nil {
		return err
	}

	expected := v.sign(msgID, timestamp, body)

	for _, entry := range strings.Fields(signatureHeader) {
		version, sig, found := strings.Cut(entry, ",")
		if !found || version != signatureVersion {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return ErrNoMatch
}

func (v *Verifier) sign(msgID, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	fmt.Fprintf(mac, "%s.%s.", msgID, timestamp)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (v *Verifier) checkTimestamp(timestamp string) error {
	unix, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidTimestamp, timestamp)
	}

	diff := v.now().Sub(time.Unix(unix, 0))
	if diff < 0 {
		diff = -diff
	}
	if diff > v.tolerance {
		return ErrTimestampExpired
	}
	return nil
}
