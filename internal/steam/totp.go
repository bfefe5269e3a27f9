package steam

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"time"
)

// totpAlphabet is the platform's reduced character set for login codes;
// visually ambiguous characters are excluded.
const totpAlphabet = "23456789BCDFGHJKMNPQRTVWXY"

// totpCodeLength is the number of characters in a login code
const totpCodeLength = 5

// totpPeriod is the validity window of one code
const totpPeriod = 30 * time.Second

// GenerateAuthCode derives the time-based one-time login code from the
// base64-encoded shared secret.
// The algorithm is: HMAC-SHA1(secret, time/30s), dynamic truncation to 31
// bits, then repeated modulo over the reduced alphabet.
func GenerateAuthCode(sharedSecret string, now time.Time) (string, error) {
	key, err := base64.StdEncoding.DecodeString(sharedSecret)
	if err != nil {
		return "", fmt.Errorf("invalid shared secret: %w", err)
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(now.Unix())/uint64(totpPeriod.Seconds()))

	mac := hmac.New(sha1.New, key)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	start := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[start:start+4]) & 0x7fffffff

	out := make([]byte, totpCodeLength)
	for i := range out {
		out[i] = totpAlphabet[code%uint32(len(totpAlphabet))]
		code /= uint32(len(totpAlphabet))
	}
	return string(out), nil
}

// GenerateConfirmationKey derives the confirmation-approval key from the
// base64-encoded identity secret for the given tag ("conf", "allow",
// "cancel", "details").
func GenerateConfirmationKey(identitySecret, tag string, now time.Time) (string, error) {
	key, err := base64.StdEncoding.DecodeString(identitySecret)
	if err != nil {
		return "", fmt.Errorf("invalid identity secret: %w", err)
	}

	payload := make([]byte, 8+len(tag))
	binary.BigEndian.PutUint64(payload[:8], uint64(now.Unix()))
	copy(payload[8:], tag)

	mac := hmac.New(sha1.New, key)
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}
