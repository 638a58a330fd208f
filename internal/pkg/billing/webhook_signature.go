package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Stripe signs webhooks with a header of the form
//
//	Stripe-Signature: t=1492774577,v1=5257a869e7...,v1=...
//
// where each v1 is HMAC-SHA256(secret, "<t>.<raw payload>"). Verification
// must run over the exact bytes Stripe sent; re-serializing a parsed body
// produces a different string and breaks the signature.

const DefaultSignatureTolerance = 5 * time.Minute

func VerifyStripeWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	return verifyStripeSignatureAt(payload, signatureHeader, webhookSecret, time.Now(), DefaultSignatureTolerance)
}

func verifyStripeSignatureAt(payload []byte, signatureHeader, webhookSecret string, now time.Time, tolerance time.Duration) bool {
	header := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if header == "" || secret == "" {
		return false
	}

	var timestamp string
	var candidates [][]byte
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			if decoded, err := hex.DecodeString(strings.ToLower(value)); err == nil {
				candidates = append(candidates, decoded)
			}
		}
	}
	if timestamp == "" || len(candidates) == 0 {
		return false
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if tolerance > 0 {
		age := now.Sub(time.Unix(ts, 0))
		if age > tolerance || age < -tolerance {
			return false
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, candidate := range candidates {
		if hmac.Equal(expected, candidate) {
			return true
		}
	}
	return false
}
