package recibo

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signWebhook(secret, dataID, requestID, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))
	return fmt.Sprintf("ts=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestValidateWebhookSignature(t *testing.T) {
	const (
		secret    = "test-secret"
		dataID    = "12345678901"
		requestID = "req-abc-123"
		ts        = "1756400000"
	)

	header := signWebhook(secret, dataID, requestID, ts)
	assert.True(t, ValidateWebhookSignature(secret, header, requestID, dataID))

	// wrong secret
	assert.False(t, ValidateWebhookSignature("other-secret", header, requestID, dataID))

	// tampered payment id
	assert.False(t, ValidateWebhookSignature(secret, header, requestID, "999"))

	// garbage header
	assert.False(t, ValidateWebhookSignature(secret, "ts=abc,v1=zzz", requestID, dataID))
	assert.False(t, ValidateWebhookSignature(secret, "", requestID, dataID))
}

func TestValidateWebhookSignatureNoSecret(t *testing.T) {
	// no configured secret disables validation
	assert.True(t, ValidateWebhookSignature("", "anything", "req", "id"))
	assert.True(t, ValidateWebhookSignature("", "", "", ""))
}

func TestParseXSignature(t *testing.T) {
	ts, v1, ok := parseXSignature("ts=1756400000,v1=abcdef")
	assert.True(t, ok)
	assert.Equal(t, "1756400000", ts)
	assert.Equal(t, "abcdef", v1)

	// spaces around parts are tolerated
	ts, v1, ok = parseXSignature(" ts=1756400000 , v1=abcdef")
	assert.True(t, ok)
	assert.Equal(t, "1756400000", ts)
	assert.Equal(t, "abcdef", v1)

	// unknown keys are ignored
	_, _, ok = parseXSignature("ts=1756400000,v1=abcdef,extra=1")
	assert.True(t, ok)

	// missing or invalid fields
	_, _, ok = parseXSignature("v1=abcdef")
	assert.False(t, ok)
	_, _, ok = parseXSignature("ts=1756400000")
	assert.False(t, ok)
	_, _, ok = parseXSignature("ts=notanumber,v1=abcdef")
	assert.False(t, ok)
	_, _, ok = parseXSignature("")
	assert.False(t, ok)
}
