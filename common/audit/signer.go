// Package audit provides HMAC signing for investigation audit trail records,
// so tampering with stored query/timeline/report rows is detectable.
package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type RecordSigner struct {
	secretKey []byte
}

func NewRecordSigner(secretKey string) *RecordSigner {
	return &RecordSigner{
		secretKey: []byte(secretKey),
	}
}

// Sign computes a signature over an audit record's identifying fields.
func (s *RecordSigner) Sign(recordID string, createdAt time.Time, caseID string, payload []byte) string {
	message := recordID + createdAt.Format(time.RFC3339Nano) + caseID + string(payload)
	h := hmac.New(sha256.New, s.secretKey)
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether the signature matches the record.
func (s *RecordSigner) Verify(recordID string, createdAt time.Time, caseID string, payload []byte, signature string) bool {
	expected := s.Sign(recordID, createdAt, caseID, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}
