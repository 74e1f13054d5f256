package audit

import (
	"testing"
	"time"
)

func TestNewRecordSigner(t *testing.T) {
	secretKey := "test-secret-key"
	signer := NewRecordSigner(secretKey)

	if signer == nil {
		t.Fatal("expected non-nil signer")
	}

	if string(signer.secretKey) != secretKey {
		t.Errorf("expected secret key %q, got %q", secretKey, string(signer.secretKey))
	}
}

func TestRecordSigner_Sign(t *testing.T) {
	signer := NewRecordSigner("test-secret")
	createdAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	recordID := "record-123"
	caseID := "case-001"
	payload := []byte("show me failed logins\nSELECT * FROM events")

	signature := signer.Sign(recordID, createdAt, caseID, payload)

	if signature == "" {
		t.Error("expected non-empty signature")
	}

	// Signature should be deterministic
	signature2 := signer.Sign(recordID, createdAt, caseID, payload)
	if signature != signature2 {
		t.Error("expected deterministic signatures for same input")
	}

	// Different inputs should produce different signatures
	signature3 := signer.Sign("different-record", createdAt, caseID, payload)
	if signature == signature3 {
		t.Error("expected different signatures for different record IDs")
	}
}

func TestRecordSigner_Verify(t *testing.T) {
	signer := NewRecordSigner("test-secret")
	createdAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	recordID := "record-456"
	caseID := "case-002"
	payload := []byte(`# FORENSIC INVESTIGATION REPORT`)

	signature := signer.Sign(recordID, createdAt, caseID, payload)

	tests := []struct {
		name      string
		recordID  string
		createdAt time.Time
		caseID    string
		payload   []byte
		wantValid bool
	}{
		{
			name:      "valid signature",
			recordID:  recordID,
			createdAt: createdAt,
			caseID:    caseID,
			payload:   payload,
			wantValid: true,
		},
		{
			name:      "wrong record ID",
			recordID:  "wrong-record",
			createdAt: createdAt,
			caseID:    caseID,
			payload:   payload,
			wantValid: false,
		},
		{
			name:      "wrong timestamp",
			recordID:  recordID,
			createdAt: createdAt.Add(1 * time.Hour),
			caseID:    caseID,
			payload:   payload,
			wantValid: false,
		},
		{
			name:      "wrong case ID",
			recordID:  recordID,
			createdAt: createdAt,
			caseID:    "case-999",
			payload:   payload,
			wantValid: false,
		},
		{
			name:      "tampered payload",
			recordID:  recordID,
			createdAt: createdAt,
			caseID:    caseID,
			payload:   []byte("edited report content"),
			wantValid: false,
		},
		{
			name:      "empty payload",
			recordID:  recordID,
			createdAt: createdAt,
			caseID:    caseID,
			payload:   []byte{},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := signer.Verify(tt.recordID, tt.createdAt, tt.caseID, tt.payload, signature)
			if result != tt.wantValid {
				t.Errorf("Verify() = %v, want %v", result, tt.wantValid)
			}
		})
	}
}

func TestRecordSigner_Verify_WrongSignature(t *testing.T) {
	signer := NewRecordSigner("test-secret")
	createdAt := time.Now()

	wrongSignature := "0000000000000000000000000000000000000000000000000000000000000000"

	if signer.Verify("record-789", createdAt, "case-003", []byte("payload"), wrongSignature) {
		t.Error("expected verification to fail with wrong signature")
	}
}

func TestRecordSigner_DifferentSecrets(t *testing.T) {
	signer1 := NewRecordSigner("secret-1")
	signer2 := NewRecordSigner("secret-2")

	createdAt := time.Now()
	recordID := "record-abc"
	caseID := "case-004"
	payload := []byte("timeline narrative")

	signature1 := signer1.Sign(recordID, createdAt, caseID, payload)

	if signer2.Verify(recordID, createdAt, caseID, payload, signature1) {
		t.Error("expected verification to fail with different secret key")
	}

	signature2 := signer2.Sign(recordID, createdAt, caseID, payload)
	if signature1 == signature2 {
		t.Error("expected different signatures with different secret keys")
	}

	if !signer1.Verify(recordID, createdAt, caseID, payload, signature1) {
		t.Error("signer1 should verify its own signature")
	}
	if !signer2.Verify(recordID, createdAt, caseID, payload, signature2) {
		t.Error("signer2 should verify its own signature")
	}
}

func TestRecordSigner_TimestampPrecision(t *testing.T) {
	signer := NewRecordSigner("precision-test")
	recordID := "record-precision"
	caseID := "case-005"
	payload := []byte("payload")

	createdAt1 := time.Date(2025, 3, 1, 15, 30, 45, 123456789, time.UTC)
	signature1 := signer.Sign(recordID, createdAt1, caseID, payload)

	createdAt2 := time.Date(2025, 3, 1, 15, 30, 45, 987654321, time.UTC)
	signature2 := signer.Sign(recordID, createdAt2, caseID, payload)

	// RFC3339Nano includes nanoseconds, so these differ
	if signature1 == signature2 {
		t.Error("expected different signatures for different nanosecond precision")
	}

	if !signer.Verify(recordID, createdAt1, caseID, payload, signature1) {
		t.Error("failed to verify signature1 with createdAt1")
	}
	if signer.Verify(recordID, createdAt1, caseID, payload, signature2) {
		t.Error("expected cross-verification to fail")
	}
}

func TestRecordSigner_SignatureFormat(t *testing.T) {
	signer := NewRecordSigner("format-test")
	signature := signer.Sign("record-id", time.Now(), "case-id", []byte("data"))

	// HMAC-SHA256 produces 32 bytes, hex encoded = 64 characters
	if len(signature) != 64 {
		t.Errorf("expected signature length of 64 characters (hex-encoded SHA256), got %d", len(signature))
	}

	for _, c := range signature {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Errorf("signature contains non-hex character: %c", c)
		}
	}
}
