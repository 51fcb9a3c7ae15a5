package signature

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "ebridge-portal/internal/domain/entity/proposals"

	"github.com/gowebpki/jcs"
	"github.com/shopspring/decimal"
)

// RandomSigner issues an opaque 0x-prefixed token carrying 16 random bytes. It records
// that consent was given, nothing more.
type RandomSigner struct{}

func (RandomSigner) Sign(context.Context, domain.Proposal, domain.Decision) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}

// DigestSigner binds the token to the accepted terms: an HMAC-SHA256 over the canonical
// JSON of the proposal terms and the decision.
type DigestSigner struct {
	key []byte
}

func NewDigestSigner(key string) (*DigestSigner, error) {
	if key == "" {
		return nil, errors.New("signature key is required")
	}
	return &DigestSigner{key: []byte(key)}, nil
}

type consentTerms struct {
	ProposalID string `json:"proposal_id"`
	ClientID   string `json:"client_id"`
	Action     string `json:"action"`
	Title      string `json:"title"`
	Amount     string `json:"amount"`
	UnitPrice  string `json:"unit_price"`
	TotalValue string `json:"total_value"`
	RiskLevel  string `json:"risk_level"`
	DecidedAt  string `json:"decided_at"`
	DecidedBy  string `json:"decided_by"`
}

func (s *DigestSigner) Sign(_ context.Context, p domain.Proposal, d domain.Decision) (string, error) {
	payload, err := CanonicalTerms(p, d)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write(payload)
	return "0x" + hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify reports whether token was issued by this signer for p and d.
func (s *DigestSigner) Verify(p domain.Proposal, d domain.Decision, token string) bool {
	want, err := s.Sign(context.Background(), p, d)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(want), []byte(token))
}

// CanonicalTerms renders the signed terms as RFC 8785 canonical JSON. Amounts are written
// as decimal strings so float formatting never changes the digest.
func CanonicalTerms(p domain.Proposal, d domain.Decision) ([]byte, error) {
	terms := consentTerms{
		ProposalID: p.ID.String(),
		ClientID:   p.ClientID.String(),
		Action:     string(p.Action),
		Title:      p.Title,
		Amount:     decimal.NewFromFloat(p.Amount).String(),
		UnitPrice:  decimal.NewFromFloat(p.UnitPrice).String(),
		TotalValue: decimal.NewFromFloat(p.TotalValue).String(),
		RiskLevel:  string(p.RiskLevel),
		DecidedAt:  d.DecidedAt.UTC().Format(time.RFC3339Nano),
		DecidedBy:  d.DecidedBy.String(),
	}
	raw, err := json.Marshal(terms)
	if err != nil {
		return nil, fmt.Errorf("marshal consent terms: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize consent terms: %w", err)
	}
	return out, nil
}
