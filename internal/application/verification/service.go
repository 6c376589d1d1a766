// Package verification issues and checks short-lived one-time codes bound to
// an email address.
package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/applicant-intake/internal/domain"
	"github.com/applicant-intake/internal/infrastructure/kv"
)

// CodeTTL is how long an issued code stays valid.
const CodeTTL = 15 * time.Minute

type Service struct {
	store kv.Store
	now   func() time.Time
}

// NewService creates a Service. now may be nil, in which case time.Now is used.
func NewService(store kv.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, now: now}
}

func codeKey(email string) string {
	return "verification:" + domain.NormalizeEmail(email)
}

// Issue generates a new 6-digit code for email, replacing any previous one.
func (s *Service) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", 100000+n.Int64())

	b, err := json.Marshal(domain.VerificationCode{Code: code, ExpiresAt: s.now().Add(CodeTTL)})
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, codeKey(email), b, CodeTTL); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Check reports whether code is the live code for email. A matching code is
// consumed; an expired one is evicted. Absent, expired and mismatched codes
// all report false.
func (s *Service) Check(ctx context.Context, email, code string) (bool, error) {
	key := codeKey(email)
	raw, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("load code: %w", err)
	}
	if !ok {
		return false, nil
	}
	var vc domain.VerificationCode
	if err := json.Unmarshal(raw, &vc); err != nil {
		_ = s.store.Delete(ctx, key)
		return false, nil
	}
	if vc.ExpiresAt.Before(s.now()) {
		if err := s.store.Delete(ctx, key); err != nil {
			return false, fmt.Errorf("evict code: %w", err)
		}
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(vc.Code), []byte(code)) != 1 {
		return false, nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return false, fmt.Errorf("consume code: %w", err)
	}
	return true, nil
}
