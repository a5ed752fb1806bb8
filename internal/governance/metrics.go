package governance

import (
	"context"
)

// Conservative defaults used when the metrics collaborator is
// unavailable. Collaborator failure never fails a plan.
const (
	DefaultTrustScore       = 0.5
	DefaultComplianceStatus = "unverified"
)

// MetricsProvider is the trust/compliance collaborator queried to
// populate governance metrics on execution results
type MetricsProvider interface {
	TrustScore(ctx context.Context) (float64, error)
	ComplianceStatus(ctx context.Context) (string, error)
}

// StaticMetrics returns fixed readings; the zero value returns the
// conservative defaults
type StaticMetrics struct {
	Trust      float64
	Compliance string
}

// TrustScore implements MetricsProvider
func (s StaticMetrics) TrustScore(_ context.Context) (float64, error) {
	if s.Trust == 0 {
		return DefaultTrustScore, nil
	}
	return s.Trust, nil
}

// ComplianceStatus implements MetricsProvider
func (s StaticMetrics) ComplianceStatus(_ context.Context) (string, error) {
	if s.Compliance == "" {
		return DefaultComplianceStatus, nil
	}
	return s.Compliance, nil
}

// Gather reads both metrics, substituting the conservative defaults
// on any collaborator failure
func Gather(ctx context.Context, provider MetricsProvider) (trust float64, compliance string) {
	trust = DefaultTrustScore
	compliance = DefaultComplianceStatus
	if provider == nil {
		return trust, compliance
	}
	if t, err := provider.TrustScore(ctx); err == nil {
		trust = t
	}
	if c, err := provider.ComplianceStatus(ctx); err == nil {
		compliance = c
	}
	return trust, compliance
}
