package service

import (
	"context"
	"time"

	"agrotrace/internal/dto"
	"agrotrace/internal/infra"
	"agrotrace/internal/model"

	"github.com/rs/zerolog/log"
)

// CertificationService is the allocation-time certification gate plus the
// advisory GLOBALG.A.P. registry lookup.
type CertificationService interface {
	// CheckProducer enforces the gate: the producer's certificate_expiry must
	// be strictly after atDate. Expiring exactly on the allocation date fails.
	CheckProducer(p *model.Producer, atDate time.Time) error

	// VerifyGGN queries the external registry behind a circuit breaker. The
	// result never overrides the local gate; it exists so operators can spot
	// stale local records.
	VerifyGGN(ctx context.Context, ggn string) (*dto.VerifyGGNResponse, error)
}

type certificationService struct {
	ggnClient *infra.GGNClient
	breaker   *infra.CircuitBreaker
}

func NewCertificationService(ggnClient *infra.GGNClient, breaker *infra.CircuitBreaker) CertificationService {
	return &certificationService{ggnClient: ggnClient, breaker: breaker}
}

func (s *certificationService) CheckProducer(p *model.Producer, atDate time.Time) error {
	if p.CertificateExpiry.After(atDate) {
		return nil
	}
	log.Warn().
		Str("producer_id", p.ID.String()).
		Time("certificate_expiry", p.CertificateExpiry).
		Time("allocation_date", atDate).
		Msg("certification gate rejected allocation")
	return model.ErrCertificationExpired
}

// IsRegistryUnavailable reports whether a VerifyGGN failure means the remote
// registry could not be reached (breaker open or transport error) rather than
// bad input.
func IsRegistryUnavailable(err error) bool {
	if err == nil || model.IsValidation(err) {
		return false
	}
	return true
}

func (s *certificationService) VerifyGGN(ctx context.Context, ggn string) (*dto.VerifyGGNResponse, error) {
	if ggn == "" {
		return nil, model.Validationf("ggn is required")
	}

	var status *infra.GGNStatus
	err := s.breaker.Execute(func() error {
		var cerr error
		status, cerr = s.ggnClient.Verify(ctx, ggn)
		return cerr
	})
	if err != nil {
		return nil, err
	}

	return &dto.VerifyGGNResponse{
		GGN:             status.GGN,
		Valid:           status.Valid,
		ProducerName:    status.ProducerName,
		CertificateBody: status.CertificateBody,
		ValidUntil:      status.ValidUntil,
	}, nil
}
