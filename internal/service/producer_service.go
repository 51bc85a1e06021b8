package service

import (
	"context"
	"time"

	"agrotrace/internal/dto"
	"agrotrace/internal/model"
	"agrotrace/internal/repository"

	"github.com/google/uuid"
)

type ProducerService interface {
	Create(ctx context.Context, req dto.CreateProducerRequest) (*dto.ProducerResponse, error)
	FindByID(ctx context.Context, id uuid.UUID) (*dto.ProducerResponse, error)
	List(ctx context.Context) ([]dto.ProducerResponse, error)
	RenewCertificate(ctx context.Context, id uuid.UUID, newExpiry string) (*dto.ProducerResponse, error)
}

type producerService struct {
	repo repository.ProducerRepository
}

func NewProducerService(repo repository.ProducerRepository) ProducerService {
	return &producerService{repo: repo}
}

func (s *producerService) Create(ctx context.Context, req dto.CreateProducerRequest) (*dto.ProducerResponse, error) {
	expiry, err := time.Parse(dateLayout, req.CertificateExpiry)
	if err != nil {
		return nil, model.Validationf("invalid certificate_expiry %q, expected YYYY-MM-DD", req.CertificateExpiry)
	}

	p := &model.Producer{
		Name:              req.Name,
		FarmName:          req.FarmName,
		CertificateNumber: req.CertificateNumber,
		CertificateExpiry: expiry,
		GGN:               req.GGN,
		Email:             req.Email,
		Phone:             req.Phone,
		Address:           req.Address,
		FruitVarieties:    req.FruitVarieties,
		Active:            true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return producerToResponse(p), nil
}

func (s *producerService) FindByID(ctx context.Context, id uuid.UUID) (*dto.ProducerResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return producerToResponse(p), nil
}

func (s *producerService) List(ctx context.Context) ([]dto.ProducerResponse, error) {
	producers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProducerResponse, 0, len(producers))
	for i := range producers {
		out = append(out, *producerToResponse(&producers[i]))
	}
	return out, nil
}

// RenewCertificate is the only write path for certificate_expiry. The new
// expiry may not move backwards.
func (s *producerService) RenewCertificate(ctx context.Context, id uuid.UUID, newExpiry string) (*dto.ProducerResponse, error) {
	expiry, err := time.Parse(dateLayout, newExpiry)
	if err != nil {
		return nil, model.Validationf("invalid certificate_expiry %q, expected YYYY-MM-DD", newExpiry)
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expiry.Before(p.CertificateExpiry) {
		return nil, model.Validationf("renewal cannot move certificate_expiry backwards")
	}

	p.CertificateExpiry = expiry
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return producerToResponse(p), nil
}

func producerToResponse(p *model.Producer) *dto.ProducerResponse {
	return &dto.ProducerResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		FarmName:          p.FarmName,
		CertificateNumber: p.CertificateNumber,
		CertificateExpiry: p.CertificateExpiry.Format(dateLayout),
		GGN:               p.GGN,
		Email:             p.Email,
		CertificateValid:  p.CertificateExpiry.After(time.Now()),
	}
}
