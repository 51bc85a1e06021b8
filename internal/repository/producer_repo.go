package repository

import (
	"context"
	"errors"
	"time"

	"agrotrace/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProducerRepository defines the data access contract for producers.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProducerRepository interface {
	Create(ctx context.Context, p *model.Producer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producer, error)
	List(ctx context.Context) ([]model.Producer, error)
	Update(ctx context.Context, p *model.Producer) error

	// FindExpiringWithin returns active producers whose certificate expires
	// between now and now+window. Used by the expiry alert cron.
	FindExpiringWithin(ctx context.Context, window time.Duration) ([]model.Producer, error)
}

type producerRepo struct{ db *gorm.DB }

func NewProducerRepository(db *gorm.DB) ProducerRepository { return &producerRepo{db: db} }

func (r *producerRepo) Create(ctx context.Context, p *model.Producer) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *producerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producer, error) {
	var p model.Producer
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	return &p, err
}

func (r *producerRepo) List(ctx context.Context) ([]model.Producer, error) {
	var producers []model.Producer
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&producers).Error
	return producers, err
}

func (r *producerRepo) Update(ctx context.Context, p *model.Producer) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *producerRepo) FindExpiringWithin(ctx context.Context, window time.Duration) ([]model.Producer, error) {
	now := time.Now()
	var producers []model.Producer
	err := r.db.WithContext(ctx).
		Where("active = true AND certificate_expiry > ? AND certificate_expiry <= ?", now, now.Add(window)).
		Order("certificate_expiry ASC").
		Find(&producers).Error
	return producers, err
}
