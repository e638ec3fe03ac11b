package repository

import (
	"context"
	"errors"
	"time"

	"community-recycle-tracker/pkg/db/option"

	"gorm.io/gorm"
)

const DefaultQueryTimeout = 5 * time.Second

type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Update(ctx context.Context, resourceID string, resource any) error
	UpdateWhere(ctx context.Context, updates map[string]any, opts ...option.QueryOption) (int64, error)
	BatchCreate(ctx context.Context, resources []*T) error
	BatchUpdate(ctx context.Context, resources []*T) error
	Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error)
}

type store[T any] struct {
	db      *gorm.DB
	timeout time.Duration
}

type StoreOption func(*storeOptions)

type storeOptions struct {
	timeout time.Duration
}

// WithTimeout bounds every call made through the store.
func WithTimeout(d time.Duration) StoreOption {
	return func(o *storeOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func ProvideStore[T any](db *gorm.DB, opts ...StoreOption) Repository[T] {
	o := storeOptions{timeout: DefaultQueryTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return &store[T]{db: db, timeout: o.timeout}
}

func (s *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	if tx == nil {
		return s
	}
	return &store[T]{db: tx, timeout: s.timeout}
}

func (s *store[T]) bound(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

func (s *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	db, cancel := s.bound(ctx)
	defer cancel()

	var out []*T
	if err := db.Model(new(T)).Where(query).Scopes(scopes(opts)...).Find(&out).Error; err != nil {
		return nil, Classify(err)
	}
	return out, nil
}

// FindOne returns nil, nil when no row matches.
func (s *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	db, cancel := s.bound(ctx)
	defer cancel()

	out := new(T)
	err := db.Model(new(T)).Where(query).Scopes(scopes(opts)...).Limit(1).Take(out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, Classify(err)
	}
	return out, nil
}

func (s *store[T]) Create(ctx context.Context, resource *T) error {
	db, cancel := s.bound(ctx)
	defer cancel()

	return Classify(db.Create(resource).Error)
}

func (s *store[T]) Update(ctx context.Context, resourceID string, resource any) error {
	db, cancel := s.bound(ctx)
	defer cancel()

	return Classify(db.Model(new(T)).Where("id = ?", resourceID).Updates(resource).Error)
}

// UpdateWhere applies updates to every row selected by opts and reports how
// many rows changed. Callers use it for compare-and-set transitions.
func (s *store[T]) UpdateWhere(ctx context.Context, updates map[string]any, opts ...option.QueryOption) (int64, error) {
	db, cancel := s.bound(ctx)
	defer cancel()

	res := db.Model(new(T)).Scopes(scopes(opts)...).Updates(updates)
	if res.Error != nil {
		return 0, Classify(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *store[T]) BatchCreate(ctx context.Context, resources []*T) error {
	if len(resources) == 0 {
		return nil
	}

	db, cancel := s.bound(ctx)
	defer cancel()

	return Classify(db.CreateInBatches(resources, 100).Error)
}

func (s *store[T]) BatchUpdate(ctx context.Context, resources []*T) error {
	db, cancel := s.bound(ctx)
	defer cancel()

	return Classify(db.Transaction(func(tx *gorm.DB) error {
		for _, r := range resources {
			if err := tx.Save(r).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}

func (s *store[T]) Count(ctx context.Context, query *T, opts ...option.QueryOption) (int64, error) {
	db, cancel := s.bound(ctx)
	defer cancel()

	var count int64
	if err := db.Model(new(T)).Where(query).Scopes(scopes(opts)...).Count(&count).Error; err != nil {
		return 0, Classify(err)
	}
	return count, nil
}

func scopes(opts []option.QueryOption) []func(*gorm.DB) *gorm.DB {
	out := make([]func(*gorm.DB) *gorm.DB, 0, len(opts))
	for _, opt := range opts {
		out = append(out, opt)
	}
	return out
}
