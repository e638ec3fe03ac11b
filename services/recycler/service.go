package recycler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/minio"
	"community-recycle-tracker/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const MaxPhotoSize = 5 << 20

type Service struct {
	node    *snowflake.Node
	storage minio.ObjectStorage
	expiry  time.Duration
	repo    repository.Repository[Recycler]
	now     func() time.Time
}

type ServiceParams struct {
	fx.In
	DB      *gorm.DB
	Node    *snowflake.Node
	Storage minio.ObjectStorage
	Config  *config.Config
}

func NewService(p ServiceParams) *Service {
	expiry := p.Config.Minio.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	return &Service{
		node:    p.Node,
		storage: p.Storage,
		expiry:  expiry,
		repo:    repository.ProvideStore[Recycler](p.DB, repository.WithTimeout(p.Config.Database.QueryTimeout)),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Recycler, error) {
	zapLog := logger.FromContext(ctx)

	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, errutil.BadRequest("name is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, errutil.BadRequest("invalid email", err)
	}

	now := s.now()
	r := &Recycler{
		ID:        s.node.Generate().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errutil.Conflict("email already registered", err)
		}
		zapLog.Error("failed to create recycler", zap.Error(err))
		return nil, err
	}

	zapLog.Info("recycler registered", zap.String("recycler_id", r.ID))
	return r, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Recycler, error) {
	r, err := s.repo.FindOne(ctx, &Recycler{ID: id})
	if err != nil {
		logger.FromContext(ctx).Error("failed to query recycler", zap.String("recycler_id", id), zap.Error(err))
		return nil, err
	}
	if r == nil {
		return nil, errutil.NotFound("recycler not found", nil)
	}
	return r, nil
}

func (s *Service) VerificationStatus(ctx context.Context, id string) (*Verification, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Verification{RecyclerID: r.ID, Verified: r.Verified, VerifiedAt: r.VerifiedAt}, nil
}

func (s *Service) SetVerified(ctx context.Context, id string, verified bool) (*Verification, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	now := s.now()
	updates := map[string]any{"verified": verified, "verified_at": nil, "updated_at": now}
	if verified {
		updates["verified_at"] = now
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		logger.FromContext(ctx).Error("failed to update verification", zap.String("recycler_id", id), zap.Error(err))
		return nil, err
	}

	logger.FromContext(ctx).Info("recycler verification changed", zap.String("recycler_id", id), zap.Bool("verified", verified))
	return s.VerificationStatus(ctx, id)
}

func photoKey(id string) string {
	return fmt.Sprintf("recyclers/%s/photo", id)
}

func (s *Service) UploadPhoto(ctx context.Context, id, contentType string, r io.Reader, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return errutil.UnsupportedMediaType("photo must be an image", nil)
	}
	if size <= 0 || size > MaxPhotoSize {
		return errutil.BadRequest(fmt.Sprintf("photo must be between 1 byte and %d bytes", MaxPhotoSize), nil)
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	key := photoKey(id)
	if err := s.storage.Put(ctx, key, contentType, r, size); err != nil {
		logger.FromContext(ctx).Error("failed to store photo", zap.String("recycler_id", id), zap.Error(err))
		return err
	}

	return s.repo.Update(ctx, id, map[string]any{"photo_key": key, "updated_at": s.now()})
}

func (s *Service) PhotoURL(ctx context.Context, id string) (*url.URL, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.PhotoKey == "" {
		return nil, errutil.NotFound("recycler has no photo", nil)
	}
	return s.storage.PresignedURL(ctx, r.PhotoKey, s.expiry)
}
