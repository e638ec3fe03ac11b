package pricing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"community-recycle-tracker/pkg/celengine"
	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/errutil"
	"community-recycle-tracker/pkg/logger"
	"community-recycle-tracker/pkg/repository"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/quoter.go -package=mock . Quoter

// Quoter prices a weight of material.
type Quoter interface {
	Quote(ctx context.Context, material string, weight float64) (*Quote, error)
}

type Service struct {
	repo            repository.Repository[MaterialRate]
	cache           *rateCache
	defaults        map[string]string
	defaultMaterial string
	now             func() time.Time
}

type ServiceParams struct {
	fx.In
	DB     *gorm.DB
	Config *config.Config
}

func NewService(p ServiceParams) (*Service, error) {
	defaults := make(map[string]string, len(p.Config.Pricing.Rates))
	for material, expr := range p.Config.Pricing.Rates {
		if _, err := celengine.Compile(expr); err != nil {
			return nil, fmt.Errorf("pricing rate %q: %w", material, err)
		}
		defaults[normalize(material)] = expr
	}

	defaultMaterial := normalize(p.Config.Pricing.DefaultMaterial)
	if defaultMaterial == "" {
		defaultMaterial = "mixed"
	}

	return &Service{
		repo:            repository.ProvideStore[MaterialRate](p.DB, repository.WithTimeout(p.Config.Database.QueryTimeout)),
		cache:           newRateCache(p.Config.Pricing.CacheTTL),
		defaults:        defaults,
		defaultMaterial: defaultMaterial,
		now:             func() time.Time { return time.Now().UTC() },
	}, nil
}

func normalize(material string) string {
	return strings.ToLower(strings.TrimSpace(material))
}

// DefaultMaterial is applied when a log names no material.
func (s *Service) DefaultMaterial() string { return s.defaultMaterial }

func (s *Service) table(ctx context.Context) (*rateTable, error) {
	if t, ok := s.cache.get(); ok {
		return t, nil
	}

	v, err, _ := s.cache.group.Do("rates", func() (any, error) {
		t, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		s.cache.set(t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*rateTable), nil
}

// load merges stored rates over configured defaults. A stored expression
// that no longer compiles is skipped so the default stays in effect.
func (s *Service) load(ctx context.Context) (*rateTable, error) {
	zapLog := logger.FromContext(ctx)

	stored, err := s.repo.Find(ctx, &MaterialRate{})
	if err != nil {
		zapLog.Error("failed to load material rates", zap.Error(err))
		return nil, err
	}

	rates := make(map[string]*compiledRate, len(s.defaults)+len(stored))
	for material, expr := range s.defaults {
		prg, err := celengine.Compile(expr)
		if err != nil {
			return nil, err
		}
		rates[material] = &compiledRate{
			Rate:    Rate{Material: material, Expression: expr, Source: SourceConfig},
			program: prg,
		}
	}

	for _, r := range stored {
		prg, err := celengine.Compile(r.Expression)
		if err != nil {
			zapLog.Warn("skipping invalid material rate", zap.String("material", r.Material), zap.Error(err))
			continue
		}
		rates[r.Material] = &compiledRate{
			Rate:    Rate{Material: r.Material, Expression: r.Expression, Description: r.Description, Source: SourceStore},
			program: prg,
		}
	}

	return &rateTable{rates: rates, loadedAt: s.cache.now()}, nil
}

// Quote evaluates the material's rate for weight kilograms. Earnings are
// rounded to cents and rate is the effective amount per kilogram.
func (s *Service) Quote(ctx context.Context, material string, weight float64) (*Quote, error) {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return nil, errutil.InvalidWeight("")
	}

	material = normalize(material)
	if material == "" {
		material = s.defaultMaterial
	}

	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	r, ok := t.rates[material]
	if !ok {
		return nil, errutil.UnknownMaterial(fmt.Sprintf("no rate for material %q", material))
	}

	amount, err := celengine.Evaluate(r.program, material, weight)
	if err != nil {
		return nil, errutil.Internal("failed to evaluate material rate", err)
	}

	earnings := decimal.NewFromFloat(amount).Round(2)
	return &Quote{
		Material: material,
		Rate:     earnings.Div(decimal.NewFromFloat(weight)).Round(4),
		Earnings: earnings,
	}, nil
}

func (s *Service) ListRates(ctx context.Context) ([]Rate, error) {
	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Rate, 0, len(t.rates))
	for _, r := range t.rates {
		out = append(out, r.Rate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out, nil
}

func (s *Service) GetRate(ctx context.Context, material string) (*Rate, error) {
	t, err := s.table(ctx)
	if err != nil {
		return nil, err
	}

	r, ok := t.rates[normalize(material)]
	if !ok {
		return nil, errutil.NotFound("rate not found", nil)
	}
	rate := r.Rate
	return &rate, nil
}

// UpsertRate validates and stores a rate, then drops the cached table.
func (s *Service) UpsertRate(ctx context.Context, material string, req UpsertRateRequest) (*Rate, error) {
	material = normalize(material)
	if material == "" || slug.Make(material) != material {
		return nil, errutil.BadRequest("material must be a lowercase slug", nil)
	}

	expr := strings.TrimSpace(req.Expression)
	if _, err := celengine.Compile(expr); err != nil {
		return nil, errutil.BadRequest("invalid rate expression", err, errutil.WithDetails(errutil.Detail{
			Field:   "expression",
			Message: err.Error(),
		}))
	}

	r := &MaterialRate{
		Material:    material,
		Expression:  expr,
		Description: strings.TrimSpace(req.Description),
		UpdatedAt:   s.now(),
	}
	if err := s.repo.BatchUpdate(ctx, []*MaterialRate{r}); err != nil {
		logger.FromContext(ctx).Error("failed to store material rate", zap.String("material", material), zap.Error(err))
		return nil, err
	}
	s.cache.invalidate()

	logger.FromContext(ctx).Info("material rate updated", zap.String("material", material))
	return &Rate{Material: material, Expression: expr, Description: r.Description, Source: SourceStore}, nil
}
