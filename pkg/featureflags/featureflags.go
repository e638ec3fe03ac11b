package featureflags

import (
	"context"
	"fmt"

	"community-recycle-tracker/pkg/config"

	"github.com/Flagsmith/flagsmith-go-client/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("featureflags", fx.Provide(ProvideFeatureFlag))

const CapacityPolicy = "capacity_policy"

type FeatureFlag interface {
	// Value returns the remote value of feature for identifier. ok is false
	// when flags are disabled, the feature is off, or the lookup failed.
	Value(ctx context.Context, identifier, feature string) (value string, ok bool)
}

type featureflag struct {
	client *flagsmith.Client
}

type FeatureParams struct {
	fx.In
	Config *config.Config
}

func ProvideFeatureFlag(p FeatureParams) FeatureFlag {
	if p.Config.Flagsmith.ApiKey == "" {
		return &featureflag{}
	}

	opts := []flagsmith.Option{flagsmith.WithAnalytics()}
	if p.Config.Flagsmith.Addr != "" {
		opts = append(opts, flagsmith.WithBaseURL(p.Config.Flagsmith.Addr))
	}

	return &featureflag{
		client: flagsmith.NewClient(p.Config.Flagsmith.ApiKey, opts...),
	}
}

func (s *featureflag) Value(ctx context.Context, identifier, feature string) (string, bool) {
	if s.client == nil {
		return "", false
	}

	flags, err := s.client.GetIdentityFlags(identifier, nil)
	if err != nil {
		zap.L().Warn("failed to fetch identity flags", zap.String("feature", feature), zap.Error(err))
		return "", false
	}

	enabled, err := flags.IsFeatureEnabled(feature)
	if err != nil || !enabled {
		return "", false
	}

	v, err := flags.GetFeatureValue(feature)
	if err != nil || v == nil {
		return "", false
	}

	return fmt.Sprint(v), true
}
