package event

import (
	"context"
	"fmt"

	"community-recycle-tracker/pkg/config"
	"community-recycle-tracker/pkg/featureflags"
	"community-recycle-tracker/pkg/logger"

	"go.uber.org/zap"
)

// Policy selects where event weight capacity is enforced.
type Policy string

const (
	PolicyJoinAndLog Policy = "join_and_log"
	PolicyJoinOnly   Policy = "join_only"
	PolicyLogOnly    Policy = "log_only"
	PolicyNone       Policy = "none"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyJoinAndLog, PolicyJoinOnly, PolicyLogOnly, PolicyNone:
		return p, nil
	case "":
		return PolicyJoinAndLog, nil
	default:
		return "", fmt.Errorf("unknown capacity policy %q", s)
	}
}

func (p Policy) AtJoin() bool { return p == PolicyJoinAndLog || p == PolicyJoinOnly }

func (p Policy) AtLog() bool { return p == PolicyJoinAndLog || p == PolicyLogOnly }

// PolicyResolver returns the configured policy unless a feature flag
// overrides it for the recycler.
type PolicyResolver struct {
	def   Policy
	flags featureflags.FeatureFlag
}

func NewPolicyResolver(cfg *config.Config, flags featureflags.FeatureFlag) (*PolicyResolver, error) {
	def, err := ParsePolicy(cfg.Capacity.Policy)
	if err != nil {
		return nil, err
	}
	return &PolicyResolver{def: def, flags: flags}, nil
}

func (r *PolicyResolver) Resolve(ctx context.Context, recyclerID string) Policy {
	if r.flags == nil {
		return r.def
	}

	v, ok := r.flags.Value(ctx, recyclerID, featureflags.CapacityPolicy)
	if !ok {
		return r.def
	}

	p, err := ParsePolicy(v)
	if err != nil {
		logger.FromContext(ctx).Warn("ignoring capacity policy override", zap.String("value", v), zap.Error(err))
		return r.def
	}
	return p
}
