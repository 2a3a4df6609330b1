package core

import "strings"

type ModelTier string

const (
	TierPremium  ModelTier = "Premium"
	TierStandard ModelTier = "Standard"
	TierFast     ModelTier = "Fast"
	TierUnknown  ModelTier = "Unknown"
)

// ModelTiers lists tiers in display order.
var ModelTiers = []ModelTier{TierPremium, TierStandard, TierFast, TierUnknown}

// TierForModel classifies a Claude model id by family.
func TierForModel(model string) ModelTier {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "opus"):
		return TierPremium
	case strings.Contains(m, "sonnet"):
		return TierStandard
	case strings.Contains(m, "haiku"):
		return TierFast
	default:
		return TierUnknown
	}
}

// ModelFamily returns "opus", "sonnet", "haiku" or "" for other models.
func ModelFamily(model string) string {
	switch TierForModel(model) {
	case TierPremium:
		return "opus"
	case TierStandard:
		return "sonnet"
	case TierFast:
		return "haiku"
	}
	return ""
}
