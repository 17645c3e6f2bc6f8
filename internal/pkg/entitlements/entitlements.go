package entitlements

import (
	"strings"

	"github.com/MelodiaryApp/Melodiary/app/models"
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanPremium    Plan = "premium"
	PlanPremiumMax Plan = "premium_max"
)

// Normalize maps arbitrary tier labels onto the closed plan set.
func Normalize(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPremium):
		return PlanPremium
	case string(PlanPremiumMax):
		return PlanPremiumMax
	default:
		return PlanFree
	}
}

func Rank(plan Plan) int {
	switch plan {
	case PlanPremiumMax:
		return 2
	case PlanPremium:
		return 1
	default:
		return 0
	}
}

// MonthlyGenerationLimit returns how many song generations a plan grants
// per usage period.
func MonthlyGenerationLimit(plan Plan) int {
	switch plan {
	case PlanPremiumMax:
		return 100
	case PlanPremium:
		return 30
	default:
		return 3
	}
}

// EffectiveLimit combines the plan allowance with an optional per-user
// override. The override always wins when set.
func EffectiveLimit(sub *models.SubscriptionStatus) int {
	if sub.OverrideLimit != nil {
		return *sub.OverrideLimit
	}
	return MonthlyGenerationLimit(Normalize(sub.Tier))
}

// RemainingGenerations returns how many generations are left in the
// current usage period, never below zero.
func RemainingGenerations(sub *models.SubscriptionStatus) int {
	remaining := EffectiveLimit(sub) - sub.GenerationsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
