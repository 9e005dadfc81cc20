package extend

// ScoreFunc computes a candidate's benefit-to-size ratio given its benefit
// (current_cost - new_cost), its new_cost, and its size_delta in bytes
// (always >= 1, the caller having already floored it).
type ScoreFunc func(benefit, newCost float64, sizeDeltaBytes int64) float64

func mb(bytes int64) float64 {
	return float64(bytes) / bytesPerMB
}

// BenefitPerSTO is the default scorer: benefit per megabyte of additional
// storage. Preferring this ratio is what makes the search greedy toward
// cheap, high-impact indexes rather than simply the biggest win available.
func BenefitPerSTO(benefit, newCost float64, sizeDeltaBytes int64) float64 {
	return benefit / mb(sizeDeltaBytes)
}

// BenefitPure ignores size entirely and scores by raw benefit.
func BenefitPure(benefit, newCost float64, sizeDeltaBytes int64) float64 {
	return benefit
}

// CostPerSTO scores by the negative of new_cost scaled by size in
// megabytes, favoring candidates that are both cheap to query and cheap to
// store.
func CostPerSTO(benefit, newCost float64, sizeDeltaBytes int64) float64 {
	return -newCost * mb(sizeDeltaBytes)
}

// CostPure scores purely by the negative of new_cost, ignoring size and
// benefit relative to the baseline.
func CostPure(benefit, newCost float64, sizeDeltaBytes int64) float64 {
	return -newCost
}
