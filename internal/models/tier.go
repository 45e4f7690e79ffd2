package models

const MIN_AURA_CREATE_OPINION = 100

type Tier struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	Threshold       int     `json:"threshold"`
	ReachMultiplier float64 `json:"reach_multiplier"`
}

// Tiers is ordered by ascending threshold. Tier derivation walks it from
// the top, so the table must stay sorted.
var Tiers = []Tier{
	{ID: 1, Name: "spark", Threshold: 0, ReachMultiplier: 1.0},
	{ID: 2, Name: "glow", Threshold: 100, ReachMultiplier: 1.1},
	{ID: 3, Name: "flare", Threshold: 500, ReachMultiplier: 1.25},
	{ID: 4, Name: "blaze", Threshold: 2000, ReachMultiplier: 1.5},
	{ID: 5, Name: "nova", Threshold: 10000, ReachMultiplier: 2.0},
}

// TierForBalance returns the highest tier whose threshold the balance
// meets, and the next tier up when one exists.
func TierForBalance(balance int) (Tier, *Tier) {
	for i := len(Tiers) - 1; i >= 0; i-- {
		if balance >= Tiers[i].Threshold {
			if i+1 < len(Tiers) {
				next := Tiers[i+1]
				return Tiers[i], &next
			}
			return Tiers[i], nil
		}
	}
	next := Tiers[1]
	return Tiers[0], &next
}

// TierProgress is the percentage of the way from the current tier's
// threshold to the next, clamped to [0, 100]. Nil at the top tier.
func TierProgress(balance int) *float64 {
	current, next := TierForBalance(balance)
	if next == nil {
		return nil
	}

	span := float64(next.Threshold - current.Threshold)
	progress := float64(balance-current.Threshold) / span * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return &progress
}

func (account *AuraAccount) ApplyDerived() {
	tier, next := TierForBalance(account.Balance)
	account.Tier = tier.ID
	account.TierName = tier.Name
	account.ReachMultiplier = tier.ReachMultiplier
	account.CanCreateOpinions = account.Balance >= MIN_AURA_CREATE_OPINION
	account.ProgressToNextTier = TierProgress(account.Balance)
	if next != nil {
		threshold := next.Threshold
		account.NextTierThreshold = &threshold
	} else {
		account.NextTierThreshold = nil
	}
}
