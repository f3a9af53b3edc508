package types

// GenesisState holds all module state for export/import.
type GenesisState struct {
	FeeSchedule   *FeeSchedule   `json:"fee_schedule,omitempty"`
	Ledgers       []PassLedger   `json:"ledgers,omitempty"`
	VaultBalances []VaultBalance `json:"vault_balances,omitempty"`
	TierLists     []TargetTiers  `json:"tier_lists,omitempty"`
	Subscriptions []Subscription `json:"subscriptions,omitempty"`
}

// VaultBalance is one target's redemption vault earmark.
type VaultBalance struct {
	Target  string `json:"target"`
	Balance uint64 `json:"balance"`
}

// TargetTiers is one target's ordered tier list.
type TargetTiers struct {
	Target string             `json:"target"`
	Tiers  []SubscriptionTier `json:"tiers"`
}

// DefaultGenesis returns an empty, uninitialized market.
func DefaultGenesis() *GenesisState {
	return &GenesisState{}
}

// Validate checks genesis consistency: schedule bounds, no duplicate targets,
// valid tiers, and subscriptions that reference existing tiers.
func (gs GenesisState) Validate() error {
	if gs.FeeSchedule != nil {
		if err := gs.FeeSchedule.Validate(); err != nil {
			return err
		}
	}

	ledgers := make(map[string]struct{}, len(gs.Ledgers))
	for _, ledger := range gs.Ledgers {
		if ledger.Target == "" {
			return ErrInvalidArgument.Wrap("ledger target cannot be empty")
		}
		if _, ok := ledgers[ledger.Target]; ok {
			return ErrInvalidState.Wrapf("duplicate ledger for target %s", ledger.Target)
		}
		ledgers[ledger.Target] = struct{}{}
	}

	vaults := make(map[string]struct{}, len(gs.VaultBalances))
	for _, vault := range gs.VaultBalances {
		if vault.Target == "" {
			return ErrInvalidArgument.Wrap("vault target cannot be empty")
		}
		if _, ok := vaults[vault.Target]; ok {
			return ErrInvalidState.Wrapf("duplicate vault balance for target %s", vault.Target)
		}
		vaults[vault.Target] = struct{}{}
	}

	tierCounts := make(map[string]int, len(gs.TierLists))
	for _, list := range gs.TierLists {
		if list.Target == "" {
			return ErrInvalidArgument.Wrap("tier list target cannot be empty")
		}
		if _, ok := tierCounts[list.Target]; ok {
			return ErrInvalidState.Wrapf("duplicate tier list for target %s", list.Target)
		}
		names := make(map[string]struct{}, len(list.Tiers))
		for _, tier := range list.Tiers {
			if err := tier.Validate(); err != nil {
				return err
			}
			if _, ok := names[tier.Name]; ok {
				return ErrTierExists.Wrapf("target %s tier %s", list.Target, tier.Name)
			}
			names[tier.Name] = struct{}{}
		}
		tierCounts[list.Target] = len(list.Tiers)
	}

	seen := make(map[string]struct{}, len(gs.Subscriptions))
	for _, sub := range gs.Subscriptions {
		if sub.Target == "" || sub.Subscriber == "" {
			return ErrInvalidArgument.Wrap("subscription target and subscriber cannot be empty")
		}
		key := SubscriptionKey(sub.Target, sub.Subscriber)
		if _, ok := seen[key]; ok {
			return ErrSubscriptionExists.Wrapf("duplicate subscription %s", key)
		}
		seen[key] = struct{}{}
		count, ok := tierCounts[sub.Target]
		if !ok || sub.TierID >= uint64(count) {
			return ErrTierNotFound.Wrapf("subscription %s references tier %d", key, sub.TierID)
		}
		if sub.EndUnix <= sub.StartUnix {
			return ErrInvalidState.Wrapf("subscription %s ends before it starts", key)
		}
	}

	return nil
}
