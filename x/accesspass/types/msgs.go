package types

import "strings"

// MsgInitializeMarket creates the market fee schedule. One-time operation.
type MsgInitializeMarket struct {
	Admin       string `json:"admin"`
	Treasury    string `json:"treasury"`
	Denom       string `json:"denom,omitempty"`
	ProtocolBps uint64 `json:"protocol_bps"`
	SubjectBps  uint64 `json:"subject_bps"`
	ReferralBps uint64 `json:"referral_bps"`
}

// Schedule materializes the fee schedule the message describes, applying the
// default denom when none is given.
func (m MsgInitializeMarket) Schedule() FeeSchedule {
	denom := strings.TrimSpace(m.Denom)
	if denom == "" {
		denom = DefaultDenom
	}
	return FeeSchedule{
		Admin:       strings.TrimSpace(m.Admin),
		Treasury:    strings.TrimSpace(m.Treasury),
		Denom:       denom,
		ProtocolBps: m.ProtocolBps,
		SubjectBps:  m.SubjectBps,
		ReferralBps: m.ReferralBps,
	}
}

func (m MsgInitializeMarket) ValidateBasic() error {
	return m.Schedule().Validate()
}

// MsgUpdateFeeSchedule replaces the market fee schedule. Admin-only.
type MsgUpdateFeeSchedule struct {
	Authority   string `json:"authority"`
	Treasury    string `json:"treasury"`
	ProtocolBps uint64 `json:"protocol_bps"`
	SubjectBps  uint64 `json:"subject_bps"`
	ReferralBps uint64 `json:"referral_bps"`
}

func (m MsgUpdateFeeSchedule) ValidateBasic() error {
	if strings.TrimSpace(m.Authority) == "" {
		return ErrInvalidArgument.Wrap("authority cannot be empty")
	}
	if strings.TrimSpace(m.Treasury) == "" {
		return ErrInvalidFeeSchedule.Wrap("treasury address cannot be empty")
	}
	if m.ProtocolBps+m.SubjectBps+m.ReferralBps > BpsBase {
		return ErrInvalidFeeSchedule.Wrapf("fee bps sum exceeds %d", BpsBase)
	}
	return nil
}

// MsgBuyPass purchases passes for a target at the current curve price.
// Referrer is optional; empty means no referral leg.
type MsgBuyPass struct {
	Buyer    string `json:"buyer"`
	Target   string `json:"target"`
	Amount   uint64 `json:"amount"`
	Referrer string `json:"referrer,omitempty"`
}

func (m MsgBuyPass) ValidateBasic() error {
	if strings.TrimSpace(m.Buyer) == "" {
		return ErrInvalidArgument.Wrap("buyer cannot be empty")
	}
	if strings.TrimSpace(m.Target) == "" {
		return ErrInvalidArgument.Wrap("target cannot be empty")
	}
	if m.Amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MsgSellPass redeems passes against the target's vault backing.
type MsgSellPass struct {
	Seller string `json:"seller"`
	Target string `json:"target"`
	Amount uint64 `json:"amount"`
}

func (m MsgSellPass) ValidateBasic() error {
	if strings.TrimSpace(m.Seller) == "" {
		return ErrInvalidArgument.Wrap("seller cannot be empty")
	}
	if strings.TrimSpace(m.Target) == "" {
		return ErrInvalidArgument.Wrap("target cannot be empty")
	}
	if m.Amount == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// MsgCreateTier appends a named subscription tier to a target's list.
// Only the target's admin may create tiers.
type MsgCreateTier struct {
	Owner           string `json:"owner"`
	Target          string `json:"target"`
	Name            string `json:"name"`
	Price           uint64 `json:"price"`
	DurationSeconds uint64 `json:"duration_seconds"`
}

func (m MsgCreateTier) ValidateBasic() error {
	if strings.TrimSpace(m.Owner) == "" {
		return ErrInvalidArgument.Wrap("owner cannot be empty")
	}
	if strings.TrimSpace(m.Target) == "" {
		return ErrInvalidArgument.Wrap("target cannot be empty")
	}
	tier := SubscriptionTier{
		Name:            strings.TrimSpace(m.Name),
		Price:           m.Price,
		DurationSeconds: m.DurationSeconds,
	}
	return tier.Validate()
}

// MsgSubscribe opens a subscription to one of a target's tiers. Referrer is
// optional; empty means no referral leg.
type MsgSubscribe struct {
	Subscriber string `json:"subscriber"`
	Target     string `json:"target"`
	TierID     uint64 `json:"tier_id"`
	Referrer   string `json:"referrer,omitempty"`
}

func (m MsgSubscribe) ValidateBasic() error {
	if strings.TrimSpace(m.Subscriber) == "" {
		return ErrInvalidArgument.Wrap("subscriber cannot be empty")
	}
	if strings.TrimSpace(m.Target) == "" {
		return ErrInvalidArgument.Wrap("target cannot be empty")
	}
	return nil
}

// MsgCancelSubscription removes a subscription record. No refund is issued.
type MsgCancelSubscription struct {
	Subscriber string `json:"subscriber"`
	Target     string `json:"target"`
}

func (m MsgCancelSubscription) ValidateBasic() error {
	if strings.TrimSpace(m.Subscriber) == "" {
		return ErrInvalidArgument.Wrap("subscriber cannot be empty")
	}
	if strings.TrimSpace(m.Target) == "" {
		return ErrInvalidArgument.Wrap("target cannot be empty")
	}
	return nil
}
