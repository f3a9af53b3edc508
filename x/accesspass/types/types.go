package types

import (
	"fmt"
	"strings"
)

const (
	// BpsBase is the total basis points representing 100%.
	BpsBase uint64 = 10_000

	// DefaultDenom is the base currency denom used when the fee schedule
	// does not name one. All amounts are integers in this denom's smallest
	// unit.
	DefaultDenom = "uoutp"
)

// FeeSchedule is the single market-wide settlement configuration. All
// percentages are basis points; the three fee legs must not exceed 10000 in
// total so the net can never go negative.
type FeeSchedule struct {
	Admin       string `json:"admin"`
	Treasury    string `json:"treasury"`
	Denom       string `json:"denom"`
	ProtocolBps uint64 `json:"protocol_bps"`
	SubjectBps  uint64 `json:"subject_bps"`
	ReferralBps uint64 `json:"referral_bps"`
}

// Validate checks address presence and the bps-sum bound.
func (s FeeSchedule) Validate() error {
	if strings.TrimSpace(s.Admin) == "" {
		return ErrInvalidFeeSchedule.Wrap("admin address cannot be empty")
	}
	if strings.TrimSpace(s.Treasury) == "" {
		return ErrInvalidFeeSchedule.Wrap("treasury address cannot be empty")
	}
	if strings.TrimSpace(s.Denom) == "" {
		return ErrInvalidFeeSchedule.Wrap("denom cannot be empty")
	}
	total := s.ProtocolBps + s.SubjectBps + s.ReferralBps
	if total > BpsBase {
		return ErrInvalidFeeSchedule.Wrapf("fee bps sum %d exceeds %d", total, BpsBase)
	}
	return nil
}

// PassLedger tracks the outstanding pass supply for one target. LastPrice is
// the most recently realized gross price; it is informational only and the
// next trade is always repriced from Supply.
type PassLedger struct {
	Target    string `json:"target"`
	Supply    uint64 `json:"supply"`
	LastPrice uint64 `json:"last_price"`
}

// SubscriptionTier is a named plan scoped to one target. Tiers are immutable
// once created; tier identity is the positional index in the target's list.
type SubscriptionTier struct {
	Name            string `json:"name"`
	Price           uint64 `json:"price"`
	DurationSeconds uint64 `json:"duration_seconds"`
}

// Validate checks tier fields at creation time.
func (t SubscriptionTier) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrInvalidArgument.Wrap("tier name cannot be empty")
	}
	if t.Price == 0 {
		return ErrInvalidArgument.Wrap("tier price must be positive")
	}
	if t.DurationSeconds == 0 {
		return ErrInvalidArgument.Wrap("tier duration must be positive")
	}
	return nil
}

// Subscription is one subscriber's active record for a target. EndTime is
// fixed at subscribe time; expiry is evaluated against the clock on read,
// never by deleting the record.
type Subscription struct {
	Target     string `json:"target"`
	Subscriber string `json:"subscriber"`
	TierID     uint64 `json:"tier_id"`
	StartUnix  int64  `json:"start_unix"`
	EndUnix    int64  `json:"end_unix"`
}

// ExpiredAt reports whether the subscription has lapsed at the given unix
// time. A record is active through EndUnix exclusive.
func (s Subscription) ExpiredAt(nowUnix int64) bool {
	return nowUnix >= s.EndUnix
}

// FeeSplit is the exact four-way decomposition of a gross settlement amount.
// Protocol + Subject + Referral + Net always equals the gross it was split
// from; Net is computed by subtraction so integer flooring can never leak
// value.
type FeeSplit struct {
	Protocol uint64 `json:"protocol"`
	Subject  uint64 `json:"subject"`
	Referral uint64 `json:"referral"`
	Net      uint64 `json:"net"`
}

// Total returns the gross amount the split was derived from.
func (f FeeSplit) Total() uint64 {
	return f.Protocol + f.Subject + f.Referral + f.Net
}

func (f FeeSplit) String() string {
	return fmt.Sprintf("protocol=%d subject=%d referral=%d net=%d", f.Protocol, f.Subject, f.Referral, f.Net)
}
