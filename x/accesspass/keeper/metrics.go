package keeper

import (
	"strconv"
	"sync/atomic"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ---------------------------------------------------------------------------
// Module Metrics -- in-process telemetry for the accesspass module
// ---------------------------------------------------------------------------
//
// All counters use sync/atomic for lock-free concurrent access. Metrics are
// in-memory only; exporters consume the periodic snapshot event. Reset is
// deterministic for testing.
// ---------------------------------------------------------------------------

// AtomicCounter is a lock-free monotonic counter using sync/atomic.
type AtomicCounter struct {
	value int64
}

// Inc increments the counter by 1.
func (c *AtomicCounter) Inc() { atomic.AddInt64(&c.value, 1) }

// Add increments the counter by delta.
func (c *AtomicCounter) Add(delta int64) { atomic.AddInt64(&c.value, delta) }

// Get returns the current counter value.
func (c *AtomicCounter) Get() int64 { return atomic.LoadInt64(&c.value) }

// Reset sets the counter to 0.
func (c *AtomicCounter) Reset() { atomic.StoreInt64(&c.value, 0) }

// AtomicGauge is a lock-free gauge (can go up or down).
type AtomicGauge struct {
	value int64
}

// Set stores a new value.
func (g *AtomicGauge) Set(v int64) { atomic.StoreInt64(&g.value, v) }

// Get returns the current value.
func (g *AtomicGauge) Get() int64 { return atomic.LoadInt64(&g.value) }

// Add shifts the gauge by delta.
func (g *AtomicGauge) Add(delta int64) { atomic.AddInt64(&g.value, delta) }

// ---------------------------------------------------------------------------
// ModuleMetrics -- aggregated telemetry for the accesspass module
// ---------------------------------------------------------------------------

// ModuleMetrics collects all telemetry for the accesspass module in a single
// struct. One instance is held by the Keeper and shared with all subsystems.
type ModuleMetrics struct {
	// --- Trades ---
	Buys                AtomicCounter
	Sells               AtomicCounter
	LiquidityRejections AtomicCounter
	PassesOutstanding   AtomicGauge

	// --- Subscriptions ---
	TiersCreated           AtomicCounter
	SubscriptionsCreated   AtomicCounter
	SubscriptionsCancelled AtomicCounter
}

// NewModuleMetrics creates a fresh ModuleMetrics.
func NewModuleMetrics() *ModuleMetrics {
	return &ModuleMetrics{}
}

// Reset zeroes all counters and gauges. Intended for testing only.
func (m *ModuleMetrics) Reset() {
	m.Buys.Reset()
	m.Sells.Reset()
	m.LiquidityRejections.Reset()
	m.PassesOutstanding.Set(0)

	m.TiersCreated.Reset()
	m.SubscriptionsCreated.Reset()
	m.SubscriptionsCancelled.Reset()
}

// MetricsSnapshot is a JSON-friendly snapshot of all module metrics at a
// given block height and timestamp.
type MetricsSnapshot struct {
	BlockHeight int64  `json:"block_height"`
	Timestamp   string `json:"timestamp"`

	Buys                int64 `json:"buys"`
	Sells               int64 `json:"sells"`
	LiquidityRejections int64 `json:"liquidity_rejections"`
	PassesOutstanding   int64 `json:"passes_outstanding"`

	TiersCreated           int64 `json:"tiers_created"`
	SubscriptionsCreated   int64 `json:"subscriptions_created"`
	SubscriptionsCancelled int64 `json:"subscriptions_cancelled"`
}

// Snapshot returns a point-in-time snapshot of all metrics, annotated with
// the given block height and timestamp.
func (m *ModuleMetrics) Snapshot(blockHeight int64, blockTime time.Time) MetricsSnapshot {
	return MetricsSnapshot{
		BlockHeight: blockHeight,
		Timestamp:   blockTime.UTC().Format(time.RFC3339),

		Buys:                m.Buys.Get(),
		Sells:               m.Sells.Get(),
		LiquidityRejections: m.LiquidityRejections.Get(),
		PassesOutstanding:   m.PassesOutstanding.Get(),

		TiersCreated:           m.TiersCreated.Get(),
		SubscriptionsCreated:   m.SubscriptionsCreated.Get(),
		SubscriptionsCancelled: m.SubscriptionsCancelled.Get(),
	}
}

// EmitMetricsEvent emits a metrics summary as an SDK event so indexers and
// dashboards can consume telemetry without a separate scrape endpoint.
func (m *ModuleMetrics) EmitMetricsEvent(ctx sdk.Context) {
	snap := m.Snapshot(ctx.BlockHeight(), ctx.BlockTime())

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"accesspass_module_metrics",
			sdk.NewAttribute("block_height", strconv.FormatInt(snap.BlockHeight, 10)),
			sdk.NewAttribute("buys", strconv.FormatInt(snap.Buys, 10)),
			sdk.NewAttribute("sells", strconv.FormatInt(snap.Sells, 10)),
			sdk.NewAttribute("liquidity_rejections", strconv.FormatInt(snap.LiquidityRejections, 10)),
			sdk.NewAttribute("passes_outstanding", strconv.FormatInt(snap.PassesOutstanding, 10)),
			sdk.NewAttribute("tiers_created", strconv.FormatInt(snap.TiersCreated, 10)),
			sdk.NewAttribute("subscriptions_created", strconv.FormatInt(snap.SubscriptionsCreated, 10)),
			sdk.NewAttribute("subscriptions_cancelled", strconv.FormatInt(snap.SubscriptionsCancelled, 10)),
		),
	)
}
