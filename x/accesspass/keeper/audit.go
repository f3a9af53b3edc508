package keeper

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// ---------------------------------------------------------------------------
// Settlement audit chain
// ---------------------------------------------------------------------------
//
// Every settlement (buy, sell, subscribe, cancel) is recorded as a
// SettlementRecord that is:
//
//   1. Hashed (SHA-256) for tamper detection
//   2. Chained to the previous record for continuity
//   3. Emitted as an SDK event for on-chain persistence
//   4. Written to the SDK logger for operator visibility
//
// Records are append-only and deterministic: identical inputs always produce
// identical record hashes.
// ---------------------------------------------------------------------------

// SettlementKind classifies a settlement record.
type SettlementKind string

const (
	SettlementKindBuy       SettlementKind = "buy"
	SettlementKindSell      SettlementKind = "sell"
	SettlementKindSubscribe SettlementKind = "subscribe"
	SettlementKindCancel    SettlementKind = "cancel"
)

// SettlementRecord is a single audit entry. RecordHash is computed
// deterministically from all other fields plus the PreviousHash.
type SettlementRecord struct {
	Sequence     uint64 `json:"sequence"`
	RecordHash   string `json:"record_hash"`
	PreviousHash string `json:"previous_hash"`

	Kind   SettlementKind `json:"kind"`
	Actor  string         `json:"actor"`
	Target string         `json:"target"`
	Amount uint64         `json:"amount"`
	Gross  uint64         `json:"gross"`

	BlockHeight int64 `json:"block_height"`
	TimeUnix    int64 `json:"time_unix"`
}

// computeHash produces a deterministic SHA-256 digest over a canonical
// serialization of the record.
func (r *SettlementRecord) computeHash() string {
	canonical := fmt.Sprintf(
		"seq=%d|prev=%s|kind=%s|actor=%s|target=%s|amount=%d|gross=%d|height=%d|time=%d",
		r.Sequence, r.PreviousHash, r.Kind, r.Actor, r.Target,
		r.Amount, r.Gross, r.BlockHeight, r.TimeUnix,
	)
	hash := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(hash[:])
}

// AuditChain maintains a hash-chained sequence of settlement records and
// emits them to both the SDK event system and the structured logger.
type AuditChain struct {
	mu        sync.Mutex
	sequence  uint64
	lastHash  string
	records   []SettlementRecord // bounded in-memory ring
	bufferCap int
	total     uint64
}

const auditBufferCap = 10000

// NewAuditChain creates an audit chain with a bounded in-memory buffer.
// Records displaced from the buffer remain persisted through their events.
func NewAuditChain() *AuditChain {
	return &AuditChain{
		bufferCap: auditBufferCap,
		records:   make([]SettlementRecord, 0, 64),
		lastHash:  "genesis",
	}
}

// Append assigns the next sequence number and chained hash to the record,
// buffers it, emits it as an SDK event and logs it.
func (ac *AuditChain) Append(ctx sdk.Context, rec SettlementRecord) SettlementRecord {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	ac.sequence++
	rec.Sequence = ac.sequence
	rec.PreviousHash = ac.lastHash
	rec.BlockHeight = ctx.BlockHeight()
	rec.RecordHash = rec.computeHash()
	ac.lastHash = rec.RecordHash

	if len(ac.records) < ac.bufferCap {
		ac.records = append(ac.records, rec)
	} else {
		ac.records[int(ac.total)%ac.bufferCap] = rec
	}
	ac.total++

	ctx.EventManager().EmitEvent(sdk.NewEvent(
		"settlement_record",
		sdk.NewAttribute("sequence", strconv.FormatUint(rec.Sequence, 10)),
		sdk.NewAttribute("record_hash", rec.RecordHash),
		sdk.NewAttribute("previous_hash", rec.PreviousHash),
		sdk.NewAttribute("kind", string(rec.Kind)),
		sdk.NewAttribute("actor", rec.Actor),
		sdk.NewAttribute("target", rec.Target),
		sdk.NewAttribute("amount", strconv.FormatUint(rec.Amount, 10)),
		sdk.NewAttribute("gross", strconv.FormatUint(rec.Gross, 10)),
		sdk.NewAttribute("block_height", strconv.FormatInt(rec.BlockHeight, 10)),
	))

	ctx.Logger().Info("AUDIT",
		"sequence", rec.Sequence,
		"hash", rec.RecordHash[:16],
		"kind", string(rec.Kind),
		"actor", rec.Actor,
		"target", rec.Target,
		"gross", rec.Gross,
		"block_height", rec.BlockHeight,
	)

	return rec
}

// Records returns a copy of the buffered records, safe to iterate without
// locks.
func (ac *AuditChain) Records() []SettlementRecord {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	out := make([]SettlementRecord, len(ac.records))
	copy(out, ac.records)
	return out
}

// Sequence returns the current sequence number.
func (ac *AuditChain) Sequence() uint64 {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.sequence
}

// LastHash returns the hash of the most recent record.
func (ac *AuditChain) LastHash() string {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.lastHash
}

// ExportJSON serializes the buffered records.
func (ac *AuditChain) ExportJSON() ([]byte, error) {
	return json.Marshal(ac.Records())
}

// VerifyChain recomputes every buffered record hash and checks the chain
// linkage. Returns an error describing the first broken link.
func (ac *AuditChain) VerifyChain() error {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	for i, r := range ac.records {
		if expected := r.computeHash(); expected != r.RecordHash {
			return fmt.Errorf("audit chain broken at sequence %d: expected hash %s, got %s",
				r.Sequence, expected, r.RecordHash)
		}
		if i > 0 && r.PreviousHash != ac.records[i-1].RecordHash {
			return fmt.Errorf("audit chain broken at sequence %d: previous hash mismatch", r.Sequence)
		}
	}
	return nil
}
