package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"atoiota/internal/ledger"
	"atoiota/internal/models"
	"atoiota/pkg/evm"
)

// Session identifies the caller of a submission attempt. It is constructed by
// the auth layer from a verified wallet signature and injected here; the
// pipeline never reaches for ambient connection state.
type Session struct {
	Address string
}

// Publisher pushes transaction lifecycle events to the message broker.
// Optional; config.Publisher satisfies it.
type Publisher interface {
	Publish(queueName string, message interface{}) error
}

// Notifier fans transaction updates out to connected dashboard clients.
// Optional; the websocket hub satisfies it.
type Notifier interface {
	NotifyTransaction(rec models.TransactionRecord)
}

// TxEventsQueue is the broker queue carrying transaction lifecycle events.
const TxEventsQueue = "portfolio_tx_events"

// Pipeline drives a validated draft through on-chain submission and
// reconciles the outcome into the store and the ledger. It is the only
// component that commits the portfolio, and it does so exactly once per
// attempt, on the pending-to-confirmed edge.
type Pipeline struct {
	store  *Store
	ledger *ledger.Ledger
	chain  evm.Writer
	pub    Publisher
	notify Notifier

	mu       sync.Mutex
	inFlight bool
}

func NewPipeline(store *Store, led *ledger.Ledger, chain evm.Writer) *Pipeline {
	return &Pipeline{store: store, ledger: led, chain: chain}
}

// WithPublisher attaches a broker publisher for lifecycle events.
func (p *Pipeline) WithPublisher(pub Publisher) *Pipeline {
	p.pub = pub
	return p
}

// WithNotifier attaches a live-update notifier.
func (p *Pipeline) WithNotifier(n Notifier) *Pipeline {
	p.notify = n
	return p
}

// Apply submits the current draft.
//
// Preconditions are checked in order and each failure is distinct: no session
// (UNAUTHENTICATED), session is not the contract owner (FORBIDDEN), no draft
// (NO_CHANGES), draft unbalanced (INVALID_ALLOCATION, carrying the actual
// sum). None of these create a ledger record.
//
// Once the attempt enters pending a record exists and is returned even on
// failure; the record's terminal status then tells the caller what happened.
// The portfolio is never partially applied: a failed attempt leaves the
// committed set and the draft exactly as they were.
func (p *Pipeline) Apply(ctx context.Context, session *Session) (*models.TransactionRecord, error) {
	if session == nil || session.Address == "" {
		return nil, NewError(CodeUnauthenticated, "connect a wallet to update portfolio allocations")
	}

	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil, NewError(CodeBusy, "a submission is already in flight")
	}
	p.inFlight = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	owner, err := p.chain.Owner(ctx)
	if err != nil {
		return nil, NewError(CodeWriteFailure, "owner lookup failed: %v", err)
	}
	if !strings.EqualFold(owner, session.Address) {
		return nil, NewError(CodeForbidden, "wallet %s is not the contract owner", session.Address)
	}

	draft := p.store.Draft()
	if draft == nil {
		return nil, NewError(CodeNoChanges, "there are no pending allocation changes to apply")
	}
	if !IsBalanced(draft) {
		sum := Sum(draft)
		e := NewError(CodeInvalidAllocation, "total allocation must equal 100%%, got %d%%", sum)
		e.Sum = &sum
		return nil, e
	}

	// From here the attempt must reach a terminal state even if the caller
	// disconnects; only the chain client's own confirmation timeout applies.
	ctx = context.WithoutCancel(ctx)

	old := p.store.Committed()
	details, err := json.Marshal(models.TxDetails{OldAllocations: old, NewAllocations: draft})
	if err != nil {
		return nil, NewError(CodeWriteFailure, "encode details: %v", err)
	}

	rec := &models.TransactionRecord{
		Ref:       uuid.NewString(),
		TxID:      fmt.Sprintf("pending_%x", time.Now().UnixMilli()),
		Timestamp: time.Now().UTC(),
		Kind:      models.TxKindAllocationChange,
		Status:    models.TxStatusPending,
		Details:   string(details),
	}
	if err := p.ledger.Append(rec); err != nil {
		return nil, NewError(CodeWriteFailure, "record attempt: %v", err)
	}
	p.emit(*rec)
	logger.WithFields(logger.Fields{"ref": rec.Ref, "wallet": session.Address}).
		Info("Allocation submission pending")

	categories := make([]string, len(draft))
	percentages := make([]uint64, len(draft))
	for i, c := range draft {
		categories[i] = c.ID
		percentages[i] = uint64(c.Allocation)
	}

	hash, err := p.chain.UpdateAllocations(ctx, categories, percentages)
	if err != nil {
		return p.fail(rec, old, draft, CodeWriteFailure, err)
	}

	// The chain-assigned hash supersedes the placeholder id. The record stays
	// addressable throughout via its ref.
	if err := p.ledger.Update(rec.Ref, ledger.Patch{TxID: &hash, Hash: &hash}); err != nil {
		logger.Errorf("Failed to swap tx id for %s: %v", rec.Ref, err)
	}
	rec.TxID = hash
	rec.Hash = hash

	if err := p.chain.WaitConfirmed(ctx, hash); err != nil {
		return p.fail(rec, old, draft, CodeConfirmationFailure, err)
	}

	if err := p.store.Commit(draft, hash); err != nil {
		return p.fail(rec, old, draft, CodeConfirmationFailure, err)
	}

	status := models.TxStatusConfirmed
	if err := p.ledger.Update(rec.Ref, ledger.Patch{Status: &status}); err != nil {
		logger.Errorf("Failed to mark %s confirmed: %v", rec.Ref, err)
	}
	rec.Status = status
	p.emit(*rec)
	logger.WithFields(logger.Fields{"ref": rec.Ref, "hash": hash}).
		Info("Allocation submission confirmed")
	return rec, nil
}

// fail terminates the attempt. The store is left untouched.
func (p *Pipeline) fail(rec *models.TransactionRecord, old, draft []models.AllocationCategory, code Code, cause error) (*models.TransactionRecord, error) {
	details, merr := json.Marshal(models.TxDetails{
		OldAllocations: old,
		NewAllocations: draft,
		Error:          cause.Error(),
	})

	status := models.TxStatusFailed
	patch := ledger.Patch{Status: &status}
	if merr == nil {
		d := string(details)
		patch.Details = &d
		rec.Details = d
	}
	if err := p.ledger.Update(rec.Ref, patch); err != nil {
		logger.Errorf("Failed to mark %s failed: %v", rec.Ref, err)
	}
	rec.Status = status
	p.emit(*rec)
	logger.WithFields(logger.Fields{"ref": rec.Ref, "code": code}).
		Warnf("Allocation submission failed: %v", cause)
	return rec, NewError(code, "%v", cause)
}

func (p *Pipeline) emit(rec models.TransactionRecord) {
	if p.notify != nil {
		p.notify.NotifyTransaction(rec)
	}
	if p.pub != nil {
		if err := p.pub.Publish(TxEventsQueue, rec); err != nil {
			logger.Errorf("Failed to publish tx event for %s: %v", rec.Ref, err)
		}
	}
}
