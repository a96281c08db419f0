package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/ali-derogar/bujo/internal/journal/schema"
	"github.com/ali-derogar/bujo/internal/journal/store"
	"github.com/ali-derogar/bujo/internal/journal/syncmeta"
)

// ProgressFunc receives phase transitions during a sync run.
type ProgressFunc func(phase string)

// Orchestrator coordinates a full sync: collect local changes, exchange
// them with the backend, merge the response, stamp the metadata. At most
// one run per user is in flight; a second request while one is running
// returns the "already syncing" result instead of queuing.
type Orchestrator struct {
	store  *store.Store
	client Client
	meta   *syncmeta.Store
	log    *zap.SugaredLogger

	mu       gosync.Mutex
	inFlight map[string]bool
}

// NewOrchestrator wires a sync orchestrator. A nil logger means no
// logging.
func NewOrchestrator(st *store.Store, client Client, meta *syncmeta.Store, logger *zap.SugaredLogger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		store:    st,
		client:   client,
		meta:     meta,
		log:      logger,
		inFlight: make(map[string]bool),
	}
}

// Sync runs one full sync for a user. onProgress may be nil.
func (o *Orchestrator) Sync(ctx context.Context, userID string, onProgress ProgressFunc) Result {
	if userID == "" {
		userID = schema.DefaultUserID
	}
	if onProgress == nil {
		onProgress = func(string) {}
	}

	o.mu.Lock()
	if o.inFlight[userID] {
		o.mu.Unlock()
		return Result{Message: "sync already in progress"}
	}
	o.inFlight[userID] = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		delete(o.inFlight, userID)
		o.mu.Unlock()
	}()

	result := o.run(ctx, userID, onProgress)
	onProgress(PhaseIdle)
	return result
}

func (o *Orchestrator) run(ctx context.Context, userID string, onProgress ProgressFunc) Result {
	started := time.Now()
	result := Result{
		Stats: Stats{
			Uploaded:   make(map[string]int),
			Downloaded: make(map[string]int),
		},
	}

	since := time.Time{}
	if last, err := o.meta.LastSyncAt(userID); err != nil {
		o.log.Warnw("could not read last sync time, doing a full pull",
			"user", userID, "error", err)
	} else if last != nil {
		since = *last
	}

	// Loading: gather local changes and fetch the backend's.
	onProgress(PhaseLoading)

	var changes []StoreRecords
	for _, storeName := range schema.SyncedStores() {
		records, err := o.store.ModifiedSince(ctx, storeName, userID, since)
		if err != nil {
			classify(&result, fmt.Errorf("failed to collect %s changes: %w", storeName, err))
			return result
		}
		if len(records) == 0 {
			continue
		}
		changes = append(changes, StoreRecords{Store: storeName, Records: toWire(records)})
		result.Stats.Uploaded[storeName] = len(records)
	}

	remote, err := o.client.Pull(ctx, userID, since)
	if err != nil {
		classify(&result, err)
		return result
	}

	// Saving: merge remote records, then upload ours.
	onProgress(PhaseSaving)

	for _, group := range remote {
		applied, conflicts, err := o.store.ApplyRemote(ctx, group.Store, fromWire(group.Records))
		result.Stats.ConflictsResolved += conflicts
		if applied > 0 {
			result.Stats.Downloaded[group.Store] = applied
		}
		if err != nil {
			classify(&result, fmt.Errorf("failed to apply %s changes: %w", group.Store, err))
			return result
		}
	}

	if len(changes) > 0 {
		if _, err := o.client.Push(ctx, userID, changes); err != nil {
			classify(&result, err)
			return result
		}
	}

	if err := o.meta.UpdateLastSyncAt(userID, started); err != nil {
		o.log.Warnw("sync succeeded but stamping metadata failed",
			"user", userID, "error", err)
	}

	result.Success = true
	result.Message = "sync complete"
	o.log.Infow("sync complete",
		"user", userID,
		"uploadedStores", len(result.Stats.Uploaded),
		"downloadedStores", len(result.Stats.Downloaded),
		"conflicts", result.Stats.ConflictsResolved,
		"took", time.Since(started))
	return result
}

func toWire(records []store.Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record{ID: r.ID, UpdatedAt: r.UpdatedAt, Body: r.Body}
	}
	return out
}

func fromWire(records []Record) []store.Record {
	out := make([]store.Record, len(records))
	for i, r := range records {
		out[i] = store.Record{ID: r.ID, UpdatedAt: r.UpdatedAt, Body: r.Body}
	}
	return out
}
