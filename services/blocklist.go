package services

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/rayansh0071505/portfolio-api/shared"
	log "github.com/sirupsen/logrus"
)

// BlocklistService is the persistent deny list. The whole map is loaded
// into memory at start and every mutation is flushed back through the
// KVStore, so lookups stay O(1) on the request path and blocks survive a
// restart.
type BlocklistService struct {
	context.DefaultService

	blocked map[string]model.BlockedIP
	mutex   sync.RWMutex

	store shared.KVStore
	now   func() time.Time
}

const BLOCKLIST_SVC = "blocklist_svc"

func (svc BlocklistService) Id() string {
	return BLOCKLIST_SVC
}

func (svc *BlocklistService) Configure(ctx *context.Context) error {
	path := os.Getenv("BLOCKED_IPS_FILE")
	if path == "" {
		path = "data/blocked_ips.json"
	}

	svc.store = shared.NewFileStore(path)
	svc.blocked = make(map[string]model.BlockedIP)
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *BlocklistService) Start() error {
	blocked := make(map[string]model.BlockedIP)
	if err := svc.store.Load(&blocked); err != nil {
		return fmt.Errorf("failed to load blocklist: %w", err)
	}

	svc.blocked = blocked
	log.Infof("Blocklist loaded: %d blocked addresses", len(blocked))
	return nil
}

// IsBlocked is the fast-path short-circuit run before any other admission
// logic. Returns the human-readable refusal when blocked.
func (svc *BlocklistService) IsBlocked(address string) (bool, string) {
	svc.mutex.RLock()
	entry, ok := svc.blocked[address]
	svc.mutex.RUnlock()

	if !ok {
		return false, ""
	}

	return true, fmt.Sprintf("IP blocked: %s (Blocked at: %s)",
		entry.Reason, entry.BlockedAt.Format(time.RFC3339))
}

// Block inserts or overwrites an entry and flushes it. A persist failure
// is logged but never fails the caller: the in-memory decision still
// governs the current request.
func (svc *BlocklistService) Block(address, reason string, requestCount int) {
	svc.mutex.Lock()
	svc.blocked[address] = model.BlockedIP{
		Reason:       reason,
		BlockedAt:    svc.now(),
		RequestCount: requestCount,
	}
	svc.persistLocked()
	svc.mutex.Unlock()

	log.Warnf("BLOCKED IP: %s - Reason: %s", address, reason)
}

// Unblock removes an entry. Unblocking an unknown address is not an error.
func (svc *BlocklistService) Unblock(address string) {
	svc.mutex.Lock()
	_, existed := svc.blocked[address]
	delete(svc.blocked, address)
	if existed {
		svc.persistLocked()
	}
	svc.mutex.Unlock()

	if existed {
		log.Infof("Unblocked IP: %s", address)
	}
}

// All returns a copy of the deny list for the stats surface.
func (svc *BlocklistService) All() map[string]model.BlockedIP {
	svc.mutex.RLock()
	defer svc.mutex.RUnlock()

	out := make(map[string]model.BlockedIP, len(svc.blocked))
	for addr, entry := range svc.blocked {
		out[addr] = entry
	}
	return out
}

// persistLocked flushes the map. Callers hold the write lock through the
// Save, so flushes land in mutation order and a concurrent mutation can
// never overwrite the file with an older state.
func (svc *BlocklistService) persistLocked() {
	if err := svc.store.Save(svc.blocked); err != nil {
		log.WithError(err).Error("Failed to persist blocklist")
	}
}
