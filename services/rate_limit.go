package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/rayansh0071505/portfolio-api/model"
	log "github.com/sirupsen/logrus"
)

// RateLimitService keeps per-address request counters across three fixed
// windows. Counters are process-local and reset on restart; only the block
// decisions they produce are durable (see BlocklistService).
type RateLimitService struct {
	context.DefaultService

	windows map[string]*model.ClientWindows
	mutex   sync.Mutex

	maxPerMinute int
	maxPerHour   int
	maxPerDay    int

	now func() time.Time
}

// BlockInstruction tells the caller to insert the address into the deny
// list. Emitted only on a day-bound violation.
type BlockInstruction struct {
	Address      string
	Reason       string
	RequestCount int
}

const RATE_LIMIT_SVC = "rate_limit_svc"

const (
	MaxRequestsPerMinute = 10
	MaxRequestsPerHour   = 50
	MaxRequestsPerDay    = 60
)

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.windows = make(map[string]*model.ClientWindows)
	svc.maxPerMinute = MaxRequestsPerMinute
	svc.maxPerHour = MaxRequestsPerHour
	svc.maxPerDay = MaxRequestsPerDay
	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	return nil
}

// Allow runs the minute, hour and day checks for one address. The increment
// is all-or-nothing: a request that fails any bound leaves every counter it
// already passed untouched. A day-bound violation is the one exception: it
// increments the day counter and returns a BlockInstruction carrying the
// count that triggered it.
//
// Windows are fixed, not sliding: a counter resets entirely when its window
// ages out, so a burst straddling the boundary can admit up to twice the
// nominal rate.
func (svc *RateLimitService) Allow(address string) (bool, string, *BlockInstruction) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	now := svc.now()

	w, ok := svc.windows[address]
	if !ok {
		w = &model.ClientWindows{
			Minute: model.WindowCounter{WindowStart: now},
			Hour:   model.WindowCounter{WindowStart: now},
			Day:    model.WindowCounter{WindowStart: now},
		}
		svc.windows[address] = w
	}

	rollWindow(&w.Minute, now, time.Minute)
	rollWindow(&w.Hour, now, time.Hour)
	rollWindow(&w.Day, now, 24*time.Hour)

	if w.Minute.Count >= svc.maxPerMinute {
		log.Warnf("Rate limit (minute) exceeded for %s (%d/%d)", address, w.Minute.Count, svc.maxPerMinute)
		return false, fmt.Sprintf("Rate limit exceeded: Maximum %d requests per minute", svc.maxPerMinute), nil
	}

	if w.Hour.Count >= svc.maxPerHour {
		log.Warnf("Rate limit (hour) exceeded for %s (%d/%d)", address, w.Hour.Count, svc.maxPerHour)
		return false, fmt.Sprintf("Rate limit exceeded: Maximum %d requests per hour", svc.maxPerHour), nil
	}

	if w.Day.Count >= svc.maxPerDay {
		w.Day.Count++
		log.Warnf("Daily limit exceeded for %s (%d/%d)", address, w.Day.Count, svc.maxPerDay)
		return false,
			fmt.Sprintf("Daily limit exceeded: Maximum %d requests per day. IP has been blocked.", svc.maxPerDay),
			&BlockInstruction{
				Address:      address,
				Reason:       fmt.Sprintf("Exceeded daily limit: %d requests in 24 hours", w.Day.Count),
				RequestCount: w.Day.Count,
			}
	}

	w.Minute.Count++
	w.Hour.Count++
	w.Day.Count++

	return true, "", nil
}

// DailyCount reports the current day-window count for an address.
func (svc *RateLimitService) DailyCount(address string) int {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	w, ok := svc.windows[address]
	if !ok {
		return 0
	}

	rollWindow(&w.Day, svc.now(), 24*time.Hour)
	return w.Day.Count
}

// Reset drops all counters for an address. Used alongside unblock so a
// forgiven address is not immediately re-blocked by its stale day count.
func (svc *RateLimitService) Reset(address string) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	delete(svc.windows, address)
}

// TrackedAddresses reports how many addresses currently hold counters.
func (svc *RateLimitService) TrackedAddresses() int {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	return len(svc.windows)
}

func rollWindow(w *model.WindowCounter, now time.Time, size time.Duration) {
	if now.Sub(w.WindowStart) > size {
		w.Count = 0
		w.WindowStart = now
	}
}
