package services

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/rayansh0071505/portfolio-api/dto"
	"github.com/rayansh0071505/portfolio-api/model"
	"github.com/rayansh0071505/portfolio-api/shared"
	log "github.com/sirupsen/logrus"
)

// QuotaService caps calls to the primary model provider per calendar day.
// Exhaustion is never user-facing: the caller routes to the backup provider
// instead. The counter resets lazily the first time it is touched on a new
// date, not on a timer.
type QuotaService struct {
	context.DefaultService

	state model.QuotaState
	mutex sync.Mutex

	limit int
	store shared.KVStore
	now   func() time.Time
}

const QUOTA_SVC = "quota_svc"

const DefaultDailyRequestLimit = 500

func (svc QuotaService) Id() string {
	return QUOTA_SVC
}

func (svc *QuotaService) Configure(ctx *context.Context) error {
	path := os.Getenv("DAILY_QUOTA_FILE")
	if path == "" {
		path = "data/daily_quota.json"
	}
	svc.store = shared.NewFileStore(path)

	svc.limit = DefaultDailyRequestLimit
	if limitStr := os.Getenv("DAILY_REQUEST_LIMIT"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			svc.limit = limit
		}
	}

	svc.now = time.Now
	return svc.DefaultService.Configure(ctx)
}

func (svc *QuotaService) Start() error {
	var state model.QuotaState
	if err := svc.store.Load(&state); err != nil {
		log.WithError(err).Error("Failed to load daily quota, starting fresh")
	}

	today := svc.today()
	if state.Date != today {
		state = model.QuotaState{Date: today}
	}

	svc.state = state
	log.Infof("Daily quota loaded: %d/%d used for %s", state.Count, svc.limit, state.Date)
	return nil
}

// TryConsume takes one slot of today's quota. Returns false without
// incrementing once the limit is reached.
func (svc *QuotaService) TryConsume() bool {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	today := svc.today()
	if svc.state.Date != today {
		svc.state = model.QuotaState{Date: today}
		svc.persistLocked()
	}

	if svc.state.Count >= svc.limit {
		log.Errorf("DAILY QUOTA EXCEEDED: %d/%d", svc.state.Count, svc.limit)
		return false
	}

	svc.state.Count++
	svc.persistLocked()

	switch svc.state.Count {
	case 400, 450, 490:
		log.Warnf("Daily quota warning: %d/%d", svc.state.Count, svc.limit)
	}

	return true
}

func (svc *QuotaService) Stats() dto.QuotaStats {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	today := svc.today()
	if svc.state.Date != today {
		svc.state = model.QuotaState{Date: today}
	}

	return dto.QuotaStats{
		Used:  svc.state.Count,
		Limit: svc.limit,
		Date:  svc.state.Date,
	}
}

func (svc *QuotaService) today() string {
	return svc.now().Format("2006-01-02")
}

func (svc *QuotaService) persistLocked() {
	if err := svc.store.Save(svc.state); err != nil {
		log.WithError(err).Error("Failed to persist daily quota")
	}
}
