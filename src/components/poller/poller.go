package poller

import (
	"context"
	"log"
	"sync"

	"github.com/cryptiklemur/discordarr/src/arr"
	"github.com/cryptiklemur/discordarr/src/data"
	"github.com/cryptiklemur/discordarr/src/notify"
	"github.com/cryptiklemur/discordarr/src/overseerr"
)

// progressThreshold is the minimum percentage change before a cosmetic
// progress update goes out. Bounds Discord API churn.
const progressThreshold = 5.0

// ApprovalService is the slice of the Overseerr API the pollers consume.
type ApprovalService interface {
	ListRequests(ctx context.Context, take, skip int, filter, sort string) ([]overseerr.Request, error)
	GetRequest(ctx context.Context, requestID uint64) (*overseerr.Request, error)
	GetMovie(ctx context.Context, tmdbID uint64) (*overseerr.Movie, error)
	GetTv(ctx context.Context, tmdbID uint64) (*overseerr.Tv, error)
	GetUser(ctx context.Context, userID uint64) (*overseerr.User, error)
	GetUserNotificationSettings(ctx context.Context, userID uint64) (*overseerr.NotificationSettings, error)
}

// SeriesService exposes the Sonarr series statistics used for caught-up
// detection.
type SeriesService interface {
	GetSeriesByTvdbID(ctx context.Context, tvdbID uint64) (*arr.SonarrSeries, error)
}

// Poller reconciles the approval service, the two download queues and the
// stored request state into idempotent Discord updates. All working state
// lives on the instance so tests can construct isolated pollers.
type Poller struct {
	store      *data.Store
	approvals  ApprovalService
	queues     []arr.QueueService
	series     SeriesService
	dispatcher notify.Dispatcher
	logger     *log.Logger

	mu sync.Mutex
	// downloading holds the per-request set of in-flight queue item keys
	// (episode keys for tv) observed last cycle. Process-local working
	// state: a restart may re-fire one completion notice per request.
	downloading map[uint64]map[string]struct{}
}

func New(store *data.Store, approvals ApprovalService, queues []arr.QueueService, series SeriesService, dispatcher notify.Dispatcher, logger *log.Logger) *Poller {
	if logger == nil {
		logger = log.Default()
	}
	return &Poller{
		store:       store,
		approvals:   approvals,
		queues:      queues,
		series:      series,
		dispatcher:  dispatcher,
		logger:      logger,
		downloading: make(map[uint64]map[string]struct{}),
	}
}

func (p *Poller) downloadingSet(requestID uint64) map[string]struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.downloading[requestID]
}

func (p *Poller) setDownloading(requestID uint64, keys map[string]struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(keys) == 0 {
		delete(p.downloading, requestID)
		return
	}
	p.downloading[requestID] = keys
}

func (p *Poller) forgetDownloading(requestID uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.downloading, requestID)
}
