// Package client exposes the dashboard's data sources: each source wires
// the cache, the remote API, the filter pipeline and the pagination
// reconciler together behind a small Load + mutation-handler surface.
package client

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"druckerei-client/api"
	"druckerei-client/cache"
	"druckerei-client/filter"
	"druckerei-client/logger"
	"druckerei-client/mutation"
	"druckerei-client/paginate"
	"druckerei-client/utils"
)

// listParams is what a list cache key is derived from. Everything that
// changes the server response must appear here.
type listParams struct {
	Filters        filter.State `json:"filters"`
	ServerPage     int          `json:"server_page"`
	ServerPageSize int          `json:"server_page_size"`
}

// source is the shared core of the entity list sources. It fetches large
// server batches once, paginates client-side for responsiveness, and routes
// every cache write through the optimistic engine.
type source[T cache.Entity[T]] struct {
	api      *api.Client
	store    *cache.Store[T]
	engine   *mutation.Engine[T]
	policies cache.Policies
	pages    *paginate.PageState
	accessor filter.Accessor[T]
	inflight *Inflight
	notify   mutation.Notifier
	log      zerolog.Logger

	resource string
	basePath string
	statsOf  func([]T) Stats

	serverPageSize int

	mu      sync.Mutex
	lastKey string
}

func newSource[T cache.Entity[T]](apiClient *api.Client, notify mutation.Notifier,
	policies cache.Policies, resource, basePath string,
	normalize func(T) T, accessor filter.Accessor[T], statsOf func([]T) Stats) *source[T] {

	if notify == nil {
		notify = mutation.NopNotifier{}
	}
	store := cache.NewStore[T](normalize)
	displaySize := utils.ParseIntDefault(os.Getenv("DISPLAY_PAGE_SIZE"), 10)
	serverSize := utils.ParseIntDefault(os.Getenv("SERVER_PAGE_SIZE"), 200)
	if serverSize < displaySize {
		serverSize = displaySize
	}
	return &source[T]{
		api:            apiClient,
		store:          store,
		engine:         mutation.NewEngine(store, notify),
		policies:       policies,
		pages:          paginate.NewPageState(displaySize),
		accessor:       accessor,
		inflight:       NewInflight(),
		notify:         notify,
		log:            logger.WithComponent(resource),
		resource:       resource,
		basePath:       basePath,
		statsOf:        statsOf,
		serverPageSize: serverSize,
	}
}

// Load produces the view for one display page under the given filters. The
// matching server batch is fetched only when the cached copy is older than
// the policy's dedupe interval; on a fetch error a stale cached batch is
// served rather than failing the view.
func (s *source[T]) Load(ctx context.Context, filters filter.State, displayPage int) (View[T], error) {
	displaySize := s.pages.DisplaySize()
	serverPage := paginate.ServerPage(displayPage, displaySize, s.serverPageSize)

	key, err := cache.Key(s.resource+":list", listParams{
		Filters:        filters,
		ServerPage:     serverPage,
		ServerPageSize: s.serverPageSize,
	})
	if err != nil {
		return View[T]{}, err
	}

	stale := false
	if !s.store.Fresh(key, s.policies.List) {
		q := filters.QueryValues()
		q.Set("page", strconv.Itoa(serverPage))
		q.Set("page_size", strconv.Itoa(s.serverPageSize))

		resp, ferr := api.List[T](ctx, s.api, s.basePath, q)
		if ferr != nil {
			if _, ok := s.store.Get(key); !ok {
				return View[T]{}, ferr
			}
			s.log.Warn().Err(ferr).Msg("fetch failed, serving stale cache")
			stale = true
		} else {
			s.store.SetCollection(key, resp.Data, resp.TotalCount)
		}
	}

	s.mu.Lock()
	s.lastKey = key
	s.mu.Unlock()

	coll, _ := s.store.Get(key)
	fres := filter.Apply(coll.Items, filters, s.accessor)

	filtersActive := filters.Active() && !fres.FellBack
	effective := paginate.EffectiveCount(len(fres.Visible), coll.TotalCount, len(coll.Items), filtersActive)
	totalPages := paginate.TotalPages(effective, displaySize)

	s.pages.Set(displayPage, totalPages)
	s.pages.Clamp(totalPages)
	current := s.pages.Current()

	// The fetched batch starts at an offset of whole display pages; slice
	// relative to the batch, not to the global page number.
	localPage := current - (serverPage-1)*(s.serverPageSize/displaySize)
	visible := paginate.Slice(fres.Visible, localPage, displaySize)

	return View[T]{
		Visible:     visible,
		Counts:      fres.Counts,
		CurrentPage: current,
		TotalPages:  totalPages,
		TotalCount:  effective,
		FellBack:    fres.FellBack,
		Stale:       stale,
	}, nil
}

// listKey returns the cache key of the most recent Load, falling back to the
// unfiltered first batch. Optimistic creates insert their shadows there.
func (s *source[T]) listKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastKey != "" {
		return s.lastKey
	}
	key, err := cache.Key(s.resource+":list", listParams{
		Filters:        filter.State{},
		ServerPage:     1,
		ServerPageSize: s.serverPageSize,
	})
	if err != nil {
		return s.resource + ":list"
	}
	return key
}

// Invalidate drops the last loaded batch, forcing the next Load to refetch.
func (s *source[T]) Invalidate() {
	s.mu.Lock()
	key := s.lastKey
	s.mu.Unlock()
	if key != "" {
		s.store.Invalidate(key)
	}
}

// Detail fetches one entity by id under the detail policy. The single-entity
// collection it caches takes part in the store's fan-out, so an optimistic
// mutation updates the detail view and the list views in the same write.
func (s *source[T]) Detail(ctx context.Context, id string) (T, error) {
	var zero T
	key := s.resource + ":detail:" + id

	if !s.store.Fresh(key, s.policies.Detail) {
		got, err := api.Get[T](ctx, s.api, s.basePath+"/"+id)
		if err != nil {
			if _, ok := s.store.Get(key); !ok {
				return zero, err
			}
			s.log.Warn().Err(err).Str("id", id).Msg("detail fetch failed, serving stale cache")
		} else {
			s.store.SetCollection(key, []T{got}, 1)
		}
	}

	coll, ok := s.store.Get(key)
	if !ok || len(coll.Items) == 0 {
		return zero, mutation.ErrNotCached
	}
	return coll.Items[0].Clone(), nil
}

// Stats summarizes the unfiltered collection under the stats policy, which
// refreshes independently of the list views.
func (s *source[T]) Stats(ctx context.Context) (Stats, error) {
	key := s.resource + ":stats"

	if !s.store.Fresh(key, s.policies.Stats) {
		q := url.Values{}
		q.Set("page", "1")
		q.Set("page_size", strconv.Itoa(s.serverPageSize))

		resp, err := api.List[T](ctx, s.api, s.basePath, q)
		if err != nil {
			if _, ok := s.store.Get(key); !ok {
				return Stats{}, err
			}
			s.log.Warn().Err(err).Msg("stats fetch failed, serving stale cache")
		} else {
			s.store.SetCollection(key, resp.Data, resp.TotalCount)
		}
	}

	coll, _ := s.store.Get(key)
	return s.statsOf(coll.Items), nil
}

// InflightState exposes the per-kind in-flight flags for rendering.
func (s *source[T]) InflightState() *Inflight { return s.inflight }
