package client

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"druckerei-client/api"
	"druckerei-client/cache"
	"druckerei-client/logger"
	"druckerei-client/models"
)

// SupplierSource feeds the supplier dropdown. Suppliers are read-only master
// data, so there is no mutation engine here; the long dropdown dedupe
// interval keeps refetches rare.
type SupplierSource struct {
	api    *api.Client
	store  *cache.Store[models.Supplier]
	policy cache.Policy
	log    zerolog.Logger
}

const supplierListKey = "suppliers:list"

func NewSupplierSource(apiClient *api.Client, policies cache.Policies) *SupplierSource {
	return &SupplierSource{
		api:    apiClient,
		store:  cache.NewStore[models.Supplier](nil),
		policy: policies.Dropdown,
		log:    logger.WithComponent("suppliers"),
	}
}

// Load returns the active suppliers sorted by name. A stale cached list is
// served when the refetch fails.
func (s *SupplierSource) Load(ctx context.Context) ([]models.Supplier, error) {
	if !s.store.Fresh(supplierListKey, s.policy) {
		resp, err := api.List[models.Supplier](ctx, s.api, "/api/suppliers", nil)
		if err != nil {
			if _, ok := s.store.Get(supplierListKey); !ok {
				return nil, err
			}
			s.log.Warn().Err(err).Msg("fetch failed, serving stale cache")
		} else {
			s.store.SetCollection(supplierListKey, resp.Data, resp.TotalCount)
		}
	}

	coll, _ := s.store.Get(supplierListKey)
	out := make([]models.Supplier, 0, len(coll.Items))
	for _, sup := range coll.Items {
		if sup.Active {
			out = append(out, sup)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Invalidate drops the cached list, forcing the next Load to refetch.
func (s *SupplierSource) Invalidate() {
	s.store.Invalidate(supplierListKey)
}
