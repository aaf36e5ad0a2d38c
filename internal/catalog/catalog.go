// Package catalog mirrors the item-shop storefront. The upstream catalog
// blob is deep and effectively schema-less, so extraction walks it with
// gjson instead of a typed decode; the result is a flat list of entries held
// in the same snapshot/refresh pattern as missions.
package catalog

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"stormwatch/internal/epic"
	"stormwatch/internal/snapshot"
)

// Entry is one purchasable storefront offer.
type Entry struct {
	OfferID    string  `json:"offerId"`
	DevName    string  `json:"devName"`
	Storefront string  `json:"storefront"`
	Price      int64   `json:"price"`
	Currency   string  `json:"currency"`
	Items      []Grant `json:"items"`
}

// Grant is one item granted by an offer.
type Grant struct {
	TemplateID string `json:"templateId"`
	Quantity   int64  `json:"quantity"`
}

// Extract flattens the raw storefront blob. A body that is not JSON or has
// no storefronts array is an error, so the retry loop treats it like any
// other failed fetch instead of installing an empty catalog. Within a valid
// body, offers missing an id are dropped and everything else degrades to
// zero values.
func Extract(raw []byte) ([]Entry, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("catalog: body is not valid JSON")
	}
	storefronts := gjson.GetBytes(raw, "storefronts")
	if !storefronts.IsArray() {
		return nil, fmt.Errorf("catalog: storefronts array missing")
	}

	out := []Entry{}
	storefronts.ForEach(func(_, storefront gjson.Result) bool {
		name := storefront.Get("name").String()
		storefront.Get("catalogEntries").ForEach(func(_, e gjson.Result) bool {
			offerID := e.Get("offerId").String()
			if offerID == "" {
				return true
			}
			entry := Entry{
				OfferID:    offerID,
				DevName:    e.Get("devName").String(),
				Storefront: name,
				Price:      e.Get("prices.0.finalPrice").Int(),
				Currency:   e.Get("prices.0.currencyType").String(),
				Items:      []Grant{},
			}
			e.Get("itemGrants").ForEach(func(_, g gjson.Result) bool {
				entry.Items = append(entry.Items, Grant{
					TemplateID: g.Get("templateId").String(),
					Quantity:   g.Get("quantity").Int(),
				})
				return true
			})
			out = append(out, entry)
			return true
		})
		return true
	})
	return out, nil
}

// Service is the catalog refresh instantiation.
type Service struct {
	client *epic.Client
	store  *snapshot.Store[Entry]
	log    *zap.Logger
}

// NewService builds the catalog service around an empty store.
func NewService(client *epic.Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client: client,
		store:  snapshot.NewStore[Entry](),
		log:    log,
	}
}

// Refresh fetches and extracts the storefront blob, retrying until a valid
// body arrives, and installs the result. A malformed body is a failed
// attempt like any other; the previous snapshot stays installed until a
// good one replaces it.
func (s *Service) Refresh(ctx context.Context) error {
	entries, ok := epic.Retry(ctx, s.client, "catalog", func(ctx context.Context) ([]Entry, error) {
		raw, err := s.client.FetchCatalog(ctx)
		if err != nil {
			return nil, err
		}
		return Extract(raw)
	})
	if !ok {
		return ctx.Err()
	}
	snap := s.store.Replace(entries)
	s.log.Info("catalog snapshot installed",
		zap.String("generation", snap.Generation),
		zap.Int("entries", len(entries)))
	return nil
}

// Current returns the current catalog snapshot's entries.
func (s *Service) Current() []Entry {
	return s.store.Items()
}

// ByStorefront filters the current snapshot to one storefront section.
func (s *Service) ByStorefront(name string) []Entry {
	return s.store.Filter(func(e Entry) bool { return e.Storefront == name })
}
