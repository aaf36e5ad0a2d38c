// Package cosmetics mirrors the public cosmetics list: same snapshot and
// refresh pattern as missions and catalog, with a name-search view for
// command handlers.
package cosmetics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"stormwatch/internal/epic"
	"stormwatch/internal/snapshot"
)

// Cosmetic is one cosmetic item.
type Cosmetic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      string `json:"rarity"`
	Type        string `json:"type"`
}

// listResponse matches the upstream response envelope.
type listResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Description string `json:"description"`
		Rarity      struct {
			Value string `json:"value"`
		} `json:"rarity"`
		Type struct {
			Value string `json:"value"`
		} `json:"type"`
	} `json:"data"`
}

// Parse decodes the cosmetics list body into flat records.
func Parse(raw []byte) ([]Cosmetic, error) {
	var resp listResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("cosmetics: decode: %w", err)
	}
	out := make([]Cosmetic, 0, len(resp.Data))
	for _, d := range resp.Data {
		if d.ID == "" {
			continue
		}
		out = append(out, Cosmetic{
			ID:          d.ID,
			Name:        d.Name,
			Description: d.Description,
			Rarity:      d.Rarity.Value,
			Type:        d.Type.Value,
		})
	}
	return out, nil
}

// Service is the cosmetics refresh instantiation.
type Service struct {
	client *epic.Client
	store  *snapshot.Store[Cosmetic]
	log    *zap.Logger
}

// NewService builds the cosmetics service around an empty store.
func NewService(client *epic.Client, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client: client,
		store:  snapshot.NewStore[Cosmetic](),
		log:    log,
	}
}

// Refresh fetches and parses the cosmetics list, retrying until a valid
// body arrives, and installs the records. A malformed body is a failed
// attempt like any other; the previous snapshot stays installed until a
// good one replaces it.
func (s *Service) Refresh(ctx context.Context) error {
	items, ok := epic.Retry(ctx, s.client, "cosmetics", func(ctx context.Context) ([]Cosmetic, error) {
		raw, err := s.client.FetchCosmetics(ctx)
		if err != nil {
			return nil, err
		}
		return Parse(raw)
	})
	if !ok {
		return ctx.Err()
	}
	snap := s.store.Replace(items)
	s.log.Info("cosmetics snapshot installed",
		zap.String("generation", snap.Generation),
		zap.Int("items", len(items)))
	return nil
}

// Current returns the current cosmetics snapshot.
func (s *Service) Current() []Cosmetic {
	return s.store.Items()
}

// Search returns cosmetics whose name contains the query,
// case-insensitively.
func (s *Service) Search(query string) []Cosmetic {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Cosmetic{}
	}
	return s.store.Filter(func(c Cosmetic) bool {
		return strings.Contains(strings.ToLower(c.Name), q)
	})
}
