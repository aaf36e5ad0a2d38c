// Package missions is the mission-alert instantiation of the refresh
// pattern: fetch the world-state document, classify it, install the
// snapshot, and on scheduled refreshes push a digest of notable missions to
// configured destinations.
package missions

import (
	"context"

	"go.uber.org/zap"

	"stormwatch/internal/epic"
	"stormwatch/internal/gamedata"
	"stormwatch/internal/notify"
	"stormwatch/internal/snapshot"
	"stormwatch/internal/worldinfo"
)

// DestinationSource supplies the configured notification destinations.
// Implemented by the sqlite store.
type DestinationSource interface {
	AlertChannels() ([]notify.Destination, error)
}

// Service owns the mission snapshot and its refresh/notify steps.
type Service struct {
	client   *epic.Client
	tables   *gamedata.Tables
	store    *snapshot.MissionStore
	notifier *notify.Notifier
	dests    DestinationSource
	log      *zap.Logger
}

// New builds the mission service. notifier and dests may be nil, in which
// case scheduled refreshes install snapshots but notify nobody.
func New(client *epic.Client, tables *gamedata.Tables, notifier *notify.Notifier, dests DestinationSource, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client:   client,
		tables:   tables,
		store:    snapshot.NewMissionStore(),
		notifier: notifier,
		dests:    dests,
		log:      log,
	}
}

// Store exposes the snapshot store to read-only consumers (the HTTP API).
func (s *Service) Store() *snapshot.MissionStore {
	return s.store
}

// Refresh runs one fetch+classify+install cycle. The fetch retries
// indefinitely; the only failure mode is context cancellation.
func (s *Service) Refresh(ctx context.Context) error {
	doc := s.client.FetchWorldInfoRetry(ctx)
	if doc == nil {
		return ctx.Err()
	}

	classified := worldinfo.Classify(doc, s.tables, s.log)
	snap := s.store.Replace(classified)
	s.log.Info("mission snapshot installed",
		zap.String("generation", snap.Generation),
		zap.Int("missions", len(classified)))
	return nil
}

// NotifyScheduled pushes the digest of notable missions in the current
// snapshot. Called by the engine only after scheduled refreshes; a snapshot
// with no notable missions notifies nobody.
func (s *Service) NotifyScheduled(ctx context.Context) {
	if s.notifier == nil || s.dests == nil {
		return
	}

	notable := s.store.Notable()
	if len(notable) == 0 {
		return
	}

	dests, err := s.dests.AlertChannels()
	if err != nil {
		s.log.Error("loading notification destinations failed", zap.Error(err))
		return
	}
	s.notifier.Notify(ctx, dests, notable)
}
