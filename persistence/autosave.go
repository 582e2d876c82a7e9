package persistence

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

// ErrBusy is returned when a save or load is requested while another
// snapshot operation is in flight. The request is dropped, not queued.
var ErrBusy = eris.New("snapshot operation already in flight")

// StateSource is the engine surface the saver works against. Capture and
// restore synchronize internally so they never observe a tick in progress.
type StateSource interface {
	CaptureSnapshot() *Snapshot
	RestoreSnapshot(*Snapshot) error
	ResetToDefaults()
}

// Saver runs periodic autosaves and serves manual save/load triggers.
// Overlapping requests are serialized by a busy flag: the losing request is
// dropped with a warning, never interleaved.
type Saver struct {
	store    *SnapshotStore
	src      StateSource
	interval time.Duration
	busy     atomic.Bool
}

// NewSaver builds a saver. interval <= 0 disables the autosave ticker.
func NewSaver(store *SnapshotStore, src StateSource, interval time.Duration) *Saver {
	return &Saver{store: store, src: src, interval: interval}
}

// Run drives the autosave ticker until ctx is canceled.
func (s *Saver) Run(ctx context.Context) {
	if s.interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SaveNow(ctx); err != nil && !eris.Is(err, ErrBusy) {
				log.Warn().Err(err).Msg("autosave failed; previous snapshot kept")
			}
		}
	}
}

// SaveNow captures and stores a snapshot. A failure leaves the previously
// stored state untouched.
func (s *Saver) SaveNow(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		log.Warn().Msg("snapshot save dropped: operation already in flight")
		return ErrBusy
	}
	defer s.busy.Store(false)

	snap := s.src.CaptureSnapshot()
	if err := s.store.Save(ctx, snap); err != nil {
		return err
	}
	log.Info().Str("save_id", snap.SaveID).Int("entities", len(snap.Entities)).
		Msg("snapshot saved")
	return nil
}

// LoadNow fetches the stored snapshot and restores the engine from it.
// ErrNoSnapshot leaves the current state untouched; any other failure
// resets the simulation to fresh defaults rather than leaving it
// half-restored.
func (s *Saver) LoadNow(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		log.Warn().Msg("snapshot load dropped: operation already in flight")
		return ErrBusy
	}
	defer s.busy.Store(false)

	snap, err := s.store.Load(ctx)
	if eris.Is(err, ErrNoSnapshot) {
		return err
	}
	if err != nil {
		log.Warn().Err(err).Msg("snapshot load failed; resetting to defaults")
		s.src.ResetToDefaults()
		return err
	}

	if err := s.src.RestoreSnapshot(snap); err != nil {
		log.Warn().Err(err).Msg("snapshot restore failed; resetting to defaults")
		s.src.ResetToDefaults()
		return err
	}
	log.Info().Str("save_id", snap.SaveID).Int("entities", len(snap.Entities)).
		Msg("snapshot restored")
	return nil
}
