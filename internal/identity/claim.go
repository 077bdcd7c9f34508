package identity

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/meeplemeet/meeplemeet/internal/metrics"
)

// ErrUnknownPlayer is returned when a claim targets a player id the store
// does not hold.
var ErrUnknownPlayer = errors.New("unknown player")

// Store is the slice of the record store the claim operation needs.
type Store interface {
	PlayerExists(playerID int64) (bool, error)
	ClaimResults(playerID int64, resultIDs []int64) (int64, error)
}

// Service performs the one-way claim merge: re-pointing unregistered
// results to a registered player. Claims are serialized per target player
// so concurrent claims against the same id cannot interleave row updates.
type Service struct {
	store   Store
	metrics metrics.Metrics

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a claim service backed by the given store.
func NewService(store Store, metricsSvc metrics.Metrics) *Service {
	return &Service{
		store:   store,
		metrics: metricsSvc,
		locks:   make(map[int64]*sync.Mutex),
	}
}

func (s *Service) playerLock(playerID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[playerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[playerID] = l
	}
	return l
}

// Claim re-points every unregistered result among resultIDs to playerID
// and returns the number of rows changed. Rows that already belong to a
// registered player are skipped, not errors, so repeating a claim is a
// no-op that returns 0.
func (s *Service) Claim(playerID int64, resultIDs []int64) (int64, error) {
	if playerID <= 0 {
		return 0, fmt.Errorf("%w: id %d", ErrUnknownPlayer, playerID)
	}

	l := s.playerLock(playerID)
	l.Lock()
	defer l.Unlock()

	exists, err := s.store.PlayerExists(playerID)
	if err != nil {
		return 0, fmt.Errorf("failed to look up player %d: %w", playerID, err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: id %d", ErrUnknownPlayer, playerID)
	}

	changed, err := s.store.ClaimResults(playerID, resultIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to claim results for player %d: %w", playerID, err)
	}

	s.metrics.IncClaimsProcessed()
	s.metrics.AddResultsClaimed(float64(changed))
	log.Info("Claimed unregistered results", "playerID", playerID, "requested", len(resultIDs), "changed", changed)
	return changed, nil
}
