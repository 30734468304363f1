// internal/store/swipes.go
package store

import (
	"context"
	"sort"

	"tenderec/internal/common/logger"
	"tenderec/internal/common/storage"
	"tenderec/internal/models"
)

const (
	SwipeStoreName    = "swipes"
	SwipeStoreField   = "swiped"
	SwipeStoreVersion = 0
)

// SwipeStore keeps one swipe decision per tender.
type SwipeStore struct {
	*Store[models.SwipedTender]
}

func OpenSwipeStore(ctx context.Context, backend storage.Backend, key string, log logger.Logger) (*SwipeStore, error) {
	s, err := Open[models.SwipedTender](ctx, backend, Options[models.SwipedTender]{
		Key:     key,
		Field:   SwipeStoreField,
		Version: SwipeStoreVersion,
	}, log)
	if err != nil {
		return nil, err
	}
	return &SwipeStore{Store: s}, nil
}

// Swipe records a decision for tender, replacing any earlier one.
func (s *SwipeStore) Swipe(ctx context.Context, tender models.TenderRecommendation, direction models.SwipeDirection) error {
	return s.Set(ctx, tender.Key(), models.SwipedTender{
		TenderName: tender.Key(),
		Direction:  direction,
		Tender:     tender,
		Timestamp:  s.NowMillis(),
	})
}

func (s *SwipeStore) IsSwiped(tenderName string) bool {
	_, ok := s.Get(tenderName)
	return ok
}

func (s *SwipeStore) IsLiked(tenderName string) bool {
	rec, ok := s.Get(tenderName)
	return ok && rec.Direction == models.SwipeRight
}

func (s *SwipeStore) IsDisliked(tenderName string) bool {
	rec, ok := s.Get(tenderName)
	return ok && rec.Direction == models.SwipeLeft
}

// Liked returns right-swiped records, newest first.
func (s *SwipeStore) Liked() []models.SwipedTender {
	var liked []models.SwipedTender
	for _, rec := range s.Values() {
		if rec.Direction == models.SwipeRight {
			liked = append(liked, rec)
		}
	}
	sort.SliceStable(liked, func(i, j int) bool {
		return liked[i].Timestamp > liked[j].Timestamp
	})
	return liked
}
