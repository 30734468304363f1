// internal/store/feedback.go
package store

import (
	"context"

	"tenderec/internal/common/logger"
	"tenderec/internal/common/storage"
	"tenderec/internal/models"
)

const (
	FeedbackStoreName    = "feedback"
	FeedbackStoreField   = "feedbacks"
	FeedbackStoreVersion = 0
)

// FeedbackStore keeps one local opinion per tender.
type FeedbackStore struct {
	*Store[models.TenderFeedback]
}

func OpenFeedbackStore(ctx context.Context, backend storage.Backend, key string, log logger.Logger) (*FeedbackStore, error) {
	s, err := Open[models.TenderFeedback](ctx, backend, Options[models.TenderFeedback]{
		Key:     key,
		Field:   FeedbackStoreField,
		Version: FeedbackStoreVersion,
	}, log)
	if err != nil {
		return nil, err
	}
	return &FeedbackStore{Store: s}, nil
}

// SetFeedback replaces the record for tenderKey and stamps it with the current
// time. NoOpinion keeps the record but clears the opinion.
func (f *FeedbackStore) SetFeedback(ctx context.Context, tenderKey string, opinion models.Opinion) error {
	return f.Set(ctx, tenderKey, models.TenderFeedback{
		TenderKey: tenderKey,
		Feedback:  opinion,
		Timestamp: f.NowMillis(),
	})
}

// GetFeedback returns the opinion for tenderKey, NoOpinion when there is none.
func (f *FeedbackStore) GetFeedback(tenderKey string) models.Opinion {
	rec, ok := f.Get(tenderKey)
	if !ok {
		return models.NoOpinion
	}
	return rec.Feedback
}

// Opinions is the snapshot the re-ranker consumes.
func (f *FeedbackStore) Opinions() map[string]models.Opinion {
	snapshot := f.Snapshot()
	out := make(map[string]models.Opinion, len(snapshot))
	for k, rec := range snapshot {
		out[k] = rec.Feedback
	}
	return out
}
