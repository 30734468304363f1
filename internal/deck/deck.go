// internal/deck/deck.go
package deck

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	apperrors "tenderec/internal/common/errors"
	"tenderec/internal/common/logger"
	"tenderec/internal/common/observability"
	"tenderec/internal/models"
	"tenderec/internal/store"
	"tenderec/internal/swipe"
)

// Tiers are fetched in order; NO_MATCH tenders never enter the deck.
var Tiers = []models.MatchLevel{models.PerfectMatch, models.PartialMatch, models.DontKnow}

// MaxVisible is how many cards are stacked: the top one and a preview.
const MaxVisible = 2

// RejectionPrefix is prepended to the comment sent for a rejected tender.
const RejectionPrefix = "Odrzucony przetarg"

var (
	ErrDeckEmpty        = errors.New("no tender left in this tier")
	ErrRejectionPending = errors.New("a rejection is waiting for a comment")
	ErrNoRejection      = errors.New("no rejection is pending")
	ErrTierNotExhausted = errors.New("current tier still has tenders")
	ErrLastTier         = errors.New("already at the last tier")
)

// Source supplies recommendations and accepts rejection comments.
type Source interface {
	Recommendations(ctx context.Context, params models.RecommendationsParams) (*models.RecommendationsResponse, error)
	CreateFeedback(ctx context.Context, company, comment string) (*models.Feedback, error)
}

// Deck is the swipe session for one company.
type Deck struct {
	mu      sync.Mutex
	source  Source
	swipes  *store.SwipeStore
	company string
	tier    int
	all     []models.TenderRecommendation
	loaded  bool
	pending *models.TenderRecommendation
	obs     *observability.Observability
	logger  logger.Logger
}

func New(source Source, swipes *store.SwipeStore, company string, obs *observability.Observability, log logger.Logger) *Deck {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Deck{
		source:  source,
		swipes:  swipes,
		company: company,
		obs:     obs,
		logger:  log.Named("deck").WithFields(map[string]interface{}{"company": company}),
	}
}

func (d *Deck) Company() string {
	return d.company
}

// Tier is the match level currently being shown.
func (d *Deck) Tier() models.MatchLevel {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Tiers[d.tier]
}

func (d *Deck) HasNextTier() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tier < len(Tiers)-1
}

// NextTier is the tier AdvanceTier would move to.
func (d *Deck) NextTier() (models.MatchLevel, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tier >= len(Tiers)-1 {
		return "", false
	}
	return Tiers[d.tier+1], true
}

// Load fetches the current tier.
func (d *Deck) Load(ctx context.Context) error {
	tier := d.Tier()
	resp, err := d.source.Recommendations(ctx, models.RecommendationsParams{
		Company:   d.company,
		NameMatch: tier,
	})
	if err != nil {
		return err
	}

	var cards []models.TenderRecommendation
	for _, r := range resp.Recommendations {
		if r.NameMatch == tier {
			cards = append(cards, r)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if Tiers[d.tier] != tier {
		return nil
	}
	d.all = cards
	d.loaded = true
	d.logger.Debug("Deck loaded", map[string]interface{}{
		"tier":    string(tier),
		"fetched": len(resp.Recommendations),
		"cards":   len(cards),
	})
	return nil
}

func (d *Deck) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded
}

// Unswiped is the tier's list in upstream order without already swiped tenders.
func (d *Deck) Unswiped() []models.TenderRecommendation {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unswipedLocked()
}

func (d *Deck) unswipedLocked() []models.TenderRecommendation {
	out := make([]models.TenderRecommendation, 0, len(d.all))
	for _, r := range d.all {
		if !d.swipes.IsSwiped(r.Key()) {
			out = append(out, r)
		}
	}
	return out
}

// Visible returns at most MaxVisible cards; the first one is interactive.
func (d *Deck) Visible() []models.TenderRecommendation {
	unswiped := d.Unswiped()
	if len(unswiped) > MaxVisible {
		unswiped = unswiped[:MaxVisible]
	}
	return unswiped
}

func (d *Deck) Top() (models.TenderRecommendation, bool) {
	visible := d.Visible()
	if len(visible) == 0 {
		return models.TenderRecommendation{}, false
	}
	return visible[0], true
}

// Remaining returns the unswiped and total counts for the current tier.
func (d *Deck) Remaining() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.unswipedLocked()), len(d.all)
}

// Exhausted reports whether every card of the loaded tier has been swiped.
func (d *Deck) Exhausted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.loaded && len(d.unswipedLocked()) == 0
}

// AdvanceTier moves to the next tier once the current one is exhausted and loads it.
func (d *Deck) AdvanceTier(ctx context.Context) error {
	d.mu.Lock()
	if d.tier >= len(Tiers)-1 {
		d.mu.Unlock()
		return ErrLastTier
	}
	if len(d.unswipedLocked()) > 0 {
		d.mu.Unlock()
		return ErrTierNotExhausted
	}
	d.tier++
	d.all = nil
	d.loaded = false
	tier := Tiers[d.tier]
	d.mu.Unlock()

	d.logger.Info("Advancing tier", map[string]interface{}{"tier": string(tier)})
	return d.Load(ctx)
}

// Swipe applies a decision to the top card. A right swipe is recorded at once;
// a left swipe opens a pending rejection that must be resolved with
// SubmitRejection or DismissRejection.
func (d *Deck) Swipe(ctx context.Context, direction models.SwipeDirection) error {
	d.mu.Lock()
	if d.pending != nil {
		d.mu.Unlock()
		return ErrRejectionPending
	}
	unswiped := d.unswipedLocked()
	if len(unswiped) == 0 {
		d.mu.Unlock()
		return ErrDeckEmpty
	}
	top := unswiped[0]
	tier := Tiers[d.tier]

	if direction == models.SwipeLeft {
		d.pending = &top
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	return d.commit(ctx, top, direction, tier)
}

func (d *Deck) commit(ctx context.Context, tender models.TenderRecommendation, direction models.SwipeDirection, tier models.MatchLevel) error {
	err := d.swipes.Swipe(ctx, tender, direction)
	d.obs.RecordSwipe(ctx, string(direction), string(tier))
	d.logger.Info("Swipe recorded", map[string]interface{}{
		"tender":    tender.Key(),
		"direction": string(direction),
		"tier":      string(tier),
	})
	return err
}

// Pending returns the tender awaiting a rejection comment.
func (d *Deck) Pending() (models.TenderRecommendation, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return models.TenderRecommendation{}, false
	}
	return *d.pending, true
}

func (d *Deck) takePending() (models.TenderRecommendation, models.MatchLevel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return models.TenderRecommendation{}, "", ErrNoRejection
	}
	t := *d.pending
	d.pending = nil
	return t, Tiers[d.tier], nil
}

// RejectionComment formats the comment sent for a rejected tender.
func RejectionComment(tenderName, comment string) string {
	return fmt.Sprintf("[%s: %s] %s", RejectionPrefix, tenderName, strings.TrimSpace(comment))
}

// SubmitRejection sends comment for the pending rejection, if it is not blank,
// then records the left swipe. The swipe is recorded even when sending fails;
// that failure is returned.
func (d *Deck) SubmitRejection(ctx context.Context, comment string) error {
	tender, tier, err := d.takePending()
	if err != nil {
		return err
	}

	var sendErr error
	outcome := "skipped"
	if strings.TrimSpace(comment) != "" {
		_, sendErr = d.source.CreateFeedback(ctx, d.company, RejectionComment(tender.Key(), comment))
		outcome = "commented"
		if sendErr != nil && !apperrors.IsValidationSkip(sendErr) {
			outcome = "comment_failed"
			d.logger.Warn("Rejection comment was not sent", map[string]interface{}{
				"tender": tender.Key(),
				"error":  sendErr.Error(),
			})
		}
	}
	d.obs.RecordRejection(ctx, outcome)

	if err := d.commit(ctx, tender, models.SwipeLeft, tier); err != nil {
		return err
	}
	if apperrors.IsValidationSkip(sendErr) {
		return nil
	}
	return sendErr
}

// DismissRejection records the pending left swipe without a comment.
func (d *Deck) DismissRejection(ctx context.Context) error {
	return d.SubmitRejection(ctx, "")
}

// StartOver forgets every swipe and returns to the first tier.
func (d *Deck) StartOver(ctx context.Context) error {
	clearErr := d.swipes.Clear(ctx)
	d.mu.Lock()
	d.tier = 0
	d.all = nil
	d.loaded = false
	d.pending = nil
	d.mu.Unlock()

	d.logger.Info("Deck reset", nil)
	if err := d.Load(ctx); err != nil {
		return err
	}
	return clearErr
}

// Liked lists right-swiped tenders, newest first.
func (d *Deck) Liked() []models.SwipedTender {
	return d.swipes.Liked()
}

// NewCard returns a gesture driver for the current top card. Its commit feeds
// Swipe; a left commit therefore opens a pending rejection.
func (d *Deck) NewCard(cfg swipe.Config, onResult func(error)) *swipe.Card {
	return swipe.NewCard(cfg, true, func(direction models.SwipeDirection) {
		err := d.Swipe(context.Background(), direction)
		if onResult != nil {
			onResult(err)
		}
	})
}
