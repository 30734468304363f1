// internal/models/swipe.go
package models

import "fmt"

type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"  // reject
	SwipeRight SwipeDirection = "right" // like
)

func ParseSwipeDirection(s string) (SwipeDirection, error) {
	switch SwipeDirection(s) {
	case SwipeLeft, SwipeRight:
		return SwipeDirection(s), nil
	default:
		return "", fmt.Errorf("unknown swipe direction %q", s)
	}
}

// SwipedTender records a decision together with the tender as it was when swiped.
type SwipedTender struct {
	TenderName string               `json:"tender_name"`
	Direction  SwipeDirection       `json:"direction"`
	Tender     TenderRecommendation `json:"tender"`
	Timestamp  int64                `json:"timestamp"` // unix milliseconds
}
