package domain

import "time"

type ReviewStatus string

const (
	ReviewPending  ReviewStatus = ""
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// Review - отзыв пользователя об объекте, проходящий модерацию.
// UserID хранит email автора.
type Review struct {
	ID         string
	PropertyID string
	UserID     string
	Name       string
	Text       string
	Status     ReviewStatus
	CreatedAt  time.Time
}

func (s ReviewStatus) IsModerationTarget() bool {
	return s == ReviewApproved || s == ReviewRejected
}
