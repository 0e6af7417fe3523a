package domain

import "time"

// WishlistItem - объект, отложенный пользователем. Пара (UserEmail, PropertyID) уникальна.
type WishlistItem struct {
	ID         string
	UserEmail  string
	PropertyID string
	CreatedAt  time.Time
}
