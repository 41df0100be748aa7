package repository

import (
	"sort"

	"servicemarket/internal/domain/entity"
)

// sortByCreation orders messages oldest first. Equal timestamps fall back to
// the message ID.
func sortByCreation(messages []*entity.Message) {
	sort.Slice(messages, func(i, j int) bool {
		a, b := messages[i], messages[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func sortNewestFirst[T any](items []*T, createdAt func(*T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		return createdAt(items[i]) > createdAt(items[j])
	})
}
