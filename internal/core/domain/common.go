package domain

// UpdateResult - результат условного обновления в хранилище.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
}
