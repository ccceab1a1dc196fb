package domain

// UserStats summarizes a user's activity.
type UserStats struct {
	ReviewsCount       int     `json:"reviews_count"`
	ReadingListsCount  int     `json:"reading_lists_count"`
	TotalBooksInLists  int     `json:"total_books_in_lists"`
	AverageRatingGiven float64 `json:"average_rating_given"`
}
