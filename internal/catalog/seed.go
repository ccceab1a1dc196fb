package catalog

import (
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

type sampleBook struct {
	id            string
	title         string
	author        string
	genres        []string
	moods         []string
	description   string
	averageRating float64
	totalRatings  int
	price         float64
	publishedYear int
}

var sampleBooks = []sampleBook{
	{
		id:            "book-seed-midnight-library",
		title:         "The Midnight Library",
		author:        "Matt Haig",
		genres:        []string{"Fiction", "Philosophy", "Contemporary"},
		moods:         []string{"curious", "contemplative", "hopeful"},
		description:   "Between life and death there is a library, and within that library, the shelves go on forever. Every book provides a chance to try another life you could have lived.",
		averageRating: 4.2,
		totalRatings:  1250,
		price:         12.99,
		publishedYear: 2020,
	},
	{
		id:            "book-seed-dune",
		title:         "Dune",
		author:        "Frank Herbert",
		genres:        []string{"Science Fiction", "Adventure", "Epic"},
		moods:         []string{"adventurous", "epic", "mysterious"},
		description:   "Set on the desert planet Arrakis, Dune is the story of the boy Paul Atreides, heir to a noble family tasked with ruling an inhospitable world.",
		averageRating: 4.5,
		totalRatings:  2100,
		price:         14.99,
		publishedYear: 1965,
	},
	{
		id:            "book-seed-evelyn-hugo",
		title:         "The Seven Husbands of Evelyn Hugo",
		author:        "Taylor Jenkins Reid",
		genres:        []string{"Romance", "Historical Fiction", "Drama"},
		moods:         []string{"romantic", "dramatic", "nostalgic"},
		description:   "Reclusive Hollywood icon Evelyn Hugo finally decides to tell her life story, but only to unknown journalist Monique Grant.",
		averageRating: 4.6,
		totalRatings:  1800,
		price:         13.99,
		publishedYear: 2017,
	},
	{
		id:            "book-seed-atomic-habits",
		title:         "Atomic Habits",
		author:        "James Clear",
		genres:        []string{"Self-Help", "Psychology", "Productivity"},
		moods:         []string{"motivated", "focused", "optimistic"},
		description:   "An Easy & Proven Way to Build Good Habits & Break Bad Ones. Tiny changes, remarkable results.",
		averageRating: 4.4,
		totalRatings:  3200,
		price:         16.99,
		publishedYear: 2018,
	},
	{
		id:            "book-seed-silent-patient",
		title:         "The Silent Patient",
		author:        "Alex Michaelides",
		genres:        []string{"Thriller", "Mystery", "Psychological"},
		moods:         []string{"suspenseful", "dark", "intriguing"},
		description:   "Alicia Berenson's life is seemingly perfect. Then one evening she shoots her husband and never speaks again.",
		averageRating: 4.1,
		totalRatings:  1600,
		price:         11.99,
		publishedYear: 2019,
	},
	{
		id:            "book-seed-educated",
		title:         "Educated",
		author:        "Tara Westover",
		genres:        []string{"Memoir", "Biography", "Education"},
		moods:         []string{"inspiring", "emotional", "enlightening"},
		description:   "A memoir about a young girl who, kept out of school, leaves her survivalist family and goes on to earn a PhD from Cambridge University.",
		averageRating: 4.3,
		totalRatings:  2400,
		price:         15.99,
		publishedYear: 2018,
	},
}

// SampleBooks returns fresh copies of the sample catalog stamped from now,
// a millisecond apart so catalog order matches the listing. IDs are stable so
// inserting the sample twice writes nothing the second time. The sample
// carries the ratings the titles hold in the wider world; the first review
// written for one of them replaces that aggregate with BookBuddy's own.
func SampleBooks(now time.Time) []*domain.Book {
	out := make([]*domain.Book, len(sampleBooks))
	for i, s := range sampleBooks {
		price := s.price
		created := now.Add(time.Duration(i) * time.Millisecond)
		out[i] = &domain.Book{
			ID:            s.id,
			Title:         s.title,
			Author:        s.author,
			Genres:        append([]string(nil), s.genres...),
			Moods:         append([]string(nil), s.moods...),
			Description:   s.description,
			PublishedYear: s.publishedYear,
			Price:         &price,
			AverageRating: s.averageRating,
			TotalRatings:  s.totalRatings,
			CreatedAt:     created,
			UpdatedAt:     created,
		}
	}
	return out
}
