package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

func book(id, title string, rating float64) *domain.Book {
	return &domain.Book{
		ID:            id,
		Title:         title,
		Author:        "Author " + id,
		Description:   "About " + title,
		Genres:        []string{"Fiction"},
		Moods:         []string{"thoughtful"},
		AverageRating: rating,
	}
}

func ids(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func fiveCandidates() []*domain.Book {
	return []*domain.Book{
		book("b1", "The Midnight Library", 4.2),
		book("b2", "Dune", 4.5),
		book("b3", "Educated", 4.4),
		book("b4", "The Silent Patient", 3.9),
		book("b5", "Atomic Habits", 4.7),
	}
}

func TestRankByLines(t *testing.T) {
	candidates := fiveCandidates()

	tests := []struct {
		name  string
		reply string
		limit int
		want  []string
	}{
		{
			name:  "reply order wins",
			reply: "1. Dune\n2. Atomic Habits\n3. Educated",
			limit: 5,
			want:  []string{"b2", "b5", "b3", "b1", "b4"},
		},
		{
			name:  "no recognizable titles keeps candidate order",
			reply: "I think you should read something else entirely.",
			limit: 5,
			want:  []string{"b1", "b2", "b3", "b4", "b5"},
		},
		{
			name:  "no recognizable titles truncated to limit",
			reply: "nothing useful",
			limit: 3,
			want:  []string{"b1", "b2", "b3"},
		},
		{
			name:  "matching is case sensitive",
			reply: "dune\nATOMIC HABITS\nEducated",
			limit: 2,
			want:  []string{"b3", "b1"},
		},
		{
			name:  "repeated titles are not duplicated",
			reply: "Dune\nDune again\n\n   \nThe Silent Patient",
			limit: 5,
			want:  []string{"b2", "b4", "b1", "b3", "b5"},
		},
		{
			name:  "empty reply",
			reply: "",
			limit: 2,
			want:  []string{"b1", "b2"},
		},
		{
			name:  "windows line endings",
			reply: "Educated\r\nDune\r\n",
			limit: 2,
			want:  []string{"b3", "b2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankByLines(candidates, tt.reply, tt.limit)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestRankByLines_EmptyInputs(t *testing.T) {
	assert.Empty(t, RankByLines(nil, "Dune", 5))
	assert.Empty(t, RankByLines(fiveCandidates(), "Dune", 0))
}

func TestMatchMentions(t *testing.T) {
	candidates := fiveCandidates()

	got := MatchMentions(candidates, "You'd love ATOMIC habits, and also dune. Skip the rest.", 6)
	assert.Equal(t, []string{"b2", "b5"}, ids(got), "candidate order, not reply order")

	got = MatchMentions(candidates, "", 6)
	assert.Empty(t, got)

	got = MatchMentions(candidates, "the midnight library; dune; educated", 2)
	assert.Equal(t, []string{"b1", "b2"}, ids(got))
}

func TestMatchMentions_UnicodeFolding(t *testing.T) {
	candidates := []*domain.Book{
		book("s1", "Straße der Sterne", 4.0),
		book("s2", "Café Society", 4.0),
	}

	// Decomposed e + combining acute must match the precomposed title.
	got := MatchMentions(candidates, "try STRASSE DER STERNE or CAFE\u0301 society", 6)
	assert.Equal(t, []string{"s1", "s2"}, ids(got))
}

func TestBackfillPopular(t *testing.T) {
	candidates := fiveCandidates()

	t.Run("enough matches untouched", func(t *testing.T) {
		selected := candidates[:3]
		got := BackfillPopular(selected, candidates, 4.0, 3, 6)
		assert.Equal(t, []string{"b1", "b2", "b3"}, ids(got))
	})

	t.Run("short selection gets popular books without duplicates", func(t *testing.T) {
		selected := []*domain.Book{candidates[1]}
		got := BackfillPopular(selected, candidates, 4.0, 3, 6)
		assert.Equal(t, []string{"b2", "b1", "b3", "b5"}, ids(got))
	})

	t.Run("truncated to limit", func(t *testing.T) {
		got := BackfillPopular(nil, candidates, 4.0, 3, 2)
		assert.Equal(t, []string{"b1", "b2"}, ids(got))
	})

	t.Run("does not alias the selection", func(t *testing.T) {
		selected := make([]*domain.Book, 1, 10)
		selected[0] = candidates[3]
		_ = BackfillPopular(selected, candidates, 4.0, 3, 6)
		assert.Len(t, selected, 1)
	})
}

func TestDedupe(t *testing.T) {
	c := fiveCandidates()
	got := Dedupe([]*domain.Book{c[0], c[1], c[0], c[2], c[1]})
	assert.Equal(t, []string{"b1", "b2", "b3"}, ids(got))
}

func TestAnalyzePlaylist(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"", playlistArchetypes[0]},
		{"a", playlistArchetypes[1]},   // 97 % 8
		{"abc", playlistArchetypes[2]}, // 96354 % 8
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AnalyzePlaylist(tt.id), "playlist %q", tt.id)
	}

	id := "37i9dQZF1DXcBWIGoYBM5M"
	assert.Equal(t, AnalyzePlaylist(id), AnalyzePlaylist(id))
	assert.Contains(t, playlistArchetypes[:], AnalyzePlaylist(id))
}

func TestPlaylistHash_Wraps(t *testing.T) {
	// Long inputs overflow 32 bits; the hash must stay within int32 and the
	// archetype index within range.
	long := strings.Repeat("zZ9", 200)
	_ = playlistHash(long)
	assert.Contains(t, playlistArchetypes[:], AnalyzePlaylist(long))
}

func TestChatSystemPrompt(t *testing.T) {
	t.Run("persona only", func(t *testing.T) {
		got := ChatSystemPrompt(nil, nil)
		assert.True(t, strings.HasPrefix(got, "You are BookBuddy, an AI book recommendation assistant."))
		assert.NotContains(t, got, "User preferences")
		assert.NotContains(t, got, "Recent books")
	})

	t.Run("preferences and ratings", func(t *testing.T) {
		prefs := &domain.UserPreferences{
			FavoriteGenres: []string{"Fantasy", "Mystery"},
			PreferredMoods: []string{},
		}
		got := ChatSystemPrompt(prefs, []RatedBook{{Title: "Dune", Author: "Frank Herbert", Rating: 5}})
		assert.Contains(t, got, "User preferences:\n- Favorite genres: Fantasy, Mystery\n")
		assert.NotContains(t, got, "Preferred moods")
		assert.Contains(t, got, "\nRecent books they've rated:\n- Dune by Frank Herbert: 5/5 stars\n")
	})
}

func TestMoodRankPrompt(t *testing.T) {
	long := book("x", "Long", 4)
	long.Description = strings.Repeat("é", 150)

	got := MoodRankPrompt("cozy", []*domain.Book{book("b2", "Dune", 4.5), long})
	require.True(t, strings.HasPrefix(got, `Based on the mood "cozy", rank these books`))
	assert.Contains(t, got, "Books:\n- Dune by Author b2: About Dune...\n- Long by Author x: "+strings.Repeat("é", 100)+"...")
}

func TestPersonalizedPrompt(t *testing.T) {
	got := PersonalizedPrompt(nil, nil)
	assert.Contains(t, got, "Favorite Genres: None specified\n")
	assert.Contains(t, got, "Preferred Moods: None specified\n")
	assert.Contains(t, got, "Recently Liked Books: None\n")
	assert.True(t, strings.HasSuffix(got, "Reason: [Why this book matches their preferences]"))

	got = PersonalizedPrompt(
		&domain.UserPreferences{PreferredMoods: []string{"adventurous"}},
		[]RatedBook{{Title: "Dune", Author: "Frank Herbert", Rating: 4}, {Title: "Educated", Author: "Tara Westover", Rating: 5}},
	)
	assert.Contains(t, got, "Preferred Moods: adventurous\n")
	assert.Contains(t, got, "Recently Liked Books: Dune by Frank Herbert (4/5), Educated by Tara Westover (5/5)\n")
}

func TestPlaylistPrompt(t *testing.T) {
	got := PlaylistPrompt("jazz and blues", []*domain.Book{book("b2", "Dune", 4.5)})
	assert.True(t, strings.HasPrefix(got, `Based on this music playlist analysis: "jazz and blues", recommend 5-8 books`))
	assert.Contains(t, got, "- Dune by Author b2: About Dune... (Genres: Fiction, Moods: thoughtful)\n")
	assert.True(t, strings.HasSuffix(got, "then list the recommended books."))
}
