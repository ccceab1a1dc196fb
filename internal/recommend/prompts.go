package recommend

import (
	"fmt"
	"strings"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

// Sampling temperatures per feature.
const (
	RankTemperature     = 0.3
	CreativeTemperature = 0.7

	// ChatMaxTokens caps assistant replies in the chat.
	ChatMaxTokens = 500
)

// descriptionPreview is how many characters of a description go into prompts.
const descriptionPreview = 100

const chatPersona = "You are BookBuddy, an AI book recommendation assistant. " +
	"Help users discover books based on their preferences, mood, and reading history. " +
	"Be friendly, knowledgeable, and provide specific book recommendations when possible.\n\n"

// RatedBook is a book the user reviewed, as it appears in prompts.
type RatedBook struct {
	Title  string
	Author string
	Rating int
}

// ChatSystemPrompt builds the assistant persona plus whatever taste signal is known.
func ChatSystemPrompt(prefs *domain.UserPreferences, recent []RatedBook) string {
	var sb strings.Builder
	sb.WriteString(chatPersona)

	if prefs != nil {
		sb.WriteString("User preferences:\n")
		if len(prefs.FavoriteGenres) > 0 {
			fmt.Fprintf(&sb, "- Favorite genres: %s\n", strings.Join(prefs.FavoriteGenres, ", "))
		}
		if len(prefs.PreferredMoods) > 0 {
			fmt.Fprintf(&sb, "- Preferred moods: %s\n", strings.Join(prefs.PreferredMoods, ", "))
		}
	}

	if len(recent) > 0 {
		sb.WriteString("\nRecent books they've rated:\n")
		for _, r := range recent {
			fmt.Fprintf(&sb, "- %s by %s: %d/5 stars\n", r.Title, r.Author, r.Rating)
		}
	}
	return sb.String()
}

// MoodRankPrompt asks for the candidates ordered by fit for mood, one title per line.
func MoodRankPrompt(mood string, candidates []*domain.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the mood \"%s\", rank these books from most to least suitable. ", mood)
	sb.WriteString("Consider the book's themes, tone, and emotional impact. ")
	sb.WriteString("Return only the book titles in order, separated by newlines.\n\nBooks:\n")

	for i, b := range candidates {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %s by %s: %s...", b.Title, b.Author, preview(b.Description))
	}
	return sb.String()
}

// PersonalizedPrompt asks for five recommendations in a Title/Author/Reason layout.
func PersonalizedPrompt(prefs *domain.UserPreferences, liked []RatedBook) string {
	genres, moods := "None specified", "None specified"
	if prefs != nil {
		if len(prefs.FavoriteGenres) > 0 {
			genres = strings.Join(prefs.FavoriteGenres, ", ")
		}
		if len(prefs.PreferredMoods) > 0 {
			moods = strings.Join(prefs.PreferredMoods, ", ")
		}
	}

	likedText := "None"
	if len(liked) > 0 {
		parts := make([]string, len(liked))
		for i, r := range liked {
			parts[i] = fmt.Sprintf("%s by %s (%d/5)", r.Title, r.Author, r.Rating)
		}
		likedText = strings.Join(parts, ", ")
	}

	var sb strings.Builder
	sb.WriteString("Recommend books for a user with these preferences:\n    \n")
	fmt.Fprintf(&sb, "Favorite Genres: %s\n", genres)
	fmt.Fprintf(&sb, "Preferred Moods: %s\n", moods)
	fmt.Fprintf(&sb, "Recently Liked Books: %s\n\n", likedText)
	sb.WriteString("Provide 5 book recommendations with brief explanations of why each book fits their preferences. Format as:\n")
	sb.WriteString("Title: [Book Title]\n")
	sb.WriteString("Author: [Author Name]\n")
	sb.WriteString("Reason: [Why this book matches their preferences]")
	return sb.String()
}

// PlaylistPrompt asks for books matching a playlist's musical character.
func PlaylistPrompt(analysis string, candidates []*domain.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on this music playlist analysis: \"%s\", ", analysis)
	sb.WriteString("recommend 5-8 books that would match the mood, energy, and themes of this music. ")
	sb.WriteString("Consider the emotional tone, genre characteristics, and overall vibe.\n\nAvailable books:\n")

	for _, b := range candidates {
		fmt.Fprintf(&sb, "- %s by %s: %s... (Genres: %s, Moods: %s)\n",
			b.Title, b.Author, preview(b.Description),
			strings.Join(b.Genres, ", "), strings.Join(b.Moods, ", "))
	}
	sb.WriteString("\nProvide a brief explanation of how the music connects to these book recommendations, then list the recommended books.")
	return sb.String()
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= descriptionPreview {
		return s
	}
	return string(r[:descriptionPreview])
}
