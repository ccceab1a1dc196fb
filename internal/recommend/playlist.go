package recommend

import "unicode/utf16"

// Playlist selection bounds.
const (
	PlaylistCandidateLimit = 50
	PlaylistResultLimit    = 6
	PlaylistMinMatches     = 3
)

// PlaylistFallbackExplanation is served when the playlist can't be analyzed.
const PlaylistFallbackExplanation = "We couldn't analyze your Spotify playlist right now, " +
	"but here are some popular books you might enjoy! " +
	"To get personalized music-based recommendations, make sure your playlist is public and try again."

var playlistArchetypes = [...]string{
	"upbeat pop and electronic music with high energy and positive vibes",
	"mellow indie and alternative rock with introspective and contemplative themes",
	"classical and ambient music suggesting sophistication and calm reflection",
	"hip-hop and R&B with themes of ambition, relationships, and urban life",
	"folk and acoustic music with storytelling and emotional depth",
	"rock and metal with intense energy and rebellious themes",
	"jazz and blues suggesting sophistication and emotional complexity",
	"world music and diverse genres indicating curiosity and cultural exploration",
}

// AnalyzePlaylist describes a playlist's musical character. No streaming
// service is contacted: the description is picked from a fixed set of
// archetypes by a hash of the ID, so the same ID always yields the same text.
func AnalyzePlaylist(playlistID string) string {
	h := int64(playlistHash(playlistID))
	if h < 0 {
		h = -h
	}
	return playlistArchetypes[h%int64(len(playlistArchetypes))]
}

// playlistHash is the 31-multiplier string hash over UTF-16 code units with
// 32-bit wraparound, matching IDs hashed by web clients.
func playlistHash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	return h
}
