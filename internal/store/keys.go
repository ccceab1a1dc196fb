package store

// Key prefixes for the Badger keyspace.
const (
	chatSessionPrefix = "chat:session:"
)

// buildKey constructs a database key from prefix and suffix.
func buildKey(prefix, suffix string) []byte {
	buf := make([]byte, 0, len(prefix)+len(suffix))
	buf = append(buf, prefix...)
	buf = append(buf, suffix...)
	return buf
}
