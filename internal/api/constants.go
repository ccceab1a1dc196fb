package api

// Auth endpoint rate limits per client IP.
const (
	DefaultAuthRequestsPerMinute = 20
	DefaultAuthBurst             = 10
)

// bearerAuth marks an operation as requiring an access token.
var bearerAuth = []map[string][]string{{"bearer": {}}}
