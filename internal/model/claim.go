package model

// Claim is the verified identity attached to a request by the
// authentication middleware.  It is built once per request, after the
// bearer token has been verified, and is read-only from then on.
// AccountID is the token subject; Claims carries the rest of the decoded
// payload for handlers that need more than the account id.
type Claim struct {
	AccountID uint64
	Claims    map[string]any
}
