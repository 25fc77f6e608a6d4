package receipts

// Credential is a signed receipt credential response, opaque to this
// package and returned to the subscriber as-is.
type Credential []byte

// Issuer signs receipt credentials. It wraps the server-side zero-knowledge
// receipt operations, which are provided by the environment.
//
// Implementations fail only on malformed or unverifiable input and should
// report that by wrapping ErrVerificationFailed.
type Issuer interface {
	// Issue produces a signed credential for the given blinded request,
	// receipt expiration (Unix seconds) and entitlement level.
	Issue(req Request, expiresAt int64, level int64) (Credential, error)
}
