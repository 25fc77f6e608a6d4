package subscription

import "time"

// Credentials authorize all operations on a subscriber record. They are
// derived upstream from the opaque subscriber id presented by the client:
// SubscriberID is the identity half and Tag the HMAC half, already computed
// by the transport layer before this package is invoked.
//
// Now is the request timestamp and is used for every time the operation
// writes, so a single request observes one consistent clock reading.
// Credentials are immutable and constructed per request.
type Credentials struct {
	SubscriberID []byte
	Tag          []byte
	Now          time.Time
}
