package receipts

import (
	"errors"
	"fmt"
)

// RequestSize is the length in bytes of a serialized blinded receipt
// credential request. The request is an opaque zero-knowledge structure;
// only its framing is validated here, the Issuer performs the actual
// cryptographic verification.
const RequestSize = 97

// Request is a parsed blinded receipt credential request. It is immutable
// once constructed and safe to share between goroutines.
type Request struct {
	raw [RequestSize]byte
}

// ParseRequest validates the framing of a serialized blinded credential
// request. A request of any other length cannot possibly be valid, so it is
// rejected before reaching the Issuer.
func ParseRequest(b []byte) (Request, error) {
	if len(b) != RequestSize {
		return Request{}, errors.Join(ErrInvalidRequest,
			fmt.Errorf("expected %d bytes, got %d", RequestSize, len(b)))
	}
	var r Request
	copy(r.raw[:], b)
	return r, nil
}

// Bytes returns a copy of the serialized request.
func (r Request) Bytes() []byte {
	b := make([]byte, RequestSize)
	copy(b, r.raw[:])
	return b
}
