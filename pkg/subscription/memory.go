package subscription

import (
	"context"
	"crypto/hmac"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and single-node development
// setups. It implements the same conditional-write semantics as the
// persistent adapters.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory subscriber store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Get(ctx context.Context, subscriberID, tag []byte) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[string(subscriberID)]
	if !ok {
		return Record{}, ErrSubscriberNotFound
	}
	if !hmac.Equal(record.Tag, tag) {
		return Record{}, ErrTagMismatch
	}
	return cloneRecord(record), nil
}

func (s *MemoryStore) Create(ctx context.Context, subscriberID, tag []byte, now time.Time) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[string(subscriberID)]; ok {
		if !hmac.Equal(existing.Tag, tag) {
			return Record{}, ErrTagMismatch
		}
		return cloneRecord(existing), nil
	}

	record := &Record{
		SubscriberID: append([]byte(nil), subscriberID...),
		Tag:          append([]byte(nil), tag...),
		CreatedAt:    now,
		AccessedAt:   now,
	}
	s.records[string(subscriberID)] = record
	return cloneRecord(record), nil
}

func (s *MemoryStore) TouchAccessedAt(ctx context.Context, subscriberID []byte, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[string(subscriberID)]
	if !ok {
		return ErrSubscriberNotFound
	}
	record.AccessedAt = now
	return nil
}

func (s *MemoryStore) MarkCanceledAt(ctx context.Context, subscriberID []byte, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[string(subscriberID)]
	if !ok {
		return ErrSubscriberNotFound
	}
	canceled := now
	record.CanceledAt = &canceled
	record.AccessedAt = now
	return nil
}

func (s *MemoryStore) SetProcessorCustomer(ctx context.Context, prior Record, customer ProcessorCustomer, now time.Time) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[string(prior.SubscriberID)]
	if !ok {
		return Record{}, ErrSubscriberNotFound
	}
	if record.ProcessorCustomer != nil {
		return Record{}, ErrUpdateConflict
	}
	pc := customer
	record.ProcessorCustomer = &pc
	record.AccessedAt = now
	return cloneRecord(record), nil
}

func (s *MemoryStore) SubscriptionCreated(ctx context.Context, subscriberID []byte, subscriptionID string, now time.Time, level int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[string(subscriberID)]
	if !ok {
		return ErrSubscriberNotFound
	}
	createdAt := now
	record.SubscriptionID = subscriptionID
	record.SubscriptionLevel = level
	record.SubscriptionCreatedAt = &createdAt
	record.AccessedAt = now
	return nil
}

func (s *MemoryStore) SubscriptionLevelChanged(ctx context.Context, subscriberID []byte, now time.Time, level int64, subscriptionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[string(subscriberID)]
	if !ok {
		return ErrSubscriberNotFound
	}
	record.SubscriptionID = subscriptionID
	record.SubscriptionLevel = level
	record.AccessedAt = now
	return nil
}

func cloneRecord(r *Record) Record {
	out := *r
	out.SubscriberID = append([]byte(nil), r.SubscriberID...)
	out.Tag = append([]byte(nil), r.Tag...)
	if r.CanceledAt != nil {
		t := *r.CanceledAt
		out.CanceledAt = &t
	}
	if r.ProcessorCustomer != nil {
		pc := *r.ProcessorCustomer
		out.ProcessorCustomer = &pc
	}
	if r.SubscriptionCreatedAt != nil {
		t := *r.SubscriptionCreatedAt
		out.SubscriptionCreatedAt = &t
	}
	return out
}
