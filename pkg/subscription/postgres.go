package subscription

import (
	"context"
	"crypto/hmac"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements Store on PostgreSQL. Every conditional operation
// is a single statement whose WHERE clause carries the condition, so the
// database is the compare-and-set primitive and no row locks are held
// across round trips.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Store backed by the given connection pool.
// The caller owns the pool lifecycle. Panics on a nil pool to fail fast
// during initialization.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("subscription: pgx pool is required")
	}
	return &PostgresStore{pool: pool}
}

// MigratePostgres applies the subscribers table schema migrations embedded
// in the package. Goose logs are routed through the provided slog logger.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseSlogAdapter{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

type gooseSlogAdapter struct {
	log *slog.Logger
}

func (a gooseSlogAdapter) Fatalf(format string, v ...any) {
	a.log.Error(fmt.Sprintf(format, v...))
}

func (a gooseSlogAdapter) Printf(format string, v ...any) {
	a.log.Info(fmt.Sprintf(format, v...))
}

const subscriberColumns = `subscriber_id, tag, created_at, accessed_at, canceled_at,
	processor, customer_id, subscription_id, subscription_level, subscription_created_at`

func (s *PostgresStore) Get(ctx context.Context, subscriberID, tag []byte) (Record, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+subscriberColumns+` FROM subscribers WHERE subscriber_id = $1`,
		subscriberID)

	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrSubscriberNotFound
		}
		return Record{}, err
	}
	if !hmac.Equal(record.Tag, tag) {
		return Record{}, ErrTagMismatch
	}
	return record, nil
}

func (s *PostgresStore) Create(ctx context.Context, subscriberID, tag []byte, now time.Time) (Record, error) {
	ct, err := s.pool.Exec(ctx,
		`INSERT INTO subscribers (subscriber_id, tag, created_at, accessed_at)
		 VALUES ($1, $2, $3, $3)
		 ON CONFLICT (subscriber_id) DO NOTHING`,
		subscriberID, tag, now)
	if err != nil {
		return Record{}, err
	}
	if ct.RowsAffected() == 1 {
		return Record{
			SubscriberID: append([]byte(nil), subscriberID...),
			Tag:          append([]byte(nil), tag...),
			CreatedAt:    now,
			AccessedAt:   now,
		}, nil
	}
	// Row already existed; Get reports ErrTagMismatch if it belongs to a
	// different tag, otherwise the concurrent creation converges here.
	return s.Get(ctx, subscriberID, tag)
}

func (s *PostgresStore) TouchAccessedAt(ctx context.Context, subscriberID []byte, now time.Time) error {
	return s.exec(ctx,
		`UPDATE subscribers SET accessed_at = $2 WHERE subscriber_id = $1`,
		subscriberID, now)
}

func (s *PostgresStore) MarkCanceledAt(ctx context.Context, subscriberID []byte, now time.Time) error {
	return s.exec(ctx,
		`UPDATE subscribers SET canceled_at = $2, accessed_at = $2 WHERE subscriber_id = $1`,
		subscriberID, now)
}

func (s *PostgresStore) SetProcessorCustomer(ctx context.Context, prior Record, customer ProcessorCustomer, now time.Time) (Record, error) {
	ct, err := s.pool.Exec(ctx,
		`UPDATE subscribers
		 SET processor = $2, customer_id = $3, accessed_at = $4
		 WHERE subscriber_id = $1 AND processor IS NULL`,
		prior.SubscriberID, string(customer.Provider), customer.CustomerID, now)
	if err != nil {
		return Record{}, err
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM subscribers WHERE subscriber_id = $1)`,
			prior.SubscriberID).Scan(&exists); err != nil {
			return Record{}, err
		}
		if !exists {
			return Record{}, ErrSubscriberNotFound
		}
		return Record{}, ErrUpdateConflict
	}
	return s.Get(ctx, prior.SubscriberID, prior.Tag)
}

func (s *PostgresStore) SubscriptionCreated(ctx context.Context, subscriberID []byte, subscriptionID string, now time.Time, level int64) error {
	return s.exec(ctx,
		`UPDATE subscribers
		 SET subscription_id = $2, subscription_level = $3, subscription_created_at = $4, accessed_at = $4
		 WHERE subscriber_id = $1`,
		subscriberID, subscriptionID, level, now)
}

func (s *PostgresStore) SubscriptionLevelChanged(ctx context.Context, subscriberID []byte, now time.Time, level int64, subscriptionID string) error {
	return s.exec(ctx,
		`UPDATE subscribers
		 SET subscription_level = $3, subscription_id = $4, accessed_at = $2
		 WHERE subscriber_id = $1`,
		subscriberID, now, level, subscriptionID)
}

func (s *PostgresStore) exec(ctx context.Context, sql string, args ...any) error {
	ct, err := s.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrSubscriberNotFound
	}
	return nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		record         Record
		canceledAt     *time.Time
		processor      *string
		customerID     *string
		subscriptionID *string
		level          *int64
		subCreatedAt   *time.Time
	)
	if err := row.Scan(
		&record.SubscriberID, &record.Tag, &record.CreatedAt, &record.AccessedAt, &canceledAt,
		&processor, &customerID, &subscriptionID, &level, &subCreatedAt,
	); err != nil {
		return Record{}, err
	}

	record.CanceledAt = canceledAt
	record.SubscriptionCreatedAt = subCreatedAt
	if processor != nil && customerID != nil {
		record.ProcessorCustomer = &ProcessorCustomer{
			Provider:   PaymentProvider(*processor),
			CustomerID: *customerID,
		}
	}
	if subscriptionID != nil {
		record.SubscriptionID = *subscriptionID
	}
	if level != nil {
		record.SubscriptionLevel = *level
	}
	return record, nil
}
