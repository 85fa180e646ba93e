package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saleor/saleor-sub058/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	// Seed для pg_advisory_xact_lock: сериализует upsert по паре (user, variant),
	// включая гонку двух первых вставок, когда блокировать ещё нечего.
	upsertLockSeed = int64(6458102)
)

type reservationRepository struct {
	db *sql.DB
}

// NewReservationRepository создаёт PostgreSQL-реализацию ReservationRepository.
func NewReservationRepository(store *Store) domain.ReservationRepository {
	return &reservationRepository{db: store.DB()}
}

func (r *reservationRepository) AggregateByVariant(f domain.ReservationFilter) (map[string]int32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	where, args := buildFilterConditions(f)
	query := `
		SELECT r.product_variant_id, SUM(r.quantity)
		FROM reservations r
		JOIN shipping_zones z ON z.id = r.shipping_zone_id
	` + where + `
		GROUP BY r.product_variant_id
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate reservations: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int32)
	for rows.Next() {
		var (
			variantID string
			quantity  int64
		)
		if err := rows.Scan(&variantID, &quantity); err != nil {
			return nil, fmt.Errorf("scan reservation aggregate: %w", err)
		}
		if quantity == 0 {
			continue
		}
		totals[variantID] = int32(quantity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation aggregates: %w", err)
	}

	return totals, nil
}

// Upsert в одной транзакции блокирует строки ровно по (user, variant)
// и либо перезаписывает выжившую строку, либо вставляет новую.
func (r *reservationRepository) Upsert(res domain.Reservation) (domain.Reservation, error) {
	if errs := res.Validate(); len(errs) > 0 {
		return domain.Reservation{}, errs[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Транзакционный advisory lock закрывает окно между пустым SELECT
	// и INSERT при одновременных первых upsert той же пары.
	if _, err = tx.ExecContext(ctx, `
		SELECT pg_advisory_xact_lock(hashtextextended($1, $2))
	`, res.UserID+"/"+res.VariantID, upsertLockSeed); err != nil {
		return domain.Reservation{}, fmt.Errorf("acquire upsert lock: %w", err)
	}

	var (
		existingID string
		createdAt  time.Time
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, created_at
		FROM reservations
		WHERE user_id = $1
		  AND product_variant_id = $2
		ORDER BY created_at ASC, id ASC
		LIMIT 1
		FOR UPDATE
	`, res.UserID, res.VariantID).Scan(&existingID, &createdAt)

	switch {
	case err == nil:
		// Строка есть: зона, количество и срок действия заменяются на месте.
		if _, err = tx.ExecContext(ctx, `
			UPDATE reservations
			SET shipping_zone_id = $1,
			    quantity = $2,
			    expires = $3,
			    updated_at = $4
			WHERE id = $5
		`, res.ShippingZoneID, res.Quantity, res.Expires, res.UpdatedAt, existingID); err != nil {
			return domain.Reservation{}, fmt.Errorf("update reservation: %w", err)
		}
		res.ID = existingID
		res.CreatedAt = createdAt
	case errors.Is(err, sql.ErrNoRows):
		if res.ID == "" {
			res.ID = uuid.NewString()
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO reservations (
				id, user_id, shipping_zone_id, product_variant_id, quantity, expires, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
			res.ID, res.UserID, res.ShippingZoneID, res.VariantID,
			res.Quantity, res.Expires, res.CreatedAt, res.UpdatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return domain.Reservation{}, domain.ErrReservationConflict
			}
			return domain.Reservation{}, fmt.Errorf("insert reservation: %w", err)
		}
	default:
		return domain.Reservation{}, fmt.Errorf("select reservation for update: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Reservation{}, fmt.Errorf("commit upsert reservation: %w", err)
	}

	return res, nil
}

func (r *reservationRepository) Delete(f domain.ReservationFilter) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	where, args := buildFilterConditions(f)
	query := `
		DELETE FROM reservations r
		USING shipping_zones z
	` + strings.Replace(where, "WHERE", "WHERE z.id = r.shipping_zone_id AND", 1)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete reservations: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reservation rows affected: %w", err)
	}

	return int(affected), nil
}

func (r *reservationRepository) DeleteExpired(before time.Time, limit int) (int, error) {
	if before.IsZero() {
		before = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		res sql.Result
		err error
	)

	if limit > 0 {
		res, err = r.db.ExecContext(ctx, `
			DELETE FROM reservations
			WHERE id IN (
				SELECT id
				FROM reservations
				WHERE expires <= $1
				ORDER BY expires ASC
				LIMIT $2
			)
		`, before, limit)
	} else {
		res, err = r.db.ExecContext(ctx, `
			DELETE FROM reservations
			WHERE expires <= $1
		`, before)
	}
	if err != nil {
		return 0, fmt.Errorf("delete expired reservations: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("expired rows affected: %w", err)
	}

	return int(affected), nil
}

// buildFilterConditions переводит ReservationFilter в WHERE-условия.
// Подразумевает алиасы r (reservations) и z (shipping_zones).
func buildFilterConditions(f domain.ReservationFilter) (string, []any) {
	conditions := make([]string, 0, 6)
	args := make([]any, 0, 6)

	next := func() string { return fmt.Sprintf("$%d", len(args)) }

	if code := domain.NormalizeCountryCode(f.CountryCode); code != "" {
		args = append(args, code)
		conditions = append(conditions, next()+" = ANY(z.countries)")
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		conditions = append(conditions, "r.user_id = "+next())
	}
	if f.ExcludeUserID != "" {
		args = append(args, f.ExcludeUserID)
		conditions = append(conditions, "r.user_id <> "+next())
	}
	if f.VariantIDs != nil {
		args = append(args, f.VariantIDs)
		conditions = append(conditions, "r.product_variant_id = ANY("+next()+")")
	}
	if !f.ActiveAt.IsZero() {
		args = append(args, f.ActiveAt)
		conditions = append(conditions, "r.expires > "+next())
	}
	if !f.ExpiredAt.IsZero() {
		args = append(args, f.ExpiredAt)
		conditions = append(conditions, "r.expires <= "+next())
	}

	if len(conditions) == 0 {
		return "WHERE TRUE", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.ReservationRepository = (*reservationRepository)(nil)
