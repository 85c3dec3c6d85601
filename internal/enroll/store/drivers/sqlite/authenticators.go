package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
)

type authenticatorsRepo struct {
	q querier
}

func (r *authenticatorsRepo) CreateAuthenticator(ctx context.Context, a domain.StoredAuthenticator) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO authenticators (id, account_id, name, secret_sealed, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.AccountID, a.Name, a.SecretSealed, formatTime(a.CreatedAt),
	)
	return mapConstraint(err)
}

const selectAuthenticator = `
	SELECT id, account_id, name, secret_sealed, created_at, last_used_at
	FROM authenticators`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthenticator(row rowScanner) (domain.StoredAuthenticator, error) {
	var (
		a        domain.StoredAuthenticator
		created  string
		lastUsed sql.NullString
	)
	if err := row.Scan(&a.ID, &a.AccountID, &a.Name, &a.SecretSealed, &created, &lastUsed); err != nil {
		return domain.StoredAuthenticator{}, err
	}

	var err error
	if a.CreatedAt, err = parseTime(created); err != nil {
		return domain.StoredAuthenticator{}, err
	}
	if a.LastUsedAt, err = parseNullTime(lastUsed); err != nil {
		return domain.StoredAuthenticator{}, err
	}
	return a, nil
}

func (r *authenticatorsRepo) GetAuthenticator(ctx context.Context, accountID, id string) (domain.StoredAuthenticator, error) {
	row := r.q.QueryRowContext(ctx, selectAuthenticator+` WHERE account_id = ? AND id = ?`, accountID, id)
	a, err := scanAuthenticator(row)
	if err != nil {
		return domain.StoredAuthenticator{}, mapNotFound(err)
	}
	return a, nil
}

func (r *authenticatorsRepo) ListByAccount(ctx context.Context, accountID string) ([]domain.StoredAuthenticator, error) {
	rows, err := r.q.QueryContext(ctx, selectAuthenticator+` WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.StoredAuthenticator
	for rows.Next() {
		a, err := scanAuthenticator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *authenticatorsRepo) TouchAuthenticator(ctx context.Context, accountID, id string) error {
	return requireAffected(r.q.ExecContext(ctx,
		`UPDATE authenticators SET last_used_at = ? WHERE account_id = ? AND id = ?`,
		formatTime(time.Now()), accountID, id,
	))
}

func (r *authenticatorsRepo) DeleteAuthenticator(ctx context.Context, accountID, id string) error {
	return requireAffected(r.q.ExecContext(ctx,
		`DELETE FROM authenticators WHERE account_id = ? AND id = ?`, accountID, id,
	))
}
