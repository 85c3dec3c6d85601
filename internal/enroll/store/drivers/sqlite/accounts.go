package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/totpenroll/internal/enroll/domain"
)

type accountsRepo struct {
	q querier
}

func (r *accountsRepo) UpsertAccount(ctx context.Context, a domain.Account) error {
	now := formatTime(time.Now())
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO accounts (id, display_name, issuer_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			issuer_name  = excluded.issuer_name,
			updated_at   = excluded.updated_at`,
		a.ID, a.DisplayName, a.IssuerName, now, now,
	)
	return err
}

func (r *accountsRepo) GetAccount(ctx context.Context, id string) (domain.Account, error) {
	var (
		a                domain.Account
		created, updated string
	)
	err := r.q.QueryRowContext(ctx, `
		SELECT id, display_name, issuer_name, created_at, updated_at
		FROM accounts WHERE id = ?`, id,
	).Scan(&a.ID, &a.DisplayName, &a.IssuerName, &created, &updated)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	if a.CreatedAt, err = parseTime(created); err != nil {
		return domain.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func (r *accountsRepo) ResolveAccount(ctx context.Context, id string) (domain.AccountProfile, error) {
	var p domain.AccountProfile
	err := r.q.QueryRowContext(ctx,
		`SELECT display_name, issuer_name FROM accounts WHERE id = ?`, id,
	).Scan(&p.DisplayName, &p.IssuerName)
	if err != nil {
		return domain.AccountProfile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	return requireAffected(r.q.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id))
}
