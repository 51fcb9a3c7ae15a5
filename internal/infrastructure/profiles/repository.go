package profiles

import (
	"context"
	"errors"
	"fmt"

	domain "ebridge-portal/internal/domain/entity/profiles"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// querier is the part of *pgxpool.Pool the repository uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type Repository struct {
	pool querier
}

func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

const profileColumns = `id, full_name, username, website, avatar_url, updated_at`

func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

const upsertProfileQuery = `
	INSERT INTO profiles (id, full_name, username, website, avatar_url, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE SET
		full_name = EXCLUDED.full_name,
		username = EXCLUDED.username,
		website = EXCLUDED.website,
		avatar_url = EXCLUDED.avatar_url,
		updated_at = EXCLUDED.updated_at
	RETURNING ` + profileColumns

func (r *Repository) Upsert(ctx context.Context, profile *domain.Profile) error {
	if profile == nil {
		return errors.New("profile is nil")
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, upsertProfileQuery,
		profile.UserID,
		nullable(profile.FullName),
		nullable(profile.Username),
		nullable(profile.Website),
		nullable(profile.AvatarURL),
		profile.UpdatedAt.UTC(),
	)
	stored, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrUsernameTaken
		}
		return err
	}
	*profile = stored
	return nil
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var (
		p                                      domain.Profile
		fullName, username, website, avatarURL *string
	)
	if err := row.Scan(&p.UserID, &fullName, &username, &website, &avatarURL, &p.UpdatedAt); err != nil {
		return domain.Profile{}, err
	}
	p.FullName = deref(fullName)
	p.Username = deref(username)
	p.Website = deref(website)
	p.AvatarURL = deref(avatarURL)
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
