package proposals

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "ebridge-portal/internal/domain/entity/proposals"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the part of *pgxpool.Pool the repository uses.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
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

// NewRepositoryWithPool shares an existing pool.
func NewRepositoryWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

const selectColumns = `
	id, user_id, title, action, units, unit_price, investment_amount, risk_level,
	description, expected_return, time_horizon, additional_notes, status, deadline,
	created_at, updated_at, client_decision_date, digital_signature, rejection_reason, decided_by`

func (r *Repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]domain.Proposal, error) {
	return r.List(ctx, domain.Filter{ClientID: clientID})
}

func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]domain.Proposal, error) {
	query := `SELECT ` + selectColumns + `
		FROM investment_proposals
		WHERE ($1::uuid IS NULL OR user_id = $1)
		  AND ($2::text = '' OR status = $2)
		ORDER BY created_at DESC`

	var clientID *uuid.UUID
	if filter.ClientID != uuid.Nil {
		clientID = &filter.ClientID
	}
	rows, err := r.pool.Query(ctx, query, clientID, string(filter.Status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	query := `SELECT ` + selectColumns + ` FROM investment_proposals WHERE id = $1`
	p, err := scanProposal(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

const insertProposalQuery = `
	INSERT INTO investment_proposals (
		id, user_id, title, action, units, unit_price, investment_amount, risk_level,
		description, expected_return, time_horizon, additional_notes, status, deadline,
		created_at, updated_at
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	RETURNING ` + selectColumns

func (r *Repository) Create(ctx context.Context, proposal *domain.Proposal) error {
	if proposal == nil {
		return errors.New("proposal is nil")
	}
	if proposal.ID == uuid.Nil {
		proposal.ID = uuid.New()
	}
	now := time.Now().UTC()
	if proposal.CreatedAt.IsZero() {
		proposal.CreatedAt = now
	}
	if proposal.UpdatedAt.IsZero() {
		proposal.UpdatedAt = proposal.CreatedAt
	}
	if err := proposal.Validate(); err != nil {
		return err
	}

	row := r.pool.QueryRow(ctx, insertProposalQuery,
		proposal.ID,
		proposal.ClientID,
		proposal.Title,
		string(proposal.Action),
		proposal.Amount,
		proposal.UnitPrice,
		proposal.TotalValue,
		string(proposal.RiskLevel),
		proposal.Rationale,
		proposal.ExpectedReturn,
		proposal.TimeHorizon,
		proposal.AdditionalNotes,
		string(proposal.Status),
		proposal.Deadline,
		proposal.CreatedAt,
		proposal.UpdatedAt,
	)
	stored, err := scanProposal(row)
	if err != nil {
		return err
	}
	*proposal = stored
	return nil
}

// The status predicate makes the decision a compare-and-set: a row decided elsewhere
// matches nothing.
const recordDecisionQuery = `
	UPDATE investment_proposals
	SET status = $2,
		client_decision_date = $3,
		updated_at = $3,
		digital_signature = $4,
		rejection_reason = $5,
		decided_by = $6
	WHERE id = $1 AND status = 'pending'
	RETURNING ` + selectColumns

func (r *Repository) RecordDecision(ctx context.Context, decision domain.Decision) (*domain.Proposal, error) {
	var stored domain.Proposal
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, recordDecisionQuery,
			decision.ProposalID,
			string(decision.Status),
			decision.DecidedAt.UTC(),
			decision.Signature,
			nullableString(decision.RejectionReason),
			decision.DecidedBy,
		)
		p, err := scanProposal(row)
		if err == nil {
			stored = p
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM investment_proposals WHERE id = $1)`, decision.ProposalID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrNotPending
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *Repository) withTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanProposal(row pgx.Row) (domain.Proposal, error) {
	var raw proposalRow
	err := row.Scan(
		&raw.ID,
		&raw.UserID,
		&raw.Title,
		&raw.Action,
		&raw.Units,
		&raw.UnitPrice,
		&raw.InvestmentAmount,
		&raw.RiskLevel,
		&raw.Description,
		&raw.ExpectedReturn,
		&raw.TimeHorizon,
		&raw.AdditionalNotes,
		&raw.Status,
		&raw.Deadline,
		&raw.CreatedAt,
		&raw.UpdatedAt,
		&raw.ClientDecisionDate,
		&raw.DigitalSignature,
		&raw.RejectionReason,
		&raw.DecidedBy,
	)
	if err != nil {
		return domain.Proposal{}, err
	}
	return raw.toDomain()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
