package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"counselor_admin_backend/platform/apperr"
)

const counselorNotFoundMessage = "counselor not found"

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// identityConstraint is the unique constraint guarding one profile per identity.
const identityConstraint = "counselors_identity_id_key"

const counselorColumns = `id, identity_id, full_name, email, phone_number, bio, avatar_url,
		date_of_birth, license_number, specializations, languages, years_of_experience,
		rate_video_per_minute, rate_voice_per_minute, rate_chat_per_minute,
		accepts_chat, accepts_voice, accepts_video, is_active, is_accepting_calls,
		created_at, updated_at`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new counselors repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetByID retrieves a counselor profile by its ID.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (Counselor, error) {
	query := `SELECT ` + counselorColumns + ` FROM counselors WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	counselor, err := scanCounselor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Counselor{}, apperr.NotFound(counselorNotFoundMessage)
		}
		return Counselor{}, fmt.Errorf("get counselor by id: %w", err)
	}

	return counselor, nil
}

// List retrieves all counselor profiles, newest first.
func (r *Repo) List(ctx context.Context) ([]Counselor, error) {
	query := `SELECT ` + counselorColumns + ` FROM counselors ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list counselors: %w", err)
	}
	defer rows.Close()

	return scanCounselors(rows)
}

// ListMissingIdentity retrieves profiles with no identity reference, oldest first.
func (r *Repo) ListMissingIdentity(ctx context.Context, limit int) ([]Counselor, error) {
	query := `SELECT ` + counselorColumns + `
		FROM counselors
		WHERE identity_id IS NULL
		ORDER BY created_at ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list counselors missing identity: %w", err)
	}
	defer rows.Close()

	return scanCounselors(rows)
}

// Insert creates a new counselor profile linked to an identity.
func (r *Repo) Insert(ctx context.Context, params InsertParams) (Counselor, error) {
	query := `
		INSERT INTO counselors (
			identity_id, full_name, email, phone_number, bio, avatar_url,
			date_of_birth, license_number, specializations, languages, years_of_experience,
			rate_video_per_minute, rate_voice_per_minute, rate_chat_per_minute,
			accepts_chat, accepts_voice, accepts_video, is_active, is_accepting_calls
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING ` + counselorColumns

	row := r.pool.QueryRow(ctx, query,
		params.IdentityID, params.FullName, params.Email, params.PhoneNumber,
		params.Bio, params.AvatarURL, params.DateOfBirth, params.LicenseNumber,
		params.Specializations, params.Languages, params.YearsOfExperience,
		params.RateVideoPerMinute, params.RateVoicePerMinute, params.RateChatPerMinute,
		params.AcceptsChat, params.AcceptsVoice, params.AcceptsVideo,
		params.IsActive, params.IsAcceptingCalls,
	)

	counselor, err := scanCounselor(row)
	if err != nil {
		if isDuplicateIdentity(err) {
			return Counselor{}, ErrProfileExists
		}
		return Counselor{}, fmt.Errorf("insert counselor: %w", err)
	}

	return counselor, nil
}

// Update applies ordinary field edits and returns the updated row.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Counselor, error) {
	query := `
		UPDATE counselors SET
			full_name = COALESCE($2, full_name),
			bio = COALESCE($3, bio),
			avatar_url = COALESCE($4, avatar_url),
			date_of_birth = COALESCE($5, date_of_birth),
			license_number = COALESCE($6, license_number),
			specializations = COALESCE($7, specializations),
			languages = COALESCE($8, languages),
			years_of_experience = COALESCE($9, years_of_experience),
			rate_video_per_minute = COALESCE($10, rate_video_per_minute),
			rate_voice_per_minute = COALESCE($11, rate_voice_per_minute),
			rate_chat_per_minute = COALESCE($12, rate_chat_per_minute),
			accepts_chat = COALESCE($13, accepts_chat),
			accepts_voice = COALESCE($14, accepts_voice),
			accepts_video = COALESCE($15, accepts_video),
			is_active = COALESCE($16, is_active),
			is_accepting_calls = COALESCE($17, is_accepting_calls),
			updated_at = now()
		WHERE id = $1
		RETURNING ` + counselorColumns

	row := r.pool.QueryRow(ctx, query,
		params.ID, params.FullName, params.Bio, params.AvatarURL, params.DateOfBirth,
		params.LicenseNumber, params.Specializations, params.Languages,
		params.YearsOfExperience, params.RateVideoPerMinute, params.RateVoicePerMinute,
		params.RateChatPerMinute, params.AcceptsChat, params.AcceptsVoice,
		params.AcceptsVideo, params.IsActive, params.IsAcceptingCalls,
	)

	counselor, err := scanCounselor(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Counselor{}, apperr.NotFound(counselorNotFoundMessage)
		}
		return Counselor{}, fmt.Errorf("update counselor: %w", err)
	}

	return counselor, nil
}

// SetIdentityRef links a profile row to an identity.
func (r *Repo) SetIdentityRef(ctx context.Context, id, identityID uuid.UUID) error {
	query := `UPDATE counselors SET identity_id = $2, updated_at = now() WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id, identityID)
	if err != nil {
		if isDuplicateIdentity(err) {
			return ErrProfileExists
		}
		return fmt.Errorf("set counselor identity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound(counselorNotFoundMessage)
	}

	return nil
}

// isDuplicateIdentity classifies an insert/update failure as a duplicate
// identity reference. The structured constraint-violation code is
// authoritative; message-substring matching remains as a fallback for stores
// that surface only text.
func isDuplicateIdentity(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation && pgErr.ConstraintName == identityConstraint
	}

	message := strings.ToLower(err.Error())
	return strings.Contains(message, identityConstraint) || strings.Contains(message, "duplicate key")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCounselor(row rowScanner) (Counselor, error) {
	var c Counselor
	err := row.Scan(
		&c.ID, &c.IdentityID, &c.FullName, &c.Email, &c.PhoneNumber, &c.Bio, &c.AvatarURL,
		&c.DateOfBirth, &c.LicenseNumber, &c.Specializations, &c.Languages, &c.YearsOfExperience,
		&c.RateVideoPerMinute, &c.RateVoicePerMinute, &c.RateChatPerMinute,
		&c.AcceptsChat, &c.AcceptsVoice, &c.AcceptsVideo, &c.IsActive, &c.IsAcceptingCalls,
		&c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func scanCounselors(rows pgx.Rows) ([]Counselor, error) {
	var results []Counselor

	for rows.Next() {
		counselor, err := scanCounselor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan counselor: %w", err)
		}
		results = append(results, counselor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counselors: %w", err)
	}

	return results, nil
}
