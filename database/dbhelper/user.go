package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/cafedesk/pos-backend/database"
	"github.com/cafedesk/pos-backend/models"
)

const userColumns = `id, name, email, password_hash, role, language, avatar_url, is_active, created_at`

// uniqueViolation is the Postgres error code for a duplicate key.
const uniqueViolation = "23505"

type UserStore struct {
	db *database.DB
}

func NewUserStore(db *database.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) CreateUser(ctx context.Context, name, email, passwordHash string, role models.Role, language string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role, language)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING `+userColumns,
		name, email, passwordHash, role, language)

	user, err := scanUser(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetUserByPassword resolves an active account by email and verifies the
// password against the stored hash.
func (s *UserStore) GetUserByPassword(ctx context.Context, email, password string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1) AND is_active = TRUE`, email)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidPassword
	}
	return user, nil
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`, id)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

func (s *UserStore) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// UpdateUser applies an admin patch. Email uniqueness is checked up front,
// excluding the user being updated.
func (s *UserStore) UpdateUser(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	if patch.Email != nil {
		taken, err := s.isEmailTaken(ctx, *patch.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
	}

	var b updateBuilder
	if patch.Name != nil {
		b.set("name", *patch.Name)
	}
	if patch.Email != nil {
		b.set("email", *patch.Email)
	}
	if patch.Role != nil {
		b.set("role", *patch.Role)
	}
	if patch.IsActive != nil {
		b.set("is_active", *patch.IsActive)
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		b.set("password_hash", string(hash))
	}
	if b.empty() {
		return nil, ErrNothingToUpdate
	}

	return s.applyUserUpdate(ctx, id, &b)
}

// UpdateProfile applies the customer self-service patch.
func (s *UserStore) UpdateProfile(ctx context.Context, id uuid.UUID, patch models.ProfilePatch) (*models.User, error) {
	var b updateBuilder
	if patch.Name != nil {
		b.set("name", *patch.Name)
	}
	if patch.Language != nil {
		b.set("language", *patch.Language)
	}
	if patch.AvatarURL != nil {
		b.set("avatar_url", *patch.AvatarURL)
	}
	if patch.Password != nil && *patch.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		b.set("password_hash", string(hash))
	}
	if b.empty() {
		return nil, ErrNothingToUpdate
	}

	return s.applyUserUpdate(ctx, id, &b)
}

func (s *UserStore) applyUserUpdate(ctx context.Context, id uuid.UUID, b *updateBuilder) (*models.User, error) {
	query, args := b.build("users", id, userColumns)
	user, err := scanUser(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *UserStore) isEmailTaken(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2
		)`, email, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return taken, nil
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Language, &u.AvatarURL, &u.IsActive, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
