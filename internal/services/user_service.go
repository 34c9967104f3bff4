package services

import (
	"context"
	"errors"
	"log"
	"time"

	"FounderHub/server/internal/db"
	"FounderHub/server/internal/models"
	"FounderHub/server/internal/utils"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

func (us *UserService) CheckUserExists(ctx context.Context, username, email string) (bool, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("COUNT(*)").
		From("users").
		Where(squirrel.Or{
			squirrel.Eq{"username": username},
			squirrel.Eq{"email": email},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return false, err
	}

	var count int
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&count)
	if err != nil {
		log.Printf("Error executing query: %v", err)
		return false, err
	}

	return count > 0, nil
}

func (us *UserService) CreateUser(ctx context.Context, user *models.User, password string) (int, error) {
	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return 0, err
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("users").
		Columns("username", "email", "password_hash", "full_name", "avatar_url").
		Values(user.Username, user.Email, hashedPassword, user.FullName, user.AvatarURL).
		Suffix("RETURNING id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return 0, err
	}

	var userID int
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&userID)
	if err != nil {
		log.Printf("Error creating user: %v", err)
		return 0, err
	}

	log.Printf("User created: %s (ID: %d)", user.Username, userID)
	return userID, nil
}

func (us *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return us.getUser(ctx, squirrel.Eq{"email": email})
}

func (us *UserService) GetUserById(ctx context.Context, id int) (*models.User, error) {
	return us.getUser(ctx, squirrel.Eq{"id": id})
}

func (us *UserService) getUser(ctx context.Context, where squirrel.Eq) (*models.User, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "username", "email", "password_hash", "full_name", "avatar_url",
			"failed_attempts", "locked_until", "created_at").
		From("users").
		Where(where)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var user models.User
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&user.ID, &user.Username, &user.Email,
		&user.PasswordHash, &user.FullName, &user.AvatarURL, &user.FailedAttempts,
		&user.LockedUntil, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		log.Printf("Error fetching user: %v", err)
		return nil, err
	}

	return &user, nil
}

// GetUsersByIds returns the users keyed by id, for denormalized name/avatar
// lookups on rooms and messages. Missing ids are silently absent.
func (us *UserService) GetUsersByIds(ctx context.Context, ids []int) (map[int]*models.User, error) {
	if len(ids) == 0 {
		return map[int]*models.User{}, nil
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "username", "email", "full_name", "avatar_url").
		From("users").
		Where(squirrel.Eq{"id": ids})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error fetching users: %v", err)
		return nil, err
	}
	defer rows.Close()

	users := make(map[int]*models.User)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.FullName, &user.AvatarURL); err != nil {
			log.Printf("Error scanning user row: %v", err)
			continue
		}
		users[user.ID] = &user
	}
	return users, rows.Err()
}

func (us *UserService) UpdateProfile(ctx context.Context, id int, fullName, avatarURL string) error {
	setClause := squirrel.Eq{}
	if fullName != "" {
		setClause["full_name"] = fullName
	}
	if avatarURL != "" {
		setClause["avatar_url"] = avatarURL
	}
	if len(setClause) == 0 {
		return errors.New("nothing to update")
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("users").
		SetMap(setClause).
		Where(squirrel.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	result, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error updating user %d: %v", id, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	log.Printf("Profile updated for user %d", id)
	return nil
}

func (us *UserService) IncrementFailedLoginAttempts(ctx context.Context, id int) (*models.User, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("users").
		Set("failed_attempts", squirrel.Expr("failed_attempts + 1")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING failed_attempts")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var attempts int
	if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&attempts); err != nil {
		log.Printf("Error incrementing failed attempts for user %d: %v", id, err)
		return nil, err
	}

	return &models.User{ID: id, FailedAttempts: attempts}, nil
}

func (us *UserService) ResetFailedLoginAttempts(ctx context.Context, id int) error {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("users").
		Set("failed_attempts", 0).
		Set("locked_until", nil).
		Where(squirrel.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	return err
}

func (us *UserService) LockAccount(ctx context.Context, id int, d time.Duration) error {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("users").
		Set("locked_until", time.Now().Add(d)).
		Where(squirrel.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return err
	}

	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error locking account for user %d: %v", id, err)
	}
	return err
}
