package services

import (
	"context"
	"errors"
	"log"

	"FounderHub/server/internal/db"
	"FounderHub/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type StartupService struct{}

func NewStartupService() *StartupService {
	return &StartupService{}
}

func (ss *StartupService) CreateStartup(ctx context.Context, ownerID int, idea, description string) (*models.Startup, error) {
	if idea == "" {
		return nil, models.ErrValidation
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("startups").
		Columns("owner_user_id", "idea", "description").
		Values(ownerID, idea, description).
		Suffix("RETURNING id, created_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	startup := models.Startup{OwnerUserID: ownerID, Idea: idea, Description: description}
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&startup.ID, &startup.CreatedAt)
	if err != nil {
		log.Printf("Error creating startup: %v", err)
		return nil, err
	}

	log.Printf("Startup created with ID %d by user %d", startup.ID, ownerID)
	return &startup, nil
}

func (ss *StartupService) GetStartupById(ctx context.Context, id int) (*models.Startup, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "owner_user_id", "idea", "description", "created_at").
		From("startups").
		Where(squirrel.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var startup models.Startup
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&startup.ID, &startup.OwnerUserID,
		&startup.Idea, &startup.Description, &startup.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrStartupNotFound
		}
		log.Printf("Error fetching startup %d: %v", id, err)
		return nil, err
	}

	return &startup, nil
}

func (ss *StartupService) GetStartupsByUser(ctx context.Context, ownerID int) ([]models.Startup, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("id", "owner_user_id", "idea", "description", "created_at").
		From("startups").
		Where(squirrel.Eq{"owner_user_id": ownerID}).
		OrderBy("created_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error fetching startups for user %d: %v", ownerID, err)
		return nil, err
	}
	defer rows.Close()

	var startups []models.Startup
	for rows.Next() {
		var s models.Startup
		if err := rows.Scan(&s.ID, &s.OwnerUserID, &s.Idea, &s.Description, &s.CreatedAt); err != nil {
			log.Printf("Error scanning startup row: %v", err)
			continue
		}
		startups = append(startups, s)
	}
	return startups, rows.Err()
}

// IsOwner reports whether userID owns the startup.
func (ss *StartupService) IsOwner(ctx context.Context, startupID, userID int) (bool, error) {
	startup, err := ss.GetStartupById(ctx, startupID)
	if err != nil {
		return false, err
	}
	return startup.OwnerUserID == userID, nil
}
