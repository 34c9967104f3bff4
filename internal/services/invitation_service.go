package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"FounderHub/server/internal/db"
	"FounderHub/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type InvitationService interface {
	SendInvitation(ctx context.Context, ownerID, startupID, receiverID int) (*models.Invitation, error)
	GetInvitationById(ctx context.Context, id int) (*models.Invitation, error)
	ListSent(ctx context.Context, ownerID int, status models.InvitationStatus, page, limit int) ([]models.Invitation, int, error)
	ListReceived(ctx context.Context, receiverID int, status models.InvitationStatus, page, limit int) ([]models.Invitation, int, error)
	Accept(ctx context.Context, id, actorID int) (*models.Invitation, error)
	Reject(ctx context.Context, id, actorID int, reason *string) (*models.Invitation, error)
	CancelInvite(ctx context.Context, id, actorID int) (*models.Invitation, error)
	CancelDealing(ctx context.Context, id, actorID int, reason *string) (*models.Invitation, error)
	FinalizeSuccess(ctx context.Context, id, actorID int) (*models.Invitation, error)
}

type invitationService struct {
	StartupService *StartupService
	UserService    *UserService
}

func NewInvitationService(startupService *StartupService, userService *UserService) *invitationService {
	return &invitationService{
		StartupService: startupService,
		UserService:    userService,
	}
}

func (is *invitationService) SendInvitation(ctx context.Context, ownerID, startupID, receiverID int) (*models.Invitation, error) {
	startup, err := is.StartupService.GetStartupById(ctx, startupID)
	if err != nil {
		return nil, err
	}
	if startup.OwnerUserID != ownerID {
		log.Printf("User %d is not the owner of startup %d", ownerID, startupID)
		return nil, models.ErrNotStartupOwner
	}
	if receiverID == ownerID {
		return nil, models.ErrSelfInvitation
	}

	receiver, err := is.UserService.GetUserById(ctx, receiverID)
	if err != nil {
		return nil, err
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Insert("invitations").
		Columns("start_up_id", "owner_user_id", "user_id", "status").
		Values(startupID, ownerID, receiverID, models.StatusPending).
		Suffix("RETURNING id, created_at, updated_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	inv := models.Invitation{
		StartUpID:    startupID,
		StartUpIdea:  startup.Idea,
		OwnerUserID:  ownerID,
		UserID:       receiverID,
		UserFullName: receiver.FullName,
		UserAvatar:   receiver.AvatarURL,
		Status:       models.StatusPending,
	}
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		// The partial unique index keeps at most one active invitation per
		// startup/user pair even when two sends race.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			log.Printf("Active invitation already exists for startup %d and user %d", startupID, receiverID)
			return nil, models.ErrDuplicateInvitation
		}
		log.Printf("Error creating invitation: %v", err)
		return nil, err
	}

	log.Printf("Invitation %d created: startup %d, owner %d, receiver %d", inv.ID, startupID, ownerID, receiverID)
	return &inv, nil
}

func (is *invitationService) GetInvitationById(ctx context.Context, id int) (*models.Invitation, error) {
	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("i.id", "i.start_up_id", "s.idea", "i.owner_user_id", "i.user_id",
			"u.full_name", "u.avatar_url", "i.status", "i.reason", "i.created_at", "i.updated_at").
		From("invitations i").
		Join("startups s ON s.id = i.start_up_id").
		Join("users u ON u.id = i.user_id").
		Where(squirrel.Eq{"i.id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var inv models.Invitation
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&inv.ID, &inv.StartUpID, &inv.StartUpIdea,
		&inv.OwnerUserID, &inv.UserID, &inv.UserFullName, &inv.UserAvatar,
		&inv.Status, &inv.Reason, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrInvitationNotFound
		}
		log.Printf("Error fetching invitation %d: %v", id, err)
		return nil, err
	}

	return &inv, nil
}

func (is *invitationService) ListSent(ctx context.Context, ownerID int, status models.InvitationStatus, page, limit int) ([]models.Invitation, int, error) {
	return is.list(ctx, squirrel.Eq{"i.owner_user_id": ownerID}, status, page, limit)
}

func (is *invitationService) ListReceived(ctx context.Context, receiverID int, status models.InvitationStatus, page, limit int) ([]models.Invitation, int, error) {
	return is.list(ctx, squirrel.Eq{"i.user_id": receiverID}, status, page, limit)
}

func (is *invitationService) list(ctx context.Context, where squirrel.Eq, status models.InvitationStatus, page, limit int) ([]models.Invitation, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	conditions := squirrel.And{where}
	if status != "" {
		if !status.Valid() {
			return nil, 0, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
		}
		conditions = append(conditions, squirrel.Eq{"i.status": status})
	}

	countQuery := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("COUNT(*)").
		From("invitations i").
		Where(conditions)

	sqlStr, args, err := countQuery.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, 0, err
	}

	var total int
	if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		log.Printf("Error counting invitations: %v", err)
		return nil, 0, err
	}

	query := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Select("i.id", "i.start_up_id", "s.idea", "i.owner_user_id", "i.user_id",
			"u.full_name", "u.avatar_url", "i.status", "i.reason", "i.created_at", "i.updated_at").
		From("invitations i").
		Join("startups s ON s.id = i.start_up_id").
		Join("users u ON u.id = i.user_id").
		Where(conditions).
		OrderBy("i.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit))

	sqlStr, args, err = query.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, 0, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error listing invitations: %v", err)
		return nil, 0, err
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		err := rows.Scan(&inv.ID, &inv.StartUpID, &inv.StartUpIdea, &inv.OwnerUserID,
			&inv.UserID, &inv.UserFullName, &inv.UserAvatar, &inv.Status, &inv.Reason,
			&inv.CreatedAt, &inv.UpdatedAt)
		if err != nil {
			log.Printf("Error scanning invitation row: %v", err)
			continue
		}
		invitations = append(invitations, inv)
	}

	return invitations, total, rows.Err()
}

// Accept moves a Pending invitation to Dealing. Only the receiver may accept.
func (is *invitationService) Accept(ctx context.Context, id, actorID int) (*models.Invitation, error) {
	return is.transition(ctx, id, actorID, byReceiver, []models.InvitationStatus{models.StatusPending}, models.StatusDealing, nil)
}

// Reject moves a Pending or Dealing invitation to Rejected. Only the receiver
// may reject; the owner uses CancelInvite or CancelDealing.
func (is *invitationService) Reject(ctx context.Context, id, actorID int, reason *string) (*models.Invitation, error) {
	return is.transition(ctx, id, actorID, byReceiver,
		[]models.InvitationStatus{models.StatusPending, models.StatusDealing}, models.StatusRejected, reason)
}

// CancelInvite is the owner withdrawing a Pending invitation.
func (is *invitationService) CancelInvite(ctx context.Context, id, actorID int) (*models.Invitation, error) {
	return is.transition(ctx, id, actorID, byOwner, []models.InvitationStatus{models.StatusPending}, models.StatusRejected, nil)
}

// CancelDealing is the owner breaking off an ongoing negotiation.
func (is *invitationService) CancelDealing(ctx context.Context, id, actorID int, reason *string) (*models.Invitation, error) {
	return is.transition(ctx, id, actorID, byOwner, []models.InvitationStatus{models.StatusDealing}, models.StatusRejected, reason)
}

// FinalizeSuccess is the owner confirming the recruitment after Dealing.
func (is *invitationService) FinalizeSuccess(ctx context.Context, id, actorID int) (*models.Invitation, error) {
	return is.transition(ctx, id, actorID, byOwner, []models.InvitationStatus{models.StatusDealing}, models.StatusSuccess, nil)
}

type actorRole int

const (
	byOwner actorRole = iota
	byReceiver
)

// transition applies a guarded status update. The WHERE clause carries the
// allowed source statuses, so even racing callers can never produce a
// transition outside the state machine; a zero-row update is classified by
// re-reading the invitation.
func (is *invitationService) transition(ctx context.Context, id, actorID int, role actorRole, from []models.InvitationStatus, to models.InvitationStatus, reason *string) (*models.Invitation, error) {
	inv, err := is.GetInvitationById(ctx, id)
	if err != nil {
		return nil, err
	}

	switch role {
	case byOwner:
		if inv.OwnerUserID != actorID {
			log.Printf("User %d is not the owner of invitation %d", actorID, id)
			return nil, models.ErrNotInvitationParty
		}
	case byReceiver:
		if inv.UserID != actorID {
			log.Printf("User %d is not the receiver of invitation %d", actorID, id)
			return nil, models.ErrNotInvitationParty
		}
	}

	update := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).
		Update("invitations").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.And{
			squirrel.Eq{"id": id},
			squirrel.Eq{"status": from},
		})
	if reason != nil {
		update = update.Set("reason", *reason)
	}

	sqlStr, args, err := update.ToSql()
	if err != nil {
		log.Printf("Failed to build SQL query: %v", err)
		return nil, err
	}

	result, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		log.Printf("Error updating invitation %d to %s: %v", id, to, err)
		return nil, err
	}

	if result.RowsAffected() == 0 {
		current, err := is.GetInvitationById(ctx, id)
		if err != nil {
			return nil, err
		}
		log.Printf("Invitation %d is %s, cannot move to %s", id, current.Status, to)
		return nil, fmt.Errorf("%w: invitation is %s", models.ErrInvalidState, current.Status)
	}

	inv.Status = to
	if reason != nil {
		inv.Reason = reason
	}
	log.Printf("Invitation %d moved to %s by user %d", id, to, actorID)
	return inv, nil
}
