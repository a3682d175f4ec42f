package crm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	pkgerrors "github.com/davidfales/soccertraining-backend/pkg/errors"
	"github.com/davidfales/soccertraining-backend/pkg/logger"
	"github.com/davidfales/soccertraining-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxRunner executes fn inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service provisions portal accounts and their CRM mirrors when a
// booking comes in.
type Service interface {
	Provision(ctx context.Context, input ProvisionInput) (*ProvisionResult, error)
}

// ProvisionInput carries the signup details used to upsert the parent,
// player and their CRM records.
type ProvisionInput struct {
	ContactEmail string
	ContactPhone string
	ParentName   string

	FirstName     string
	LastName      string
	PlayerAge     int
	Birthdate     *time.Time
	PreferredFoot string
	Team          string
	Notes         string

	NoteContext string
}

// ProvisionResult reports which records the provisioning run touched.
// GeneratedPassword is set only when a brand new parent was created.
type ProvisionResult struct {
	ParentID          uuid.UUID
	PlayerID          uuid.UUID
	ParentEmail       string
	ParentWasCreated  bool
	GeneratedPassword string
}

type service struct {
	tx          TxRunner
	repo        Repository
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// Params wires CRM provisioning dependencies.
type Params struct {
	Tx          TxRunner
	Repo        Repository
	PasswordCfg config.PasswordConfig
	Logger      *logger.Logger
	Now         func() time.Time
}

// NewService builds the CRM provisioning service.
func NewService(params Params) (Service, error) {
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "crm tx runner required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "crm repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tx:          params.Tx,
		repo:        params.Repo,
		passwordCfg: params.PasswordCfg,
		logg:        params.Logger,
		now:         now,
	}, nil
}

func (s *service) Provision(ctx context.Context, input ProvisionInput) (*ProvisionResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.ContactEmail))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a contact email is required to create a parent account")
	}

	playerName := strings.TrimSpace(strings.TrimSpace(input.FirstName) + " " + strings.TrimSpace(input.LastName))
	if playerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "player name is required to create a player profile")
	}

	parentName := strings.TrimSpace(input.ParentName)
	parentPhone := strings.TrimSpace(input.ContactPhone)
	foot := strings.TrimSpace(input.PreferredFoot)
	team := strings.TrimSpace(input.Team)
	notes := strings.TrimSpace(input.Notes)

	noteContext := strings.TrimSpace(input.NoteContext)
	if noteContext == "" {
		noteContext = DefaultNoteContext
	}

	parentNote := ParentNoteEntry{
		Context: noteContext,
		Name:    parentName,
		Email:   email,
		Phone:   parentPhone,
	}.String()

	playerNote := PlayerNoteEntry{
		Context:       noteContext,
		Name:          playerName,
		Age:           input.PlayerAge,
		Birthday:      input.Birthdate,
		Team:          team,
		PreferredFoot: foot,
		Notes:         notes,
	}.String()

	var result ProvisionResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		parent, err := repo.FindParentByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var crmParentID int64
		if parent != nil {
			result.ParentID = parent.ID
			if parent.CRMParentID != nil {
				crmParentID = *parent.CRMParentID
			}

			if parentName != "" && derefTrim(parent.Name) == "" {
				if err := repo.UpdateParentFields(ctx, parent.ID, map[string]any{"name": parentName}); err != nil {
					return err
				}
			}
			if parentPhone != "" && derefTrim(parent.Phone) == "" {
				inUse, err := repo.ParentPhoneInUse(ctx, parentPhone, parent.ID)
				if err != nil {
					return err
				}
				if !inUse {
					if err := repo.UpdateParentFields(ctx, parent.ID, map[string]any{"phone": parentPhone}); err != nil {
						return err
					}
				}
			}
		} else {
			password, err := security.GeneratePortalPassword(security.PortalPasswordLength)
			if err != nil {
				return err
			}
			hash, err := security.HashPassword(password, s.passwordCfg)
			if err != nil {
				return err
			}

			phoneForInsert := parentPhone
			if phoneForInsert != "" {
				inUse, err := repo.ParentPhoneInUse(ctx, phoneForInsert, uuid.Nil)
				if err != nil {
					return err
				}
				if inUse {
					phoneForInsert = ""
				}
			}

			created := &models.Parent{
				Email:        email,
				Name:         nilIfEmpty(parentName),
				Phone:        nilIfEmpty(phoneForInsert),
				PasswordHash: hash,
			}
			if err := repo.CreateParent(ctx, created); err != nil {
				return err
			}
			result.ParentID = created.ID
			result.ParentWasCreated = true
			result.GeneratedPassword = password
		}

		// Resolve the CRM parent: linked id first, then email, then phone.
		crmParent, err := s.resolveCRMParent(ctx, repo, crmParentID, email, parentPhone)
		if err != nil {
			return err
		}
		if crmParent == nil {
			crmName := parentName
			if crmName == "" {
				crmName = playerName + " Parent"
			}
			crmParent = &models.CRMParent{
				Name:           crmName,
				Email:          nilIfEmpty(email),
				Phone:          nilIfEmpty(parentPhone),
				Notes:          nilIfEmpty(parentNote),
				LastActivityAt: &now,
			}
			if err := repo.CreateCRMParent(ctx, crmParent); err != nil {
				return err
			}
		}

		crmParentFields := map[string]any{
			"notes":            MergeNote(derefTrim(crmParent.Notes), parentNote),
			"is_dead":          false,
			"last_activity_at": now,
		}
		if strings.TrimSpace(crmParent.Name) == "" && parentName != "" {
			crmParentFields["name"] = parentName
		}
		if derefTrim(crmParent.Email) == "" {
			crmParentFields["email"] = email
		}
		if derefTrim(crmParent.Phone) == "" && parentPhone != "" {
			crmParentFields["phone"] = parentPhone
		}
		if err := repo.UpdateCRMParentFields(ctx, crmParent.ID, crmParentFields); err != nil {
			return err
		}

		if err := repo.SetParentCRMID(ctx, result.ParentID, crmParent.ID); err != nil {
			return err
		}

		player, err := repo.FindPlayerByParentAndName(ctx, result.ParentID, playerName)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var crmPlayerID int64
		if player != nil {
			result.PlayerID = player.ID
			if player.CRMPlayerID != nil {
				crmPlayerID = *player.CRMPlayerID
			}

			playerFields := map[string]any{"age": input.PlayerAge}
			if input.Birthdate != nil {
				playerFields["birthdate"] = *input.Birthdate
			}
			if foot != "" && derefTrim(player.PreferredFoot) == "" {
				playerFields["preferred_foot"] = foot
			}
			if team != "" && derefTrim(player.Team) == "" {
				playerFields["team"] = team
			}
			if notes != "" && derefTrim(player.Notes) == "" {
				playerFields["notes"] = notes
			}
			if err := repo.UpdatePlayerFields(ctx, player.ID, playerFields); err != nil {
				return err
			}
		} else {
			created := &models.Player{
				ParentID:      result.ParentID,
				Name:          playerName,
				Age:           input.PlayerAge,
				Birthdate:     input.Birthdate,
				PreferredFoot: nilIfEmpty(foot),
				Team:          nilIfEmpty(team),
				Notes:         nilIfEmpty(notes),
			}
			if err := repo.CreatePlayer(ctx, created); err != nil {
				return err
			}
			result.PlayerID = created.ID
		}

		crmPlayer, err := s.resolveCRMPlayer(ctx, repo, crmPlayerID, crmParent.ID, playerName)
		if err != nil {
			return err
		}
		if crmPlayer == nil {
			crmPlayer = &models.CRMPlayer{
				CRMParentID: crmParent.ID,
				Name:        playerName,
				Age:         input.PlayerAge,
				Birthday:    input.Birthdate,
				Team:        nilIfEmpty(team),
				Notes:       nilIfEmpty(playerNote),
			}
			if err := repo.CreateCRMPlayer(ctx, crmPlayer); err != nil {
				return err
			}
		}

		crmPlayerFields := map[string]any{
			"age":   input.PlayerAge,
			"notes": MergeNote(derefTrim(crmPlayer.Notes), playerNote),
		}
		if team != "" {
			crmPlayerFields["team"] = team
		}
		if input.Birthdate != nil {
			crmPlayerFields["birthday"] = *input.Birthdate
		}
		if err := repo.UpdateCRMPlayerFields(ctx, crmPlayer.ID, crmPlayerFields); err != nil {
			return err
		}

		return repo.SetPlayerCRMID(ctx, result.PlayerID, crmPlayer.ID)
	})
	if err != nil {
		var coded *pkgerrors.Error
		if errors.As(err, &coded) {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "provision parent and player")
	}

	result.ParentEmail = email
	return &result, nil
}

func (s *service) resolveCRMParent(ctx context.Context, repo Repository, linkedID int64, email, phone string) (*models.CRMParent, error) {
	if linkedID != 0 {
		parent, err := repo.FindCRMParentByID(ctx, linkedID)
		if err == nil {
			return parent, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	parent, err := repo.FindCRMParentByEmail(ctx, email)
	if err == nil {
		return parent, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if phone != "" {
		parent, err := repo.FindCRMParentByPhone(ctx, phone)
		if err == nil {
			return parent, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, nil
}

func (s *service) resolveCRMPlayer(ctx context.Context, repo Repository, linkedID, crmParentID int64, name string) (*models.CRMPlayer, error) {
	if linkedID != 0 {
		player, err := repo.FindCRMPlayerByID(ctx, linkedID)
		if err == nil {
			return player, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	player, err := repo.FindCRMPlayerByParentAndName(ctx, crmParentID, name)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return nil, nil
}

func derefTrim(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func nilIfEmpty(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
