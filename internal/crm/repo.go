package crm

import (
	"context"
	"strings"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for parents, players and their
// CRM mirror records. Every method runs against the bound connection, so
// callers provisioning inside a transaction rebind with WithTx first.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindParentByEmail(ctx context.Context, email string) (*models.Parent, error)
	CreateParent(ctx context.Context, parent *models.Parent) error
	UpdateParentFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	ParentPhoneInUse(ctx context.Context, phone string, excludeID uuid.UUID) (bool, error)
	SetParentCRMID(ctx context.Context, id uuid.UUID, crmParentID int64) error

	FindPlayerByParentAndName(ctx context.Context, parentID uuid.UUID, name string) (*models.Player, error)
	CreatePlayer(ctx context.Context, player *models.Player) error
	UpdatePlayerFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	SetPlayerCRMID(ctx context.Context, id uuid.UUID, crmPlayerID int64) error

	FindCRMParentByID(ctx context.Context, id int64) (*models.CRMParent, error)
	FindCRMParentByEmail(ctx context.Context, email string) (*models.CRMParent, error)
	FindCRMParentByPhone(ctx context.Context, phone string) (*models.CRMParent, error)
	CreateCRMParent(ctx context.Context, parent *models.CRMParent) error
	UpdateCRMParentFields(ctx context.Context, id int64, fields map[string]any) error

	FindCRMPlayerByID(ctx context.Context, id int64) (*models.CRMPlayer, error)
	FindCRMPlayerByParentAndName(ctx context.Context, crmParentID int64, name string) (*models.CRMPlayer, error)
	CreateCRMPlayer(ctx context.Context, player *models.CRMPlayer) error
	UpdateCRMPlayerFields(ctx context.Context, id int64, fields map[string]any) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a CRM repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) FindParentByEmail(ctx context.Context, email string) (*models.Parent, error) {
	var parent models.Parent
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&parent).Error
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

func (r *repositoryImpl) CreateParent(ctx context.Context, parent *models.Parent) error {
	if parent.ID == uuid.Nil {
		parent.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(parent).Error
}

func (r *repositoryImpl) UpdateParentFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Parent{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) ParentPhoneInUse(ctx context.Context, phone string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Parent{}).
		Where("phone = ? AND id <> ?", phone, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repositoryImpl) SetParentCRMID(ctx context.Context, id uuid.UUID, crmParentID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Parent{}).
		Where("id = ? AND crm_parent_id IS NULL", id).
		UpdateColumn("crm_parent_id", crmParentID).Error
}

func (r *repositoryImpl) FindPlayerByParentAndName(ctx context.Context, parentID uuid.UUID, name string) (*models.Player, error) {
	var player models.Player
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND LOWER(name) = ?", parentID, strings.ToLower(strings.TrimSpace(name))).
		First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *repositoryImpl) CreatePlayer(ctx context.Context, player *models.Player) error {
	if player.ID == uuid.Nil {
		player.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *repositoryImpl) UpdatePlayerFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) SetPlayerCRMID(ctx context.Context, id uuid.UUID, crmPlayerID int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ? AND crm_player_id IS NULL", id).
		UpdateColumn("crm_player_id", crmPlayerID).Error
}

func (r *repositoryImpl) FindCRMParentByID(ctx context.Context, id int64) (*models.CRMParent, error) {
	var parent models.CRMParent
	if err := r.db.WithContext(ctx).First(&parent, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &parent, nil
}

func (r *repositoryImpl) FindCRMParentByEmail(ctx context.Context, email string) (*models.CRMParent, error) {
	var parent models.CRMParent
	err := r.db.WithContext(ctx).
		Where("email IS NOT NULL AND LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("id").
		First(&parent).Error
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

func (r *repositoryImpl) FindCRMParentByPhone(ctx context.Context, phone string) (*models.CRMParent, error) {
	var parent models.CRMParent
	err := r.db.WithContext(ctx).
		Where("phone IS NOT NULL AND phone = ?", strings.TrimSpace(phone)).
		Order("id").
		First(&parent).Error
	if err != nil {
		return nil, err
	}
	return &parent, nil
}

func (r *repositoryImpl) CreateCRMParent(ctx context.Context, parent *models.CRMParent) error {
	now := time.Now().UTC()
	if parent.LastActivityAt == nil {
		parent.LastActivityAt = &now
	}
	return r.db.WithContext(ctx).Create(parent).Error
}

func (r *repositoryImpl) UpdateCRMParentFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.CRMParent{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) FindCRMPlayerByID(ctx context.Context, id int64) (*models.CRMPlayer, error) {
	var player models.CRMPlayer
	if err := r.db.WithContext(ctx).First(&player, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *repositoryImpl) FindCRMPlayerByParentAndName(ctx context.Context, crmParentID int64, name string) (*models.CRMPlayer, error) {
	var player models.CRMPlayer
	err := r.db.WithContext(ctx).
		Where("crm_parent_id = ? AND LOWER(name) = ?", crmParentID, strings.ToLower(strings.TrimSpace(name))).
		Order("id").
		First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

func (r *repositoryImpl) CreateCRMPlayer(ctx context.Context, player *models.CRMPlayer) error {
	return r.db.WithContext(ctx).Create(player).Error
}

func (r *repositoryImpl) UpdateCRMPlayerFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.CRMPlayer{}).
		Where("id = ?", id).
		Updates(fields).Error
}
