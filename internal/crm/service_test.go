package crm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/davidfales/soccertraining-backend/pkg/config"
	"github.com/davidfales/soccertraining-backend/pkg/db/models"
	"github.com/davidfales/soccertraining-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r *testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupCRMTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE crm_parents (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  notes TEXT,
  is_dead INTEGER NOT NULL DEFAULT 0,
  last_activity_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE crm_players (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  crm_parent_id INTEGER NOT NULL,
  name TEXT NOT NULL,
  age INTEGER NOT NULL,
  birthday DATETIME,
  team TEXT,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE parents (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT,
  phone TEXT,
  password_hash TEXT NOT NULL,
  crm_parent_id INTEGER,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE players (
  id TEXT PRIMARY KEY,
  parent_id TEXT NOT NULL,
  name TEXT NOT NULL,
  age INTEGER NOT NULL,
  birthdate DATETIME,
  preferred_foot TEXT,
  team TEXT,
  notes TEXT,
  crm_player_id INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newCRMService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(Params{
		Tx:          &testTxRunner{db: db},
		Repo:        NewRepository(db),
		PasswordCfg: testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc
}

func baseInput() ProvisionInput {
	return ProvisionInput{
		ContactEmail:  "Sam.Jones@Example.com",
		ContactPhone:  "555-0100",
		ParentName:    "Sam Jones",
		FirstName:     "Alex",
		LastName:      "Jones",
		PlayerAge:     10,
		PreferredFoot: "left",
		Team:          "U11 Gold",
		Notes:         "Working on weak foot",
	}
}

func TestProvisionCreatesEverything(t *testing.T) {
	ctx := context.Background()
	db := setupCRMTestDB(t)
	svc := newCRMService(t, db)

	result, err := svc.Provision(ctx, baseInput())
	require.NoError(t, err)
	require.True(t, result.ParentWasCreated)
	require.NotEmpty(t, result.GeneratedPassword)
	require.Len(t, result.GeneratedPassword, security.PortalPasswordLength)
	require.Equal(t, "sam.jones@example.com", result.ParentEmail)

	var parent models.Parent
	require.NoError(t, db.First(&parent, "id = ?", result.ParentID).Error)
	require.Equal(t, "sam.jones@example.com", parent.Email)
	require.NotNil(t, parent.Phone)
	require.Equal(t, "555-0100", *parent.Phone)
	require.NotNil(t, parent.CRMParentID)

	ok, err := security.VerifyPassword(result.GeneratedPassword, parent.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok, "generated password must verify against the stored hash")

	var player models.Player
	require.NoError(t, db.First(&player, "id = ?", result.PlayerID).Error)
	require.Equal(t, "Alex Jones", player.Name)
	require.Equal(t, 10, player.Age)
	require.NotNil(t, player.CRMPlayerID)

	var crmParent models.CRMParent
	require.NoError(t, db.First(&crmParent, "id = ?", *parent.CRMParentID).Error)
	require.Equal(t, "Sam Jones", crmParent.Name)
	require.False(t, crmParent.IsDead)
	require.NotNil(t, crmParent.LastActivityAt)
	require.Contains(t, *crmParent.Notes, "Parent: Sam Jones")
	require.Contains(t, *crmParent.Notes, "Email: sam.jones@example.com")

	var crmPlayer models.CRMPlayer
	require.NoError(t, db.First(&crmPlayer, "id = ?", *player.CRMPlayerID).Error)
	require.Equal(t, crmParent.ID, crmPlayer.CRMParentID)
	require.Contains(t, *crmPlayer.Notes, "Player: Alex Jones")
	require.Contains(t, *crmPlayer.Notes, "Preferred foot: left")
}

func TestProvisionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupCRMTestDB(t)
	svc := newCRMService(t, db)

	first, err := svc.Provision(ctx, baseInput())
	require.NoError(t, err)

	second, err := svc.Provision(ctx, baseInput())
	require.NoError(t, err)

	require.Equal(t, first.ParentID, second.ParentID)
	require.Equal(t, first.PlayerID, second.PlayerID)
	require.False(t, second.ParentWasCreated)
	require.Empty(t, second.GeneratedPassword)

	var parentCount, playerCount, crmParentCount, crmPlayerCount int64
	require.NoError(t, db.Model(&models.Parent{}).Count(&parentCount).Error)
	require.NoError(t, db.Model(&models.Player{}).Count(&playerCount).Error)
	require.NoError(t, db.Model(&models.CRMParent{}).Count(&crmParentCount).Error)
	require.NoError(t, db.Model(&models.CRMPlayer{}).Count(&crmPlayerCount).Error)
	require.EqualValues(t, 1, parentCount)
	require.EqualValues(t, 1, playerCount)
	require.EqualValues(t, 1, crmParentCount)
	require.EqualValues(t, 1, crmPlayerCount)

	var crmParent models.CRMParent
	require.NoError(t, db.First(&crmParent).Error)
	require.Equal(t, 1, strings.Count(*crmParent.Notes, "Parent: Sam Jones"),
		"repeated bookings must not duplicate the CRM note")
}

func TestProvisionBackfillsExistingParent(t *testing.T) {
	ctx := context.Background()
	db := setupCRMTestDB(t)
	svc := newCRMService(t, db)

	existing := &models.Parent{
		ID:           uuid.New(),
		Email:        "sam.jones@example.com",
		PasswordHash: "$argon2id$stub",
	}
	require.NoError(t, db.Create(existing).Error)

	result, err := svc.Provision(ctx, baseInput())
	require.NoError(t, err)
	require.False(t, result.ParentWasCreated)
	require.Empty(t, result.GeneratedPassword)
	require.Equal(t, existing.ID, result.ParentID)

	var parent models.Parent
	require.NoError(t, db.First(&parent, "id = ?", existing.ID).Error)
	require.NotNil(t, parent.Name)
	require.Equal(t, "Sam Jones", *parent.Name)
	require.NotNil(t, parent.Phone)
	require.Equal(t, "555-0100", *parent.Phone)
	require.Equal(t, "$argon2id$stub", parent.PasswordHash, "existing credentials must not change")
}

func TestProvisionNeverStealsPhone(t *testing.T) {
	ctx := context.Background()
	db := setupCRMTestDB(t)
	svc := newCRMService(t, db)

	phone := "555-0100"
	other := &models.Parent{
		ID:           uuid.New(),
		Email:        "other@example.com",
		Phone:        &phone,
		PasswordHash: "$argon2id$stub",
	}
	require.NoError(t, db.Create(other).Error)

	target := &models.Parent{
		ID:           uuid.New(),
		Email:        "sam.jones@example.com",
		PasswordHash: "$argon2id$stub",
	}
	require.NoError(t, db.Create(target).Error)

	_, err := svc.Provision(ctx, baseInput())
	require.NoError(t, err)

	var parent models.Parent
	require.NoError(t, db.First(&parent, "id = ?", target.ID).Error)
	require.Nil(t, parent.Phone, "phone already claimed by another parent must not move")

	var untouched models.Parent
	require.NoError(t, db.First(&untouched, "id = ?", other.ID).Error)
	require.NotNil(t, untouched.Phone)
	require.Equal(t, phone, *untouched.Phone)
}

func TestProvisionMatchesCRMParentByEmail(t *testing.T) {
	ctx := context.Background()
	db := setupCRMTestDB(t)
	svc := newCRMService(t, db)

	email := "sam.jones@example.com"
	oldNotes := "Met at spring camp"
	seeded := &models.CRMParent{
		Name:  "Samuel Jones",
		Email: &email,
		Notes: &oldNotes,
	}
	require.NoError(t, db.Create(seeded).Error)

	result, err := svc.Provision(ctx, baseInput())
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.CRMParent{}).Count(&count).Error)
	require.EqualValues(t, 1, count, "existing CRM parent must be reused")

	var parent models.Parent
	require.NoError(t, db.First(&parent, "id = ?", result.ParentID).Error)
	require.NotNil(t, parent.CRMParentID)
	require.Equal(t, seeded.ID, *parent.CRMParentID)

	var crmParent models.CRMParent
	require.NoError(t, db.First(&crmParent, "id = ?", seeded.ID).Error)
	require.Equal(t, "Samuel Jones", crmParent.Name, "non-empty CRM name must not be overwritten")
	require.Contains(t, *crmParent.Notes, "Met at spring camp")
	require.Contains(t, *crmParent.Notes, "Parent: Sam Jones")
}

func TestProvisionRevivesDeadCRMParent(t *testing.T) {
	ctx := context.Background()
	db := setupCRMTestDB(t)
	svc := newCRMService(t, db)

	email := "sam.jones@example.com"
	seeded := &models.CRMParent{
		Name:   "Samuel Jones",
		Email:  &email,
		IsDead: true,
	}
	require.NoError(t, db.Create(seeded).Error)

	_, err := svc.Provision(ctx, baseInput())
	require.NoError(t, err)

	var crmParent models.CRMParent
	require.NoError(t, db.First(&crmParent, "id = ?", seeded.ID).Error)
	require.False(t, crmParent.IsDead, "a booking marks the CRM parent active again")
	require.NotNil(t, crmParent.LastActivityAt)
}

func TestProvisionPlayerNameCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	db := setupCRMTestDB(t)
	svc := newCRMService(t, db)

	first, err := svc.Provision(ctx, baseInput())
	require.NoError(t, err)

	input := baseInput()
	input.FirstName = "ALEX"
	input.LastName = "jones"
	input.PlayerAge = 11
	input.PreferredFoot = "right"

	second, err := svc.Provision(ctx, input)
	require.NoError(t, err)
	require.Equal(t, first.PlayerID, second.PlayerID)

	var player models.Player
	require.NoError(t, db.First(&player, "id = ?", first.PlayerID).Error)
	require.Equal(t, 11, player.Age, "age always refreshes")
	require.NotNil(t, player.PreferredFoot)
	require.Equal(t, "left", *player.PreferredFoot, "non-empty foot must not be overwritten")
}

func TestProvisionRefreshesCRMPlayerTeamAndBirthday(t *testing.T) {
	ctx := context.Background()
	db := setupCRMTestDB(t)
	svc := newCRMService(t, db)

	first, err := svc.Provision(ctx, baseInput())
	require.NoError(t, err)

	birthday := time.Date(2015, 3, 9, 0, 0, 0, 0, time.UTC)
	input := baseInput()
	input.Team = "U12 Black"
	input.Birthdate = &birthday

	_, err = svc.Provision(ctx, input)
	require.NoError(t, err)

	var player models.Player
	require.NoError(t, db.First(&player, "id = ?", first.PlayerID).Error)
	require.NotNil(t, player.Team)
	require.Equal(t, "U11 Gold", *player.Team, "portal team is backfill-only")
	require.NotNil(t, player.Birthdate)

	var crmPlayer models.CRMPlayer
	require.NoError(t, db.First(&crmPlayer, "id = ?", *player.CRMPlayerID).Error)
	require.NotNil(t, crmPlayer.Team)
	require.Equal(t, "U12 Black", *crmPlayer.Team, "CRM team follows the latest booking")
	require.NotNil(t, crmPlayer.Birthday)
}

func TestProvisionRequiresEmailAndName(t *testing.T) {
	ctx := context.Background()
	db := setupCRMTestDB(t)
	svc := newCRMService(t, db)

	input := baseInput()
	input.ContactEmail = "   "
	_, err := svc.Provision(ctx, input)
	require.Error(t, err)

	input = baseInput()
	input.FirstName = " "
	input.LastName = ""
	_, err = svc.Provision(ctx, input)
	require.Error(t, err)
}
