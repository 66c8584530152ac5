package areas

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
)

func setupAreasDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{
		`CREATE TABLE IF NOT EXISTS serviceable_areas (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  city TEXT NOT NULL,
  pincodes TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS agent_areas (
  agent_id TEXT NOT NULL,
  area_id TEXT NOT NULL,
  created_at DATETIME,
  PRIMARY KEY (agent_id, area_id)
);`,
		`CREATE TABLE IF NOT EXISTS delivery_agents (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending_approval',
  phone TEXT NOT NULL,
  vehicle_number TEXT,
  photo_path TEXT,
  max_deliveries INTEGER,
  active_order_count INTEGER NOT NULL DEFAULT 0,
  approved_at DATETIME,
  rejected_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  phone TEXT,
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  default_address TEXT,
  device_token TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range schemas {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type fakeAgentLoader struct {
	agents map[uuid.UUID]*models.DeliveryAgent
}

func (f *fakeAgentLoader) FindByID(_ context.Context, id uuid.UUID) (*models.DeliveryAgent, error) {
	agent, ok := f.agents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return agent, nil
}

func newAreasService(t *testing.T, db *gorm.DB, loader *fakeAgentLoader) Service {
	t.Helper()
	if loader == nil {
		loader = &fakeAgentLoader{agents: map[uuid.UUID]*models.DeliveryAgent{}}
	}
	svc, err := NewService(NewRepository(db), loader)
	require.NoError(t, err)
	return svc
}

func TestCreateAreaTrimsAndActivates(t *testing.T) {
	svc := newAreasService(t, setupAreasDB(t), nil)

	area, err := svc.Create(context.Background(), CreateAreaInput{
		Name:     "  Indiranagar  ",
		City:     " Bengaluru ",
		Pincodes: []string{"560038"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Indiranagar", area.Name)
	assert.Equal(t, "Bengaluru", area.City)
	assert.True(t, area.IsActive)
}

func TestCreateAreaRejectsBlankName(t *testing.T) {
	svc := newAreasService(t, setupAreasDB(t), nil)

	_, err := svc.Create(context.Background(), CreateAreaInput{Name: "   ", City: "Pune"})
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestCreateAreaDuplicateNameConflicts(t *testing.T) {
	svc := newAreasService(t, setupAreasDB(t), nil)

	_, err := svc.Create(context.Background(), CreateAreaInput{Name: "Koramangala", City: "Bengaluru"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateAreaInput{Name: "Koramangala", City: "Bengaluru"})
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestListHidesInactiveZonesByDefault(t *testing.T) {
	svc := newAreasService(t, setupAreasDB(t), nil)

	_, err := svc.Create(context.Background(), CreateAreaInput{Name: "HSR Layout", City: "Bengaluru"})
	require.NoError(t, err)
	retired, err := svc.Create(context.Background(), CreateAreaInput{Name: "Whitefield", City: "Bengaluru"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(context.Background(), retired.ID))

	visible, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "HSR Layout", visible[0].Name)

	all, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateAreaPartialEdit(t *testing.T) {
	svc := newAreasService(t, setupAreasDB(t), nil)

	area, err := svc.Create(context.Background(), CreateAreaInput{Name: "Jayanagar", City: "Bengaluru"})
	require.NoError(t, err)

	city := "Bangalore South"
	updated, err := svc.Update(context.Background(), area.ID, UpdateAreaInput{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Jayanagar", updated.Name)
	assert.Equal(t, "Bangalore South", updated.City)
}

func TestAssignAgentRequiresApprovedAgent(t *testing.T) {
	db := setupAreasDB(t)
	agentID := uuid.New()
	loader := &fakeAgentLoader{agents: map[uuid.UUID]*models.DeliveryAgent{
		agentID: {ID: agentID, Status: enums.AgentStatusPendingApproval},
	}}
	svc := newAreasService(t, db, loader)

	area, err := svc.Create(context.Background(), CreateAreaInput{Name: "BTM Layout", City: "Bengaluru"})
	require.NoError(t, err)

	err = svc.AssignAgent(context.Background(), area.ID, agentID)
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestAssignAgentIsIdempotent(t *testing.T) {
	db := setupAreasDB(t)
	agentID := uuid.New()
	loader := &fakeAgentLoader{agents: map[uuid.UUID]*models.DeliveryAgent{
		agentID: {ID: agentID, Status: enums.AgentStatusApproved},
	}}
	svc := newAreasService(t, db, loader)

	area, err := svc.Create(context.Background(), CreateAreaInput{Name: "Malleswaram", City: "Bengaluru"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignAgent(context.Background(), area.ID, agentID))
	require.NoError(t, svc.AssignAgent(context.Background(), area.ID, agentID))

	var count int64
	require.NoError(t, db.Table("agent_areas").Where("area_id = ?", area.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUnassignAgentRemovesLink(t *testing.T) {
	db := setupAreasDB(t)
	agentID := uuid.New()
	loader := &fakeAgentLoader{agents: map[uuid.UUID]*models.DeliveryAgent{
		agentID: {ID: agentID, Status: enums.AgentStatusApproved},
	}}
	svc := newAreasService(t, db, loader)

	area, err := svc.Create(context.Background(), CreateAreaInput{Name: "Hebbal", City: "Bengaluru"})
	require.NoError(t, err)
	require.NoError(t, svc.AssignAgent(context.Background(), area.ID, agentID))

	require.NoError(t, svc.UnassignAgent(context.Background(), area.ID, agentID))

	var count int64
	require.NoError(t, db.Table("agent_areas").Where("area_id = ?", area.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestAssignAgentUnknownAgentIsNotFound(t *testing.T) {
	svc := newAreasService(t, setupAreasDB(t), nil)

	area, err := svc.Create(context.Background(), CreateAreaInput{Name: "Yelahanka", City: "Bengaluru"})
	require.NoError(t, err)

	err = svc.AssignAgent(context.Background(), area.ID, uuid.New())
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetUnknownAreaIsNotFound(t *testing.T) {
	svc := newAreasService(t, setupAreasDB(t), nil)

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)

	var typed *pkgerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestAreaCreatedInactiveStaysInactive(t *testing.T) {
	db := setupAreasDB(t)

	area := models.ServiceableArea{
		ID:       uuid.New(),
		Name:     "Mulund East",
		City:     "Mumbai",
		IsActive: false,
	}
	require.NoError(t, db.Create(&area).Error)

	var reloaded models.ServiceableArea
	require.NoError(t, db.First(&reloaded, "id = ?", area.ID).Error)
	assert.False(t, reloaded.IsActive)
}
