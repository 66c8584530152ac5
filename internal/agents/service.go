package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/greenbasket/greenbasket-backend/internal/users"
	"github.com/greenbasket/greenbasket-backend/pkg/config"
	dbpkg "github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/db/models"
	"github.com/greenbasket/greenbasket-backend/pkg/enums"
	pkgerrors "github.com/greenbasket/greenbasket-backend/pkg/errors"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox/payloads"
	"github.com/greenbasket/greenbasket-backend/pkg/security"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type objectStorage interface {
	DefaultBucket() string
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
	SignedReadURL(bucket, object string, expires time.Duration) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
}

// Service manages agent onboarding, admin decisions, and agent profile.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AgentDTO, error)
	Profile(ctx context.Context, agentID uuid.UUID) (*AgentDTO, error)
	List(ctx context.Context, status *enums.AgentStatus) ([]AgentDTO, error)
	PhotoUploadURL(ctx context.Context, agentID uuid.UUID, contentType string) (*PhotoUploadDTO, error)
	SetPhoto(ctx context.Context, agentID uuid.UUID, objectKey string) error
	UpdateCapacity(ctx context.Context, agentID uuid.UUID, input UpdateCapacityInput) error
	Approve(ctx context.Context, adminUserID, agentID uuid.UUID) error
	Reject(ctx context.Context, adminUserID, agentID uuid.UUID) error
}

type service struct {
	repo    *Repository
	users   *users.Repository
	tx      txRunner
	outbox  outboxPublisher
	storage objectStorage
	gcsCfg  config.GCSConfig
	pwCfg   config.PasswordConfig
	logg    *logger.Logger
}

// ServiceParams bundles the dependencies for the agents service.
type ServiceParams struct {
	Repo           *Repository
	UserRepo       *users.Repository
	Tx             txRunner
	Outbox         outboxPublisher
	Storage        objectStorage
	GCSConfig      config.GCSConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

// NewService builds the agents service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("agents repository required")
	}
	if params.UserRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repo,
		users:   params.UserRepo,
		tx:      params.Tx,
		outbox:  params.Outbox,
		storage: params.Storage,
		gcsCfg:  params.GCSConfig,
		pwCfg:   params.PasswordConfig,
		logg:    params.Logger,
	}, nil
}

// Signup creates the user account and the pending agent row atomically.
func (s *service) Signup(ctx context.Context, req SignupRequest) (*AgentDTO, error) {
	hash, err := security.HashPassword(req.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var agent *models.DeliveryAgent
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.users.WithTx(tx).Create(ctx, users.CreateUserDTO{
			Email:        req.Email,
			PasswordHash: hash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        &req.Phone,
			Role:         enums.RoleAgent,
		})
		if err != nil {
			if dbpkg.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		agent, err = s.repo.WithTx(tx).Create(ctx, &models.DeliveryAgent{
			UserID:        user.ID,
			Status:        enums.AgentStatusPendingApproval,
			Phone:         strings.TrimSpace(req.Phone),
			VehicleNumber: req.VehicleNumber,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agent")
		}
		agent.User = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fromModel(agent, nil), nil
}

func (s *service) Profile(ctx context.Context, agentID uuid.UUID) (*AgentDTO, error) {
	agent, err := s.load(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return fromModel(agent, s.photoURL(ctx, agent)), nil
}

func (s *service) List(ctx context.Context, status *enums.AgentStatus) ([]AgentDTO, error) {
	agents, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
	}
	out := make([]AgentDTO, 0, len(agents))
	for i := range agents {
		out = append(out, *fromModel(&agents[i], s.photoURL(ctx, &agents[i])))
	}
	return out, nil
}

// PhotoUploadURL hands the client a short-lived presigned PUT for the
// agent's photo object.
func (s *service) PhotoUploadURL(ctx context.Context, agentID uuid.UUID, contentType string) (*PhotoUploadDTO, error) {
	if s.storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "object storage not configured")
	}
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content type must be an image")
	}
	if _, err := s.load(ctx, agentID); err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("agents/%s/photo", agentID)
	url, err := s.storage.SignedURL(s.storage.DefaultBucket(), objectKey, contentType, s.gcsCfg.UploadURLExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}
	return &PhotoUploadDTO{
		UploadURL: url,
		ObjectKey: objectKey,
		ExpiresAt: time.Now().Add(s.gcsCfg.UploadURLExpiry).UTC().Format(time.RFC3339),
	}, nil
}

// SetPhoto records the uploaded object key on the agent row.
func (s *service) SetPhoto(ctx context.Context, agentID uuid.UUID, objectKey string) error {
	expectedPrefix := fmt.Sprintf("agents/%s/", agentID)
	if !strings.HasPrefix(objectKey, expectedPrefix) {
		return pkgerrors.New(pkgerrors.CodeValidation, "object key does not belong to agent")
	}
	if _, err := s.load(ctx, agentID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, agentID, map[string]any{"photo_path": objectKey}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save photo path")
	}
	return nil
}

func (s *service) UpdateCapacity(ctx context.Context, agentID uuid.UUID, input UpdateCapacityInput) error {
	if input.MaxDeliveries < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max deliveries must be positive")
	}
	if _, err := s.load(ctx, agentID); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, agentID, map[string]any{"max_deliveries": input.MaxDeliveries}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update capacity")
	}
	return nil
}

// Approve moves a pending agent into the matcher's candidate pool.
func (s *service) Approve(ctx context.Context, adminUserID, agentID uuid.UUID) error {
	return s.decide(ctx, adminUserID, agentID, enums.AgentStatusApproved)
}

// Reject closes out a pending application and removes the uploaded photo.
func (s *service) Reject(ctx context.Context, adminUserID, agentID uuid.UUID) error {
	return s.decide(ctx, adminUserID, agentID, enums.AgentStatusRejected)
}

func (s *service) decide(ctx context.Context, adminUserID, agentID uuid.UUID, decision enums.AgentStatus) error {
	if adminUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	var photoPath *string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		agent, err := repo.FindByID(ctx, agentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
		}
		if agent.Status != enums.AgentStatusPendingApproval {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "agent already decided")
		}

		now := time.Now().UTC()
		updates := map[string]any{"status": decision}
		eventType := enums.EventAgentApproved
		if decision == enums.AgentStatusApproved {
			updates["approved_at"] = now
		} else {
			updates["rejected_at"] = now
			updates["photo_path"] = nil
			eventType = enums.EventAgentRejected
			photoPath = agent.PhotoPath
		}
		if err := repo.Update(ctx, agent.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent status")
		}

		actor := &outbox.ActorRef{UserID: adminUserID, Role: enums.RoleAdmin.String()}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateAgent,
			AggregateID:   agent.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.AgentDecisionEvent{
				AgentID: agent.ID,
				UserID:  agent.UserID,
				Status:  decision,
			},
		}); err != nil {
			return err
		}

		title, body := decisionNotification(decision)
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventNotificationRequested,
			AggregateType: enums.AggregateAgent,
			AggregateID:   agent.ID,
			Version:       1,
			Actor:         actor,
			Data: payloads.NotificationRequestedEvent{
				UserID: agent.UserID,
				Type:   enums.NotificationTypeAgentOnboarding,
				Title:  title,
				Body:   body,
			},
		})
	})
	if err != nil {
		return err
	}

	// Best-effort cleanup outside the transaction; the object store is not
	// part of the commit and a failed delete only leaves an orphan object.
	if photoPath != nil && s.storage != nil {
		if err := s.storage.DeleteObject(ctx, s.storage.DefaultBucket(), *photoPath); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "object", *photoPath), "agent photo cleanup failed")
		}
	}
	return nil
}

func decisionNotification(decision enums.AgentStatus) (string, string) {
	if decision == enums.AgentStatusApproved {
		return "Application approved", "Your delivery agent application has been approved. You can start accepting deliveries."
	}
	return "Application update", "Your delivery agent application was not approved at this time."
}

func (s *service) load(ctx context.Context, agentID uuid.UUID) (*models.DeliveryAgent, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "agent identity missing")
	}
	agent, err := s.repo.FindByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	return agent, nil
}

func (s *service) photoURL(ctx context.Context, agent *models.DeliveryAgent) *string {
	if s.storage == nil || agent.PhotoPath == nil {
		return nil
	}
	url, err := s.storage.SignedReadURL(s.storage.DefaultBucket(), *agent.PhotoPath, s.gcsCfg.DownloadURLExpiry)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "agent_id", agent.ID.String()), "sign photo url failed")
		return nil
	}
	return &url
}
