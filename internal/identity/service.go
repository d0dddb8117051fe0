package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/olimjonn/warehub-backend/pkg/auth"
	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/db"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
	"github.com/olimjonn/warehub-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the identity behavior used by controllers and the billing
// cascade.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	CreateManager(ctx context.Context, createdBy uuid.UUID, req CreateManagerRequest) (*UserDTO, error)
	CreateSeller(ctx context.Context, createdBy uuid.UUID, warehouseID uuid.UUID, req CreateSellerRequest) (*UserDTO, error)
	ListSellers(ctx context.Context, warehouseID uuid.UUID) ([]*UserDTO, error)
	Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	SetSellerActive(ctx context.Context, warehouseID, sellerID uuid.UUID, active bool) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// subscriptionEnroller opens a subscription account for a freshly created
// manager inside the same transaction.
type subscriptionEnroller interface {
	EnrollManager(ctx context.Context, tx *gorm.DB, userID, warehouseID uuid.UUID) error
}

type service struct {
	repo        Repository
	tx          txRunner
	enroller    subscriptionEnroller
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an identity service.
type ServiceParams struct {
	Repo           Repository
	TxRunner       txRunner
	Enroller       subscriptionEnroller
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Now            func() time.Time
}

// NewService constructs an identity service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("identity repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Enroller == nil {
		return nil, fmt.Errorf("subscription enroller is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		tx:          params.TxRunner,
		enroller:    params.Enroller,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		now:         now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up user")
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	ok, err := security.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	role, err := s.repo.RoleFor(ctx, user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading role")
	}

	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID:      user.ID,
		Role:        role.Kind,
		WarehouseID: role.WarehouseID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording login")
	}
	user.LastLoginAt = &now

	return &LoginResponse{
		AccessToken: token,
		ExpiresAt:   now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute).Unix(),
		User:        FromModel(user, role),
	}, nil
}

// CreateManager registers a warehouse manager, their scoped role and their
// subscription account in one transaction. Admin-gated at the controller.
func (s *service) CreateManager(ctx context.Context, createdBy uuid.UUID, req CreateManagerRequest) (*UserDTO, error) {
	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		CompanyName:  req.CompanyName,
		Telegram:     req.Telegram,
		IsActive:     true,
	}
	role := &models.Role{
		Kind:            enums.RoleWarehouseManager,
		WarehouseID:     &req.WarehouseID,
		CreatedByUserID: &createdBy,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateUser(ctx, user); err != nil {
			return err
		}
		role.UserID = user.ID
		if err := repo.CreateRole(ctx, role); err != nil {
			return err
		}
		return s.enroller.EnrollManager(ctx, tx, user.ID, req.WarehouseID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating manager")
	}

	return FromModel(user, role), nil
}

// CreateSeller registers a seller pinned to the creating manager's warehouse.
// The warehouse comes from the authenticated actor, never from the request
// body, so a seller can only ever belong to their manager's warehouse.
func (s *service) CreateSeller(ctx context.Context, createdBy uuid.UUID, warehouseID uuid.UUID, req CreateSellerRequest) (*UserDTO, error) {
	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		IsActive:     true,
	}
	role := &models.Role{
		Kind:            enums.RoleSeller,
		WarehouseID:     &warehouseID,
		CreatedByUserID: &createdBy,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateUser(ctx, user); err != nil {
			return err
		}
		role.UserID = user.ID
		return repo.CreateRole(ctx, role)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating seller")
	}

	return FromModel(user, role), nil
}

func (s *service) ListSellers(ctx context.Context, warehouseID uuid.UUID) ([]*UserDTO, error) {
	rows, err := s.repo.ListSellers(ctx, warehouseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing sellers")
	}
	sellers := make([]*UserDTO, 0, len(rows))
	for i := range rows {
		wh := rows[i].RoleWarehouseID
		role := &models.Role{
			UserID:          rows[i].User.ID,
			Kind:            enums.RoleSeller,
			WarehouseID:     &wh,
			CreatedByUserID: rows[i].CreatedByUserID,
		}
		sellers = append(sellers, FromModel(&rows[i].User, role))
	}
	return sellers, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	role, err := s.repo.RoleFor(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading role")
	}
	return FromModel(user, role), nil
}

// SetSellerActive toggles a seller account, verifying the seller belongs to
// the caller's warehouse first so the scope check cannot be bypassed by ID.
func (s *service) SetSellerActive(ctx context.Context, warehouseID, sellerID uuid.UUID, active bool) error {
	role, err := s.repo.RoleFor(ctx, sellerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading role")
	}
	if role.Kind != enums.RoleSeller || role.WarehouseID == nil || *role.WarehouseID != warehouseID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
	}

	if err := s.repo.SetUserActive(ctx, sellerID, active); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating seller")
	}
	return nil
}
