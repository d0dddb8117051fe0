package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/olimjonn/warehub-backend/pkg/auth"
	"github.com/olimjonn/warehub-backend/pkg/config"
	"github.com/olimjonn/warehub-backend/pkg/db/models"
	"github.com/olimjonn/warehub-backend/pkg/enums"
	pkgerrors "github.com/olimjonn/warehub-backend/pkg/errors"
	"github.com/olimjonn/warehub-backend/pkg/security"
)

type fakeRepo struct {
	usersByEmail map[string]*models.User
	rolesByUser  map[uuid.UUID]*models.Role
	createdUsers []*models.User
	createdRoles []*models.Role
	loginAt      *time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		usersByEmail: map[string]*models.User{},
		rolesByUser:  map[uuid.UUID]*models.Role{},
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error {
	for _, u := range f.usersByEmail {
		if u.ID == userID {
			u.IsActive = active
		}
	}
	return nil
}

func (f *fakeRepo) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	for _, u := range f.usersByEmail {
		if u.ID == userID {
			u.Blocked = blocked
		}
	}
	return nil
}

func (f *fakeRepo) SetBlockedForWarehouseSellers(ctx context.Context, warehouseID uuid.UUID, blocked bool) (int64, error) {
	var n int64
	for userID, role := range f.rolesByUser {
		if role.Kind != enums.RoleSeller || role.WarehouseID == nil || *role.WarehouseID != warehouseID {
			continue
		}
		for _, u := range f.usersByEmail {
			if u.ID == userID {
				u.Blocked = blocked
				n++
			}
		}
	}
	return n, nil
}

func (f *fakeRepo) CreateUser(ctx context.Context, user *models.User) error {
	if _, exists := f.usersByEmail[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.usersByEmail[user.Email] = user
	f.createdUsers = append(f.createdUsers, user)
	return nil
}

func (f *fakeRepo) CreateRole(ctx context.Context, role *models.Role) error {
	f.rolesByUser[role.UserID] = role
	f.createdRoles = append(f.createdRoles, role)
	return nil
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.usersByEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range f.usersByEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) RoleFor(ctx context.Context, userID uuid.UUID) (*models.Role, error) {
	role, ok := f.rolesByUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return role, nil
}

func (f *fakeRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.loginAt = &at
	return nil
}

func (f *fakeRepo) ListSellers(ctx context.Context, warehouseID uuid.UUID) ([]SellerRow, error) {
	var rows []SellerRow
	for userID, role := range f.rolesByUser {
		if role.Kind != enums.RoleSeller || role.WarehouseID == nil || *role.WarehouseID != warehouseID {
			continue
		}
		for _, u := range f.usersByEmail {
			if u.ID == userID {
				rows = append(rows, SellerRow{User: *u, RoleWarehouseID: warehouseID, CreatedByUserID: role.CreatedByUserID})
			}
		}
	}
	return rows, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeEnroller struct {
	enrolled []uuid.UUID
}

func (f *fakeEnroller) EnrollManager(ctx context.Context, tx *gorm.DB, userID, warehouseID uuid.UUID) error {
	f.enrolled = append(f.enrolled, userID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "warehub", ExpirationMinutes: 30}
}

func buildTestService(t *testing.T, repo *fakeRepo) (Service, *fakeEnroller) {
	t.Helper()
	enroller := &fakeEnroller{}
	svc, err := NewService(ServiceParams{
		Repo:      repo,
		TxRunner:  fakeTxRunner{},
		Enroller:  enroller,
		JWTConfig: testJWTConfig(),
		// Tokens are parsed back with real-clock validation, so the
		// injected clock has to stay near the wall clock.
		Now: time.Now,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, enroller
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func seedManager(t *testing.T, repo *fakeRepo, password string, warehouseID uuid.UUID) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "manager@example.com",
		PasswordHash: mustHashPassword(t, password),
		FirstName:    "Olim",
		LastName:     "Karimov",
		IsActive:     true,
	}
	repo.usersByEmail[user.Email] = user
	repo.rolesByUser[user.ID] = &models.Role{
		UserID:      user.ID,
		Kind:        enums.RoleWarehouseManager,
		WarehouseID: &warehouseID,
	}
	return user
}

func TestLoginMintsScopedToken(t *testing.T) {
	repo := newFakeRepo()
	warehouseID := uuid.New()
	user := seedManager(t, repo, "manager-secret", warehouseID)
	svc, _ := buildTestService(t, repo)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "manager-secret"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.RoleWarehouseManager {
		t.Fatalf("expected manager role claim, got %s", claims.Role)
	}
	if claims.WarehouseID == nil || *claims.WarehouseID != warehouseID {
		t.Fatal("expected warehouse scope in claims")
	}
	if repo.loginAt == nil {
		t.Fatal("expected last login to be recorded")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newFakeRepo()
	user := seedManager(t, repo, "right-password", uuid.New())
	svc, _ := buildTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong-password"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	repo := newFakeRepo()
	user := seedManager(t, repo, "secret-pass", uuid.New())
	user.IsActive = false
	svc, _ := buildTestService(t, repo)

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "secret-pass"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCreateManagerEnrollsSubscription(t *testing.T) {
	repo := newFakeRepo()
	svc, enroller := buildTestService(t, repo)
	warehouseID := uuid.New()
	adminID := uuid.New()

	dto, err := svc.CreateManager(context.Background(), adminID, CreateManagerRequest{
		Email:       "new.manager@example.com",
		Password:    "manager-pass",
		FirstName:   "Aziza",
		LastName:    "Tosheva",
		WarehouseID: warehouseID,
	})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}

	if dto.Role != enums.RoleWarehouseManager {
		t.Fatalf("expected manager role, got %s", dto.Role)
	}
	if dto.WarehouseID == nil || *dto.WarehouseID != warehouseID {
		t.Fatal("expected warehouse scope on created manager")
	}
	if len(enroller.enrolled) != 1 || enroller.enrolled[0] != dto.ID {
		t.Fatal("expected subscription enrollment for new manager")
	}
	if len(repo.createdRoles) != 1 || repo.createdRoles[0].CreatedByUserID == nil || *repo.createdRoles[0].CreatedByUserID != adminID {
		t.Fatal("expected role to record the creating admin")
	}
}

// A seller's warehouse always comes from the creating manager, never from the
// request, so cross-warehouse seller creation is impossible by construction.
func TestCreateSellerInheritsManagerWarehouse(t *testing.T) {
	repo := newFakeRepo()
	svc, enroller := buildTestService(t, repo)
	warehouseID := uuid.New()
	managerID := uuid.New()

	dto, err := svc.CreateSeller(context.Background(), managerID, warehouseID, CreateSellerRequest{
		Email:     "seller@example.com",
		Password:  "seller-pass",
		FirstName: "Bek",
		LastName:  "Rahimov",
	})
	if err != nil {
		t.Fatalf("create seller: %v", err)
	}

	if dto.Role != enums.RoleSeller {
		t.Fatalf("expected seller role, got %s", dto.Role)
	}
	if dto.WarehouseID == nil || *dto.WarehouseID != warehouseID {
		t.Fatal("expected seller pinned to manager warehouse")
	}
	if len(enroller.enrolled) != 0 {
		t.Fatal("sellers must not get subscription accounts")
	}
}

func TestListSellersScopedToWarehouse(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := buildTestService(t, repo)
	mine := uuid.New()
	other := uuid.New()
	managerID := uuid.New()

	if _, err := svc.CreateSeller(context.Background(), managerID, mine, CreateSellerRequest{
		Email: "a@example.com", Password: "password-1", FirstName: "A", LastName: "A",
	}); err != nil {
		t.Fatalf("create seller: %v", err)
	}
	if _, err := svc.CreateSeller(context.Background(), managerID, other, CreateSellerRequest{
		Email: "b@example.com", Password: "password-2", FirstName: "B", LastName: "B",
	}); err != nil {
		t.Fatalf("create seller: %v", err)
	}

	sellers, err := svc.ListSellers(context.Background(), mine)
	if err != nil {
		t.Fatalf("list sellers: %v", err)
	}
	if len(sellers) != 1 || sellers[0].Email != "a@example.com" {
		t.Fatalf("expected only the in-warehouse seller, got %d", len(sellers))
	}
}
