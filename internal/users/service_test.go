package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/laundryease/backend/pkg/config"
	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
	"github.com/laundryease/backend/pkg/geocode"
	"github.com/laundryease/backend/pkg/pagination"
	"github.com/laundryease/backend/pkg/security"
)

type fakeRepository struct {
	users     map[uuid.UUID]*models.User
	createErr error
	updated   []*models.User
	newHash   string
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return errors.New(`duplicate key value violates unique constraint "users_email_key"`)
		}
	}
	user.ID = uuid.New()
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) Update(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	f.updated = append(f.updated, user)
	return nil
}

func (f *fakeRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	if user, ok := f.users[id]; ok {
		user.PasswordHash = hash
	}
	f.newHash = hash
	return nil
}

func (f *fakeRepository) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	rows := make([]models.User, 0, len(f.users))
	for _, user := range f.users {
		rows = append(rows, *user)
	}
	return rows, int64(len(rows)), nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "laundryease-test", ExpirationMinutes: 60}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

type fakeGeocoder struct {
	coords geocode.Coordinates
	err    error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (geocode.Coordinates, error) {
	if f.err != nil {
		return geocode.Coordinates{}, f.err
	}
	return f.coords, nil
}

func newTestService(repo Repository) Service {
	return newTestServiceWithGeocoder(repo, nil)
}

func newTestServiceWithGeocoder(repo Repository, geocoder geocode.Geocoder) Service {
	svc, err := NewService(repo, geocoder, testJWTConfig(), testPasswordConfig(), nil)
	if err != nil {
		panic(err)
	}
	return svc
}

func TestService_SignupIssuesTokenAndHidesHash(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	result, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Asha Shrestha",
		Email:    "asha@example.com",
		Password: "sudsy-password-1",
		Phone:    "9800000001",
		Address:  "Baneshwor, Kathmandu",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a signed token")
	}
	if result.User.Role != enums.RoleUser {
		t.Fatalf("new accounts must default to user role, got %s", result.User.Role)
	}
	if result.User.Address == nil || *result.User.Address != "Baneshwor, Kathmandu" {
		t.Fatal("address not carried through")
	}

	stored := repo.users[result.User.ID]
	if stored.PasswordHash == "sudsy-password-1" {
		t.Fatal("password stored in plain text")
	}
	if ok, _ := security.VerifyPassword("sudsy-password-1", stored.PasswordHash); !ok {
		t.Fatal("stored hash does not verify")
	}
}

func TestService_SignupGeocodesAddress(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestServiceWithGeocoder(repo, &fakeGeocoder{
		coords: geocode.Coordinates{Longitude: 85.3240, Latitude: 27.7172},
	})

	result, err := svc.Signup(context.Background(), SignupInput{
		Name: "Asha", Email: "asha@example.com", Password: "sudsy-password-1",
		Phone: "9800000001", Address: "Kathmandu",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if result.User.Coordinates != [2]float64{85.3240, 27.7172} {
		t.Fatalf("unexpected coordinates %v", result.User.Coordinates)
	}
}

func TestService_SignupGeocodeFailureFallsBackToZero(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestServiceWithGeocoder(repo, &fakeGeocoder{err: errors.New("nominatim down")})

	result, err := svc.Signup(context.Background(), SignupInput{
		Name: "Asha", Email: "asha@example.com", Password: "sudsy-password-1",
		Phone: "9800000001", Address: "Nowhere",
	})
	if err != nil {
		t.Fatalf("geocode failure must not block signup: %v", err)
	}
	if result.User.Coordinates != [2]float64{0, 0} {
		t.Fatalf("expected zero coordinates, got %v", result.User.Coordinates)
	}
}

func TestService_SignupLowercasesEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	result, err := svc.Signup(context.Background(), SignupInput{
		Name: "Asha", Email: "Asha@Example.COM", Password: "sudsy-password-1", Phone: "9800000001",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	if result.User.Email != "asha@example.com" {
		t.Fatalf("email not normalized: %s", result.User.Email)
	}

	if _, err := svc.Login(context.Background(), LoginInput{
		Email: "ASHA@example.com", Password: "sudsy-password-1",
	}); err != nil {
		t.Fatalf("login with differently cased email failed: %v", err)
	}
}

func TestService_SignupDuplicateEmailConflicts(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	input := SignupInput{Name: "Asha", Email: "asha@example.com", Password: "sudsy-password-1", Phone: "9800000001"}
	if _, err := svc.Signup(context.Background(), input); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}

	_, err := svc.Signup(context.Background(), input)
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestService_LoginWrongPasswordUnauthorized(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	if _, err := svc.Signup(context.Background(), SignupInput{
		Name: "Asha", Email: "asha@example.com", Password: "sudsy-password-1", Phone: "9800000001",
	}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	_, err := svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "wrong"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "x"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("unknown email must also be unauthorized, got %v", err)
	}

	result, err := svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "sudsy-password-1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a signed token")
	}
}

func TestService_UpdateProfilePartial(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	signed, err := svc.Signup(context.Background(), SignupInput{
		Name: "Asha", Email: "asha@example.com", Password: "sudsy-password-1", Phone: "9800000001",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	newName := "Asha S."
	dto, err := svc.UpdateProfile(context.Background(), signed.User.ID, UpdateProfileInput{Name: &newName})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if dto.Name != "Asha S." {
		t.Fatalf("name not updated: %s", dto.Name)
	}
	if dto.Phone != "9800000001" {
		t.Fatalf("phone must be untouched, got %s", dto.Phone)
	}
}

func TestService_ChangePasswordChecksCurrent(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	signed, err := svc.Signup(context.Background(), SignupInput{
		Name: "Asha", Email: "asha@example.com", Password: "sudsy-password-1", Phone: "9800000001",
	})
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	err = svc.ChangePassword(context.Background(), signed.User.ID, ChangePasswordInput{
		CurrentPassword: "wrong",
		NewPassword:     "another-password-2",
	})
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	err = svc.ChangePassword(context.Background(), signed.User.ID, ChangePasswordInput{
		CurrentPassword: "sudsy-password-1",
		NewPassword:     "another-password-2",
	})
	if err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if ok, _ := security.VerifyPassword("another-password-2", repo.newHash); !ok {
		t.Fatal("new hash does not verify")
	}
}

func TestService_ListMapsToDTOs(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	for _, email := range []string{"a@example.com", "b@example.com"} {
		if _, err := svc.Signup(context.Background(), SignupInput{
			Name: "User", Email: email, Password: "sudsy-password-1", Phone: "9800000001",
		}); err != nil {
			t.Fatalf("signup failed: %v", err)
		}
	}

	rows, total, err := svc.List(context.Background(), pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("unexpected list total=%d rows=%d", total, len(rows))
	}
}
