package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/laundryease/backend/pkg/db/models"
	"github.com/laundryease/backend/pkg/enums"
	pkgerrors "github.com/laundryease/backend/pkg/errors"
	"github.com/laundryease/backend/pkg/pagination"
)

type fakeRepository struct {
	services map[uuid.UUID]*models.Service
	listFn   func(ctx context.Context, params listServicesParams) ([]models.Service, int64, error)
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{services: map[uuid.UUID]*models.Service{}}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, service *models.Service) error {
	service.ID = uuid.New()
	f.services[service.ID] = service
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	if service, ok := f.services[id]; ok {
		copied := *service
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepository) List(ctx context.Context, params listServicesParams) ([]models.Service, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, 0, nil
}

func (f *fakeRepository) Update(ctx context.Context, service *models.Service) error {
	f.services[service.ID] = service
	return nil
}

func (f *fakeRepository) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	service, ok := f.services[id]
	if !ok || !service.IsActive {
		return false, nil
	}
	service.IsActive = false
	return true, nil
}

func newTestService(repo Repository) Service {
	svc, err := NewService(repo, nil)
	if err != nil {
		panic(err)
	}
	return svc
}

func validCreateInput() CreateServiceInput {
	return CreateServiceInput{
		Name:               "Wash & Fold",
		Description:        "Standard wash and fold per kilo.",
		Category:           "washing",
		BasePrice:          decimal.NewFromInt(150),
		EstimatedTimeHours: 24,
		Items: []ServiceItemInput{
			{Name: "Shirt", Price: decimal.NewFromInt(50)},
			{Name: "Trousers", Price: decimal.NewFromInt(80)},
		},
	}
}

func TestService_CreateDefaultsActive(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	entry, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !entry.IsActive {
		t.Fatal("new services must start active")
	}
	if entry.Category != enums.CategoryWashing {
		t.Fatalf("unexpected category %s", entry.Category)
	}
	if len(entry.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(entry.Items))
	}
}

func TestService_CreateRejectsBadCategory(t *testing.T) {
	svc := newTestService(newFakeRepository())

	input := validCreateInput()
	input.Category = "folding"
	_, err := svc.Create(context.Background(), input)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_CreateRejectsNonPositivePrices(t *testing.T) {
	svc := newTestService(newFakeRepository())

	input := validCreateInput()
	input.BasePrice = decimal.Zero
	if _, err := svc.Create(context.Background(), input); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for base price, got %v", err)
	}

	input = validCreateInput()
	input.Items[0].Price = decimal.NewFromInt(-5)
	if _, err := svc.Create(context.Background(), input); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for negative item price, got %v", err)
	}

	input = validCreateInput()
	input.Items = nil
	if _, err := svc.Create(context.Background(), input); pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty item list, got %v", err)
	}
}

func TestService_ListParsesCategoryFilter(t *testing.T) {
	repo := newFakeRepository()
	repo.listFn = func(ctx context.Context, params listServicesParams) ([]models.Service, int64, error) {
		if params.Category != enums.CategoryIroning {
			t.Fatalf("unexpected category filter %q", params.Category)
		}
		if params.IncludeInactive {
			t.Fatal("public listing must exclude inactive entries")
		}
		return []models.Service{{ID: uuid.New()}}, 1, nil
	}
	svc := newTestService(repo)

	rows, total, err := svc.List(context.Background(), ListFilter{Category: "ironing"}, pagination.Params{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 || total != 1 {
		t.Fatalf("unexpected result rows=%d total=%d", len(rows), total)
	}

	_, _, err = svc.List(context.Background(), ListFilter{Category: "bogus"}, pagination.Params{})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_UpdatePartial(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	entry, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	price := decimal.NewFromInt(200)
	updated, err := svc.Update(context.Background(), entry.ID, UpdateServiceInput{BasePrice: &price})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.BasePrice.Equal(price) {
		t.Fatalf("base price not updated: %s", updated.BasePrice)
	}
	if updated.Name != "Wash & Fold" {
		t.Fatalf("name must be untouched, got %s", updated.Name)
	}
}

func TestService_DeleteIsSoftAndIdempotent(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	entry, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), entry.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if repo.services[entry.ID].IsActive {
		t.Fatal("service must be deactivated, not removed")
	}

	// Second delete finds the row already inactive and stays quiet.
	if err := svc.Delete(context.Background(), entry.ID); err != nil {
		t.Fatalf("repeat delete failed: %v", err)
	}

	err = svc.Delete(context.Background(), uuid.New())
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestService_ItemsReturnsPriceList(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	entry, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	items, err := svc.Items(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("items failed: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Shirt" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestService_ItemsRejectsInactiveService(t *testing.T) {
	repo := newFakeRepository()
	svc := newTestService(repo)

	entry, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), entry.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// The entry itself stays readable.
	if _, err := svc.Get(context.Background(), entry.ID); err != nil {
		t.Fatalf("inactive services must stay fetchable: %v", err)
	}

	_, err = svc.Items(context.Background(), entry.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inactive service, got %v", err)
	}
}
