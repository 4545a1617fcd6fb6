package impl

import (
	"context"
	"log/slog"

	deliverycontext "boutique/internal/delivery/context"
	"boutique/internal/domain/entity"
	domainerrors "boutique/internal/domain/errors"
	"boutique/internal/domain/repository"
	"boutique/internal/domain/service"
	"boutique/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// productService implements the ProductUsecase interface.
//
// List reads go through the catalog cache; every mutation invalidates the
// whole catalog cache (filtered lists included) before returning, following
// the same invalidate-then-best-effort discipline as the cart cache.
type productService struct {
	productRepo repository.ProductRepository
	cache       service.CatalogCache
	logger      *slog.Logger
}

// ProductServiceParams holds dependencies for productService, injected by Fx.
type ProductServiceParams struct {
	fx.In

	ProductRepo repository.ProductRepository
	Cache       service.CatalogCache
	Logger      *slog.Logger
}

// NewProductService is the constructor for productService.
func NewProductService(params ProductServiceParams) usecase.ProductUsecase {
	return &productService{
		productRepo: params.ProductRepo,
		cache:       params.Cache,
		logger:      params.Logger,
	}
}

func (srv *productService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProduct returns a single catalog entry.
func (srv *productService) GetProduct(ctx context.Context, id uint) (*entity.Product, error) {
	product, err := srv.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domainerrors.ErrProductNotFound
		}

		return nil, err
	}

	return product, nil
}

// ListProducts returns the catalog, newest first, filtered by searchValue
// when one is given. Results come from the catalog cache when fresh; empty
// results are never cached, so a product added right after a miss shows up
// immediately.
func (srv *productService) ListProducts(ctx context.Context, searchValue string) ([]*entity.Product, error) {
	cached, err := srv.cache.Get(ctx, searchValue)
	if err != nil {
		srv.log(ctx).Warn("Catalog cache read failed", slog.Any("error", err))
	}
	if cached != nil {
		return cached, nil
	}

	var products []*entity.Product
	if searchValue == "" {
		products, err = srv.productRepo.List(ctx)
	} else {
		products, err = srv.productRepo.Search(ctx, searchValue)
	}
	if err != nil {
		return nil, err
	}

	if len(products) > 0 {
		if err := srv.cache.Set(ctx, searchValue, products); err != nil {
			srv.log(ctx).Warn("Catalog cache write failed", slog.Any("error", err))
		}
	}

	return products, nil
}

// CreateProduct adds a catalog entry.
func (srv *productService) CreateProduct(ctx context.Context, input usecase.ProductInput) (*entity.Product, error) {
	product := productFromInput(input)
	if err := srv.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	if err := srv.invalidateCatalog(ctx); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Product created", slog.Any("productID", product.ID))

	return product, nil
}

// UpdateProduct modifies a catalog entry. Carts referencing the product pick
// up the new price on their next read, because unit prices are never frozen
// into cart storage.
func (srv *productService) UpdateProduct(ctx context.Context, id uint, input usecase.ProductInput) (*entity.Product, error) {
	product := productFromInput(input)
	product.ID = id

	if err := srv.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domainerrors.ErrProductNotFound
		}

		return nil, err
	}

	if err := srv.invalidateCatalog(ctx); err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Product updated", slog.Any("productID", id))

	return product, nil
}

// DeleteProduct removes a catalog entry.
func (srv *productService) DeleteProduct(ctx context.Context, id uint) error {
	if err := srv.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return domainerrors.ErrProductNotFound
		}

		return err
	}

	if err := srv.invalidateCatalog(ctx); err != nil {
		return err
	}

	srv.log(ctx).Info("Product deleted", slog.Any("productID", id))

	return nil
}

// invalidateCatalog drops every cached catalog list. Failure fails the
// mutation, the same stance the cart takes: a stale list surviving a store
// write is worse than surfacing the cache outage.
func (srv *productService) invalidateCatalog(ctx context.Context) error {
	if err := srv.cache.Invalidate(ctx); err != nil {
		return errors.Wrap(err, "failed to invalidate catalog cache")
	}

	return nil
}

func productFromInput(input usecase.ProductInput) *entity.Product {
	return &entity.Product{
		Type:        input.Type,
		Size:        input.Size,
		Color:       input.Color,
		Price:       input.Price,
		Material:    input.Material,
		Gender:      input.Gender,
		Description: input.Description,
		ImageURL:    input.ImageURL,
	}
}
