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

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// cartService implements the CartUsecase interface.
//
// Cache coherency: every mutation writes the store first, then invalidates
// the cache, then repopulates it. Invalidation must succeed or the mutation
// fails, otherwise a reader could see the pre-mutation cart for up to the
// cache lifetime. Repopulation is best effort; a failure only costs the next
// reader a store round trip.
type cartService struct {
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	cache       service.CartCache
	logger      *slog.Logger
}

// CartServiceParams holds dependencies for cartService, injected by Fx.
type CartServiceParams struct {
	fx.In

	ProductRepo repository.ProductRepository
	CartRepo    repository.CartRepository
	Cache       service.CartCache
	Logger      *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(params CartServiceParams) usecase.CartUsecase {
	return &cartService{
		productRepo: params.ProductRepo,
		cartRepo:    params.CartRepo,
		cache:       params.Cache,
		logger:      params.Logger,
	}
}

func (srv *cartService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetCart returns the caller's cart, from cache when fresh. A user with no
// cart yet gets a not-found error; carts come into existence on the first
// AddItem, never on a read.
func (srv *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	cached, err := srv.cache.Get(ctx, userID.String())
	if err != nil {
		srv.log(ctx).Warn("Cart cache read failed", slog.Any("userID", userID), slog.Any("error", err))
	}
	if cached != nil {
		return cached, nil
	}

	cart, err := srv.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, domainerrors.ErrCartNotFound
		}

		return nil, err
	}

	srv.repopulateCache(ctx, cart)

	return cart, nil
}

// AddItem adds a product to the cart, merging quantity into an existing line
// for the same product.
func (srv *cartService) AddItem(ctx context.Context, input usecase.AddToCartInput) (*entity.Cart, error) {
	if input.Quantity <= 0 {
		return nil, domainerrors.ErrInvalidQuantity
	}

	product, err := srv.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domainerrors.ErrProductNotFound
		}

		return nil, err
	}

	cart, err := srv.loadOrCreateCart(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if line := cart.FindItemByProduct(input.ProductID); line != nil {
		line.Quantity += input.Quantity
	} else {
		cart.Items = append(cart.Items, entity.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  input.Quantity,
			UnitPrice: product.Price,
		})
	}
	cart.Recalculate()

	if err := srv.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	if err := srv.invalidateCache(ctx, input.UserID); err != nil {
		return nil, err
	}
	srv.repopulateCache(ctx, cart)

	srv.log(ctx).Debug("Cart item added",
		slog.Any("userID", input.UserID),
		slog.Any("productID", input.ProductID),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// UpdateItemQuantity replaces the quantity on a line item.
func (srv *cartService) UpdateItemQuantity(ctx context.Context, input usecase.UpdateQuantityInput) (*entity.Cart, error) {
	if input.Quantity <= 0 {
		return nil, domainerrors.ErrInvalidQuantity
	}

	cart, err := srv.ownedCartByItem(ctx, input.UserID, input.ItemID)
	if err != nil {
		return nil, err
	}

	line := findItemByID(cart, input.ItemID)
	if line == nil {
		return nil, domainerrors.ErrCartItemNotFound
	}
	line.Quantity = input.Quantity
	cart.Recalculate()

	if err := srv.cartRepo.Save(ctx, cart); err != nil {
		return nil, err
	}

	if err := srv.invalidateCache(ctx, input.UserID); err != nil {
		return nil, err
	}
	srv.repopulateCache(ctx, cart)

	return cart, nil
}

// RemoveItem deletes a line item.
func (srv *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID uint) (*entity.Cart, error) {
	cart, err := srv.ownedCartByItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if err := srv.cartRepo.DeleteItem(ctx, itemID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, domainerrors.ErrCartItemNotFound
		}

		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

			break
		}
	}
	cart.Recalculate()

	if err := srv.invalidateCache(ctx, userID); err != nil {
		return nil, err
	}
	srv.repopulateCache(ctx, cart)

	return cart, nil
}

// ClearCart removes every line item. The cache entry is invalidated but not
// repopulated; the next read rebuilds it from the store.
func (srv *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := srv.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			// Nothing to clear; still drop any stale cache entry.
			return srv.invalidateCache(ctx, userID)
		}

		return err
	}

	if err := srv.cartRepo.ClearItems(ctx, cart.ID); err != nil {
		return err
	}

	return srv.invalidateCache(ctx, userID)
}

// GetTotalQuantity returns the summed quantity across the cart. A cache hit
// answers from the cached aggregate; a miss is answered by a store-side sum
// without materializing the cart.
func (srv *cartService) GetTotalQuantity(ctx context.Context, userID uuid.UUID) (int, error) {
	cached, err := srv.cache.Get(ctx, userID.String())
	if err != nil {
		srv.log(ctx).Warn("Cart cache read failed", slog.Any("userID", userID), slog.Any("error", err))
	}
	if cached != nil {
		return cached.TotalQuantity(), nil
	}

	return srv.cartRepo.SumQuantityByUserID(ctx, userID)
}

// loadOrCreateCart fetches the user's cart, creating an empty one when none
// exists yet.
func (srv *cartService) loadOrCreateCart(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	cart, err := srv.cartRepo.FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repository.ErrCartNotFound) {
		return nil, err
	}

	cart = &entity.Cart{UserID: userID, Items: []entity.CartItem{}}
	if err := srv.cartRepo.Create(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// ownedCartByItem loads the cart owning a line item and verifies the caller
// owns it. A foreign item is reported as not-found, never as forbidden, so
// item ids cannot be enumerated.
func (srv *cartService) ownedCartByItem(ctx context.Context, userID uuid.UUID, itemID uint) (*entity.Cart, error) {
	cart, err := srv.cartRepo.FindByItemID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) || errors.Is(err, repository.ErrCartNotFound) {
			return nil, domainerrors.ErrCartItemNotFound
		}

		return nil, err
	}
	if cart.UserID != userID {
		return nil, domainerrors.ErrCartItemNotFound
	}

	return cart, nil
}

// invalidateCache drops the cached cart. Failure fails the mutation: a stale
// entry surviving a store write is worse than surfacing the cache outage.
func (srv *cartService) invalidateCache(ctx context.Context, userID uuid.UUID) error {
	if err := srv.cache.Remove(ctx, userID.String()); err != nil {
		srv.log(ctx).Error("Cart cache invalidation failed", slog.Any("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to invalidate cart cache")
	}

	return nil
}

// repopulateCache refreshes the cache with the post-mutation cart. Best
// effort only.
func (srv *cartService) repopulateCache(ctx context.Context, cart *entity.Cart) {
	if err := srv.cache.Set(ctx, cart.UserID.String(), cart); err != nil {
		srv.log(ctx).Warn("Cart cache repopulation failed", slog.Any("userID", cart.UserID), slog.Any("error", err))
	}
}

func findItemByID(cart *entity.Cart, itemID uint) *entity.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return &cart.Items[i]
		}
	}

	return nil
}
