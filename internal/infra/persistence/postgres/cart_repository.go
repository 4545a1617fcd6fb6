package postgres

import (
	"context"

	"boutique/internal/domain/entity"
	domainerrors "boutique/internal/domain/errors"
	"boutique/internal/domain/repository"
	"boutique/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cartRepository implements the domain.CartRepository interface.
//
// The store holds only product references and quantities. Unit prices are
// joined in from the catalog on every read, so a catalog price change is
// visible in every cart immediately; the caller recomputes line prices and
// the cart total from the hydrated quantities.
type cartRepository struct {
	db *gorm.DB
}

// NewCartRepository is the constructor for cartRepository.
func NewCartRepository(db *gorm.DB) repository.CartRepository {
	return &cartRepository{db: db}
}

// cartLineRow is the projection of a cart line joined with its catalog price.
type cartLineRow struct {
	ID        uint
	CartID    uint
	ProductID uint
	Quantity  int
	UnitPrice float64
}

// FindByUserID loads a user's cart with its items and live unit prices.
func (repo *cartRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	var cartM model.CartModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cartM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCartNotFound
		}

		return nil, errors.Wrap(err, "failed to find cart")
	}

	return repo.hydrate(ctx, &cartM)
}

// FindByItemID loads the cart owning the given line item, fully hydrated.
func (repo *cartRepository) FindByItemID(ctx context.Context, itemID uint) (*entity.Cart, error) {
	var itemM model.CartItemModel
	err := repo.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&itemM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCartItemNotFound
		}

		return nil, errors.Wrap(err, "failed to find cart item")
	}

	var cartM model.CartModel
	err = repo.db.WithContext(ctx).
		Where("id = ?", itemM.CartID).
		First(&cartM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCartNotFound
		}

		return nil, errors.Wrap(err, "failed to find cart for item")
	}

	return repo.hydrate(ctx, &cartM)
}

// Create persists an empty cart for a user and fills in its generated ID.
func (repo *cartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	cartM := model.CartModel{UserID: cart.UserID}

	if err := repo.db.WithContext(ctx).Create(&cartM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			// A concurrent request created the cart first; load it instead.
			existing, findErr := repo.FindByUserID(ctx, cart.UserID)
			if findErr != nil {
				return findErr
			}
			*cart = *existing

			return nil
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create cart")
	}

	cart.ID = cartM.ID

	return nil
}

// Save upserts the cart's line items. Items present in the aggregate are
// inserted or, when the (cart_id, product_id) pair exists, updated in place.
// Removal goes through DeleteItem / ClearItems.
func (repo *cartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	if len(cart.Items) == 0 {
		return nil
	}

	itemModels := make([]model.CartItemModel, 0, len(cart.Items))
	for i := range cart.Items {
		itemModels = append(itemModels, model.CartItemModel{
			ID:        cart.Items[i].ID,
			CartID:    cart.ID,
			ProductID: cart.Items[i].ProductID,
			Quantity:  cart.Items[i].Quantity,
		})
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
		}).
		Create(&itemModels).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrProductNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to save cart items")
	}

	// Carry generated line IDs back to the aggregate.
	for i := range itemModels {
		cart.Items[i].ID = itemModels[i].ID
		cart.Items[i].CartID = itemModels[i].CartID
	}

	return nil
}

// DeleteItem removes a single line item.
func (repo *cartRepository) DeleteItem(ctx context.Context, itemID uint) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&model.CartItemModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete cart item")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCartItemNotFound
	}

	return nil
}

// ClearItems removes every line item from a cart.
func (repo *cartRepository) ClearItems(ctx context.Context, cartID uint) error {
	err := repo.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&model.CartItemModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to clear cart items")
	}

	return nil
}

// SumQuantityByUserID computes the total quantity across a user's cart
// directly in the store, without materializing line items.
func (repo *cartRepository) SumQuantityByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := repo.db.WithContext(ctx).
		Model(&model.CartItemModel{}).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum cart quantity")
	}

	return total, nil
}

// hydrate joins a cart's lines with the catalog and maps the result to the
// domain aggregate. Line prices and the total are recomputed from the live
// unit prices, never read from storage.
func (repo *cartRepository) hydrate(ctx context.Context, cartM *model.CartModel) (*entity.Cart, error) {
	var rows []cartLineRow
	err := repo.db.WithContext(ctx).
		Model(&model.CartItemModel{}).
		Select("cart_items.id, cart_items.cart_id, cart_items.product_id, cart_items.quantity, products.price AS unit_price").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartM.ID).
		Order("cart_items.id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cart items")
	}

	cart := &entity.Cart{
		ID:     cartM.ID,
		UserID: cartM.UserID,
		Items:  make([]entity.CartItem, 0, len(rows)),
	}
	for _, row := range rows {
		cart.Items = append(cart.Items, entity.CartItem{
			ID:        row.ID,
			CartID:    row.CartID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
		})
	}
	cart.Recalculate()

	return cart, nil
}
