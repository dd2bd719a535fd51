package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/khatmdev/quadramall-sub001/pkg/db"
	"github.com/khatmdev/quadramall-sub001/pkg/db/models"
	pkgerrors "github.com/khatmdev/quadramall-sub001/pkg/errors"
	"github.com/khatmdev/quadramall-sub001/pkg/logger"
	"github.com/khatmdev/quadramall-sub001/pkg/metrics"
	"gorm.io/gorm"
)

const (
	msgQuantityPositive    = "Số lượng phải lớn hơn 0."
	msgAddonDuplicated     = "Addon không được trùng lặp."
	msgAddonMissing        = "Addon không tồn tại"
	msgAddonForeign        = "Addon không thuộc sản phẩm"
	msgAddonNotOnItem      = "Addon không có trong mục giỏ hàng"
	msgVariantUnavailable  = "Biến thể không hợp lệ hoặc hết hàng."
	msgVariantInvalid      = "Biến thể không hợp lệ hoặc không đủ hàng"
	msgVariantOtherProduct = "Biến thể mới phải thuộc cùng sản phẩm"
	msgVariantInCart       = "Biến thể này đã có trong giỏ hàng"
	msgItemNotFound        = "Không tìm thấy mục giỏ hàng"
	msgItemForbidden       = "Không có quyền truy cập mục giỏ hàng"
	msgItemBusy            = "Mục giỏ hàng đang được cập nhật"
	msgOverStock           = "Số lượng vượt quá tồn kho"
	msgAdded               = "Sản phẩm đã được thêm vào giỏ hàng."

	lockScopeItem    = "cart_item"
	lockScopeVariant = "cart_variant"

	defaultLockTTL = 10 * time.Second
)

// Operation labels recorded on cart metrics.
const (
	OpAdd            = "add"
	OpUpdateQuantity = "update_quantity"
	OpUpdateVariant  = "update_variant"
	OpDeleteItem     = "delete_item"
	OpDeleteAddon    = "delete_addon"
	OpDeleteStore    = "delete_store"
)

// Service exposes the shopper cart operations.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) ([]StoreGroup, error)
	AddToCart(ctx context.Context, userID uuid.UUID, input AddToCartInput) (*AddToCartResult, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*Item, error)
	UpdateVariant(ctx context.Context, userID, itemID uuid.UUID, input UpdateVariantInput) (*Item, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	DeleteAddon(ctx context.Context, userID, itemID, addonID uuid.UUID) (*Item, error)
	DeleteStoreItems(ctx context.Context, userID, storeID uuid.UUID) (int, error)
}

// AddToCartInput is a request to put a variant, with optional addons, into the cart.
type AddToCartInput struct {
	VariantID uuid.UUID
	Quantity  int
	AddonIDs  []uuid.UUID
}

type AddToCartResult struct {
	Message    string    `json:"message"`
	CartItemID uuid.UUID `json:"cart_item_id"`
	Quantity   int       `json:"quantity"`
}

// UpdateVariantInput switches a line to another variant of the same product.
// A non-empty AddonIDs replaces the line's addons; an empty one keeps them.
type UpdateVariantInput struct {
	VariantID uuid.UUID
	AddonIDs  []uuid.UUID
}

// ServiceParams wires the cart service. Locker, Cache and Metrics are optional.
type ServiceParams struct {
	Items   ItemRepository
	Catalog CatalogReader
	Tx      txRunner
	Locker  Locker
	Cache   ViewCache
	Metrics *metrics.CartMetrics
	Logger  *logger.Logger
	LockTTL time.Duration
	Now     func() time.Time
}

type service struct {
	items   ItemRepository
	catalog CatalogReader
	tx      txRunner
	locker  Locker
	cache   ViewCache
	metrics *metrics.CartMetrics
	logg    *logger.Logger
	lockTTL time.Duration
	now     func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(p ServiceParams) (Service, error) {
	if p.Items == nil {
		return nil, fmt.Errorf("cart item repository required")
	}
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog reader required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	s := &service{
		items:   p.Items,
		catalog: p.Catalog,
		tx:      p.Tx,
		locker:  p.Locker,
		cache:   p.Cache,
		metrics: p.Metrics,
		logg:    p.Logger,
		lockTTL: p.LockTTL,
		now:     p.Now,
	}
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.lockTTL <= 0 {
		s.lockTTL = defaultLockTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// GetCart returns the caller's cart grouped by store, served from the view cache when warm.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) ([]StoreGroup, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if s.cache != nil {
		groups, ok, err := s.cache.Get(ctx, userID)
		switch {
		case err != nil:
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.cache.get_failed")
		case ok && !flashSaleEnded(groups, s.now().UTC()):
			s.metrics.CacheHit()
			return groups, nil
		default:
			s.metrics.CacheMiss()
		}
	}

	rows, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}
	snap, err := s.snapshot(ctx, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	groups := snap.groupByStore(rows)

	if s.cache != nil {
		s.cacheView(ctx, userID, snap, groups)
	}
	return groups, nil
}

// cacheView stores the view until the next flash-sale boundary of its products,
// so a sale that starts or ends is never served from a stale entry.
func (s *service) cacheView(ctx context.Context, userID uuid.UUID, snap *catalogSnapshot, groups []StoreGroup) {
	now := s.now().UTC()
	boundary := snap.saleBoundary()
	next, err := s.catalog.NextFlashSaleStart(ctx, snap.productIDs(), now)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.cache.sale_lookup_failed")
		return
	}
	if !next.IsZero() && (boundary.IsZero() || next.Before(boundary)) {
		boundary = next
	}

	var maxAge time.Duration
	if !boundary.IsZero() {
		maxAge = boundary.Sub(now)
		if maxAge <= 0 {
			return
		}
	}
	if err := s.cache.Set(ctx, userID, groups, maxAge); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.cache.set_failed")
	}
}

// snapshot loads the catalog rows for the lines and reports campaign data the
// price calculator has to clamp.
func (s *service) snapshot(ctx context.Context, rows []models.CartItem) (*catalogSnapshot, error) {
	snap, err := loadSnapshot(ctx, s.catalog, rows, s.now().UTC())
	if err != nil {
		return nil, err
	}
	for _, sale := range snap.outOfRangeSales() {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"flash_sale_id":       sale.ID.String(),
			"product_id":          sale.ProductID.String(),
			"percentage_discount": sale.PercentageDiscount,
			"applied_percentage":  ClampPercent(sale.PercentageDiscount),
		}), "cart.flash_sale.discount_out_of_range")
	}
	return snap, nil
}

// flashSaleEnded reports whether any cached line still carries a sale that is over.
func flashSaleEnded(groups []StoreGroup, now time.Time) bool {
	for _, g := range groups {
		for _, item := range g.Items {
			if item.FlashSale != nil && item.FlashSale.EndTime.Before(now) {
				return true
			}
		}
	}
	return false
}

// AddToCart merges the quantity into the caller's existing line for the variant or creates one.
func (s *service) AddToCart(ctx context.Context, userID uuid.UUID, input AddToCartInput) (result *AddToCartResult, err error) {
	defer s.observe(OpAdd, time.Now(), &err)

	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgQuantityPositive)
	}
	if hasDuplicates(input.AddonIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgAddonDuplicated)
	}

	release, err := s.lock(ctx, lockScopeVariant, userID.String()+":"+input.VariantID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	variant, err := s.variant(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	if variant == nil || !variant.IsActive || variant.StockQuantity < input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgVariantUnavailable)
	}
	if err := s.validateAddons(ctx, variant.ProductID, input.AddonIDs); err != nil {
		return nil, err
	}

	existing, err := s.items.FindByUserAndVariant(ctx, userID, variant.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	quantity := input.Quantity
	if existing != nil {
		quantity += existing.Quantity
	}
	if quantity > variant.StockQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgOverStock)
	}

	var itemID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.items.WithTx(tx)
		if existing != nil {
			itemID = existing.ID
			if err := repo.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
				return err
			}
		} else {
			row := &models.CartItem{UserID: userID, VariantID: variant.ID, Quantity: quantity}
			if err := repo.Create(ctx, row); err != nil {
				return err
			}
			itemID = row.ID
		}
		if len(input.AddonIDs) > 0 {
			return repo.ReplaceAddons(ctx, itemID, input.AddonIDs)
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgItemBusy)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart item")
	}

	s.invalidate(ctx, userID)
	s.logg.Info(s.logg.WithCartItemID(ctx, itemID.String()), "cart.item.added")
	return &AddToCartResult{Message: msgAdded, CartItemID: itemID, Quantity: quantity}, nil
}

// UpdateQuantity sets an absolute quantity on the caller's line.
func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (item *Item, err error) {
	defer s.observe(OpUpdateQuantity, time.Now(), &err)

	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgQuantityPositive)
	}
	release, err := s.lock(ctx, lockScopeItem, itemID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	row, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	variant, err := s.variant(ctx, row.VariantID)
	if err != nil {
		return nil, err
	}
	if variant == nil || variant.StockQuantity < quantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgOverStock)
	}

	if row.Quantity != quantity {
		if err := s.items.UpdateQuantity(ctx, row.ID, quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quantity")
		}
		s.invalidate(ctx, userID)
	}
	return s.itemView(ctx, row.ID)
}

// UpdateVariant moves the line to another variant of the same product, keeping its quantity.
func (s *service) UpdateVariant(ctx context.Context, userID, itemID uuid.UUID, input UpdateVariantInput) (item *Item, err error) {
	defer s.observe(OpUpdateVariant, time.Now(), &err)

	if hasDuplicates(input.AddonIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgAddonDuplicated)
	}
	release, err := s.lock(ctx, lockScopeItem, itemID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	row, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if input.VariantID == row.VariantID && len(input.AddonIDs) == 0 {
		return s.itemView(ctx, row.ID)
	}

	variants, err := s.catalog.VariantsByIDs(ctx, uniqueIDs([]uuid.UUID{row.VariantID, input.VariantID}))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variants")
	}
	next, ok := variants[input.VariantID]
	if !ok || !next.IsActive || next.StockQuantity < row.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgVariantInvalid)
	}
	current, ok := variants[row.VariantID]
	if !ok || current.ProductID != next.ProductID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgVariantOtherProduct)
	}

	if next.ID != row.VariantID {
		existing, err := s.productVariantsInCart(ctx, userID, next.ProductID)
		if err != nil {
			return nil, err
		}
		if IsDuplicateVariant(next.ID, existing, row.VariantID) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, msgVariantInCart)
		}
	}
	if err := s.validateAddons(ctx, next.ProductID, input.AddonIDs); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.items.WithTx(tx)
		if next.ID != row.VariantID {
			if err := repo.UpdateVariant(ctx, row.ID, next.ID); err != nil {
				return err
			}
		}
		if len(input.AddonIDs) > 0 {
			return repo.ReplaceAddons(ctx, row.ID, input.AddonIDs)
		}
		return nil
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgVariantInCart)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update variant")
	}

	s.invalidate(ctx, userID)
	return s.itemView(ctx, row.ID)
}

// DeleteItem removes the caller's line. Deleting a line that no longer exists succeeds.
func (s *service) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) (err error) {
	defer s.observe(OpDeleteItem, time.Now(), &err)

	release, err := s.lock(ctx, lockScopeItem, itemID.String())
	if err != nil {
		return err
	}
	defer release()

	row, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil
		}
		return err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.items.WithTx(tx).Delete(ctx, row.ID)
		return err
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}

	s.invalidate(ctx, userID)
	s.logg.Info(s.logg.WithCartItemID(ctx, row.ID.String()), "cart.item.deleted")
	return nil
}

// DeleteAddon detaches one addon from the caller's line.
func (s *service) DeleteAddon(ctx context.Context, userID, itemID, addonID uuid.UUID) (item *Item, err error) {
	defer s.observe(OpDeleteAddon, time.Now(), &err)

	release, err := s.lock(ctx, lockScopeItem, itemID.String())
	if err != nil {
		return nil, err
	}
	defer release()

	row, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	removed, err := s.items.DeleteAddon(ctx, row.ID, addonID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete addon")
	}
	if !removed {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgAddonNotOnItem)
	}

	s.invalidate(ctx, userID)
	return s.itemView(ctx, row.ID)
}

// DeleteStoreItems removes every line of the caller's cart sold by storeID and
// returns how many were removed.
func (s *service) DeleteStoreItems(ctx context.Context, userID, storeID uuid.UUID) (removed int, err error) {
	defer s.observe(OpDeleteStore, time.Now(), &err)

	rows, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}
	snap, err := s.snapshot(ctx, rows)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}

	var ids []uuid.UUID
	for _, row := range rows {
		variant, ok := snap.variants[row.VariantID]
		if !ok {
			continue
		}
		if product, ok := snap.products[variant.ProductID]; ok && product.StoreID == storeID {
			ids = append(ids, row.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var count int64
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		count, err = s.items.WithTx(tx).Delete(ctx, ids...)
		return err
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete store items")
	}

	s.invalidate(ctx, userID)
	return int(count), nil
}

func (s *service) ownedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	row, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if row.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, msgItemForbidden)
	}
	return row, nil
}

// variant returns nil without error when the variant does not exist.
func (s *service) variant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	rows, err := s.catalog.VariantsByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}
	v, ok := rows[id]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *service) validateAddons(ctx context.Context, productID uuid.UUID, addonIDs []uuid.UUID) error {
	if len(addonIDs) == 0 {
		return nil
	}
	addons, err := s.catalog.AddonsByIDs(ctx, addonIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addons")
	}
	for _, id := range addonIDs {
		addon, ok := addons[id]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, msgAddonMissing).WithDetails(map[string]any{"addon_id": id})
		}
		if addon.ProductID != productID {
			return pkgerrors.New(pkgerrors.CodeValidation, msgAddonForeign).WithDetails(map[string]any{"addon_id": id})
		}
	}
	return nil
}

// productVariantsInCart lists the variants of productID already present in the caller's cart.
func (s *service) productVariantsInCart(ctx context.Context, userID, productID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.VariantID)
	}
	variants, err := s.catalog.VariantsByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variants")
	}
	var out []uuid.UUID
	for _, id := range ids {
		if v, ok := variants[id]; ok && v.ProductID == productID {
			out = append(out, id)
		}
	}
	return out, nil
}

// itemView renders the authoritative view of a single line.
func (s *service) itemView(ctx context.Context, itemID uuid.UUID) (*Item, error) {
	row, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	rows := []models.CartItem{*row}
	snap, err := s.snapshot(ctx, rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}
	item, _, ok := snap.buildItem(*row)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	return &item, nil
}

// lock takes the per-key mutation lease. Without a Locker it is a no-op.
func (s *service) lock(ctx context.Context, scope, id string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := s.locker.LockKey(scope, id)
	token, ok, err := s.locker.AcquireLock(ctx, key, s.lockTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire cart lock")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, msgItemBusy)
	}
	return func() {
		if _, err := s.locker.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"lock_key": key, "error": err.Error()}), "cart.lock.release_failed")
		}
	}, nil
}

func (s *service) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "cart.cache.invalidate_failed")
	}
}

func (s *service) observe(op string, start time.Time, errp *error) {
	outcome := metrics.OutcomeSuccess
	if err := *errp; err != nil {
		outcome = metrics.OutcomeFailure
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			outcome = metrics.OutcomeBusy
		}
	}
	s.metrics.ObserveMutation(op, outcome, time.Since(start))
}

func hasDuplicates(ids []uuid.UUID) bool {
	return len(uniqueIDs(ids)) != len(ids)
}
