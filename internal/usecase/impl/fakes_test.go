package impl

// In-memory fakes for the domain interfaces. They keep real semantics where
// the services depend on them: the fake token service hashes with SHA-256 so
// rotation actually invalidates old tokens, and the fake cart repository
// joins unit prices from the fake catalog the way the real one does.

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"boutique/internal/domain/entity"
	"boutique/internal/domain/repository"
	"boutique/internal/domain/service"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- token service ---

type fakeTokenService struct {
	mu         sync.Mutex
	counter    int
	refreshTTL time.Duration
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{refreshTTL: 7 * 24 * time.Hour}
}

func (f *fakeTokenService) IssueTokenPair(user *entity.User, _ []string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++

	access := fmt.Sprintf("access|%s|%d", user.ID, f.counter)
	refresh := fmt.Sprintf("refresh|%s|%d", user.ID, f.counter)

	return access, refresh, nil
}

func (f *fakeTokenService) ValidateAccessToken(token string) (*service.AccessClaims, error) {
	return f.ClaimsFromExpiredToken(token)
}

func (f *fakeTokenService) ClaimsFromExpiredToken(token string) (*service.AccessClaims, error) {
	var id string
	var n int
	if _, err := fmt.Sscanf(token, "access|%36s|%d", &id, &n); err != nil {
		return nil, fmt.Errorf("malformed token")
	}
	claims := &service.AccessClaims{}
	claims.Subject = id

	return claims, nil
}

func (f *fakeTokenService) HashRefreshToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return base64.StdEncoding.EncodeToString(sum[:])
}

func (f *fakeTokenService) NewOpaqueToken() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++

	return fmt.Sprintf("opaque-%d", f.counter), nil
}

func (f *fakeTokenService) RefreshTokenDuration() time.Duration {
	return f.refreshTTL
}

// --- password hasher ---

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

// ValidateStrength accepts anything eight characters or longer.
func (fakeHasher) ValidateStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password is too short")
	}

	return nil
}

// --- mail sender ---

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailSender struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailSender) Send(_ context.Context, msg service.MailMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("mail provider unavailable")
	}
	f.sent = append(f.sent, sentMail{To: msg.ToEmail, Subject: msg.Subject, Body: msg.HTMLBody})

	return nil
}

func (f *fakeMailSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sent)
}

// --- user repository ---

type fakeUserRepo struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*entity.User
	credentials map[uuid.UUID]*entity.Credential
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:       make(map[uuid.UUID]*entity.User),
		credentials: make(map[uuid.UUID]*entity.Credential),
	}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		clone := *user

		return &clone, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user

			return &clone, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User, credential *entity.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	credential.UserID = user.ID
	credClone := *credential
	r.credentials[user.ID] = &credClone

	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repository.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone

	return nil
}

func (r *fakeUserRepo) FindCredential(_ context.Context, userID uuid.UUID) (*entity.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cred, ok := r.credentials[userID]; ok {
		clone := *cred

		return &clone, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateCredential(_ context.Context, credential *entity.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.credentials[credential.UserID]; !ok {
		return repository.ErrUserNotFound
	}
	clone := *credential
	r.credentials[credential.UserID] = &clone

	return nil
}

func (r *fakeUserRepo) MarkEmailConfirmed(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.EmailConfirmed = true

	return nil
}

// --- refresh session repository ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.RefreshSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.RefreshSession)}
}

func (r *fakeSessionRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.RefreshSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session, ok := r.sessions[userID]; ok {
		clone := *session

		return &clone, nil
	}

	return nil, repository.ErrRefreshSessionNotFound
}

func (r *fakeSessionRepo) Upsert(_ context.Context, session *entity.RefreshSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	r.sessions[session.UserID] = &clone

	return nil
}

func (r *fakeSessionRepo) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)

	return nil
}

func (r *fakeSessionRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, session := range r.sessions {
		if !session.ExpiresAt.After(now) {
			delete(r.sessions, id)
		}
	}

	return nil
}

// --- action token repository ---

type fakeActionRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*entity.ActionToken
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{tokens: make(map[uuid.UUID]*entity.ActionToken)}
}

func (r *fakeActionRepo) Create(_ context.Context, token *entity.ActionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.tokens {
		if existing.UserID == token.UserID && existing.Purpose == token.Purpose {
			delete(r.tokens, id)
		}
	}
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.ID] = &clone

	return nil
}

func (r *fakeActionRepo) FindByHash(_ context.Context, userID uuid.UUID, purpose entity.ActionTokenPurpose, tokenHash string) (*entity.ActionToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.UserID == userID && token.Purpose == purpose && token.TokenHash == tokenHash {
			clone := *token

			return &clone, nil
		}
	}

	return nil, repository.ErrActionTokenNotFound
}

func (r *fakeActionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, id)

	return nil
}

func (r *fakeActionRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for id, token := range r.tokens {
		if !token.ExpiresAt.After(now) {
			delete(r.tokens, id)
		}
	}

	return nil
}

// --- product repository ---

type fakeProductRepo struct {
	mu       sync.Mutex
	nextID   uint
	products map[uint]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uint]*entity.Product)}
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uint) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product, ok := r.products[id]; ok {
		clone := *product

		return &clone, nil
	}

	return nil, repository.ErrProductNotFound
}

func (r *fakeProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.products))
	for _, product := range r.products {
		clone := *product
		out = append(out, &clone)
	}

	return out, nil
}

func (r *fakeProductRepo) Search(_ context.Context, value string) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(value)
	out := make([]*entity.Product, 0, len(r.products))
	for _, product := range r.products {
		if !strings.Contains(strings.ToLower(product.Type), needle) {
			continue
		}
		clone := *product
		out = append(out, &clone)
	}

	return out, nil
}

func (r *fakeProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	product.ID = r.nextID
	product.DateAdded = time.Now()
	clone := *product
	r.products[product.ID] = &clone

	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	clone := *product
	r.products[product.ID] = &clone

	return nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id)

	return nil
}

// --- cart repository ---

type cartLine struct {
	id        uint
	cartID    uint
	productID uint
	quantity  int
}

type fakeCartRepo struct {
	mu         sync.Mutex
	products   *fakeProductRepo
	nextCartID uint
	nextItemID uint
	carts      map[uint]uuid.UUID // cartID -> owner
	items      map[uint]*cartLine // itemID -> line
}

func newFakeCartRepo(products *fakeProductRepo) *fakeCartRepo {
	return &fakeCartRepo{
		products: products,
		carts:    make(map[uint]uuid.UUID),
		items:    make(map[uint]*cartLine),
	}
}

func (r *fakeCartRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for cartID, owner := range r.carts {
		if owner == userID {
			return r.hydrateLocked(ctx, cartID)
		}
	}

	return nil, repository.ErrCartNotFound
}

func (r *fakeCartRepo) FindByItemID(ctx context.Context, itemID uint) (*entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	line, ok := r.items[itemID]
	if !ok {
		return nil, repository.ErrCartItemNotFound
	}

	return r.hydrateLocked(ctx, line.cartID)
}

func (r *fakeCartRepo) Create(_ context.Context, cart *entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextCartID++
	cart.ID = r.nextCartID
	r.carts[cart.ID] = cart.UserID

	return nil
}

func (r *fakeCartRepo) Save(_ context.Context, cart *entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.ID != 0 {
			if line, ok := r.items[item.ID]; ok {
				line.quantity = item.Quantity

				continue
			}
		}
		// Merge on (cart, product) like the ON CONFLICT upsert does.
		merged := false
		for _, line := range r.items {
			if line.cartID == cart.ID && line.productID == item.ProductID {
				line.quantity = item.Quantity
				item.ID = line.id
				merged = true

				break
			}
		}
		if merged {
			continue
		}
		r.nextItemID++
		item.ID = r.nextItemID
		item.CartID = cart.ID
		r.items[item.ID] = &cartLine{
			id:        item.ID,
			cartID:    cart.ID,
			productID: item.ProductID,
			quantity:  item.Quantity,
		}
	}

	return nil
}

func (r *fakeCartRepo) DeleteItem(_ context.Context, itemID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[itemID]; !ok {
		return repository.ErrCartItemNotFound
	}
	delete(r.items, itemID)

	return nil
}

func (r *fakeCartRepo) ClearItems(_ context.Context, cartID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, line := range r.items {
		if line.cartID == cartID {
			delete(r.items, id)
		}
	}

	return nil
}

func (r *fakeCartRepo) SumQuantityByUserID(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int
	for cartID, owner := range r.carts {
		if owner != userID {
			continue
		}
		for _, line := range r.items {
			if line.cartID == cartID {
				total += line.quantity
			}
		}
	}

	return total, nil
}

func (r *fakeCartRepo) hydrateLocked(ctx context.Context, cartID uint) (*entity.Cart, error) {
	cart := &entity.Cart{ID: cartID, UserID: r.carts[cartID], Items: []entity.CartItem{}}
	for _, line := range r.items {
		if line.cartID != cartID {
			continue
		}
		product, err := r.products.FindByID(ctx, line.productID)
		if err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, entity.CartItem{
			ID:        line.id,
			CartID:    line.cartID,
			ProductID: line.productID,
			Quantity:  line.quantity,
			UnitPrice: product.Price,
		})
	}
	cart.Recalculate()

	return cart, nil
}

// --- cart cache ---

type fakeCartCache struct {
	mu         sync.Mutex
	entries    map[string]*entity.Cart
	failRemove bool
	failSet    bool
	removes    int
	sets       int
}

func newFakeCartCache() *fakeCartCache {
	return &fakeCartCache{entries: make(map[string]*entity.Cart)}
}

func (c *fakeCartCache) Get(_ context.Context, userID string) (*entity.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cart, ok := c.entries[userID]; ok {
		clone := *cart
		clone.Items = append([]entity.CartItem(nil), cart.Items...)

		return &clone, nil
	}

	return nil, nil
}

func (c *fakeCartCache) Set(_ context.Context, userID string, cart *entity.Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	if c.failSet {
		return fmt.Errorf("cache unavailable")
	}
	clone := *cart
	clone.Items = append([]entity.CartItem(nil), cart.Items...)
	c.entries[userID] = &clone

	return nil
}

func (c *fakeCartCache) Remove(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removes++
	if c.failRemove {
		return fmt.Errorf("cache unavailable")
	}
	delete(c.entries, userID)

	return nil
}

func (c *fakeCartCache) peek(userID string) *entity.Cart {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.entries[userID]
}

// --- catalog cache ---

type fakeCatalogCache struct {
	mu             sync.Mutex
	entries        map[string][]*entity.Product
	failInvalidate bool
	sets           int
	invalidations  int
}

func newFakeCatalogCache() *fakeCatalogCache {
	return &fakeCatalogCache{entries: make(map[string][]*entity.Product)}
}

func (c *fakeCatalogCache) Get(_ context.Context, searchValue string) ([]*entity.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if products, ok := c.entries[searchValue]; ok {
		out := make([]*entity.Product, len(products))
		for i, product := range products {
			clone := *product
			out[i] = &clone
		}

		return out, nil
	}

	return nil, nil
}

func (c *fakeCatalogCache) Set(_ context.Context, searchValue string, products []*entity.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	stored := make([]*entity.Product, len(products))
	for i, product := range products {
		clone := *product
		stored[i] = &clone
	}
	c.entries[searchValue] = stored

	return nil
}

func (c *fakeCatalogCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	if c.failInvalidate {
		return fmt.Errorf("cache unavailable")
	}
	c.entries = make(map[string][]*entity.Product)

	return nil
}

func (c *fakeCatalogCache) keyCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

// --- transaction manager ---

// fakeTxManager hands the callback a factory over the shared fakes. There is
// no rollback; tests assert on the error paths directly.
type fakeTxManager struct {
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	actions  *fakeActionRepo
	products *fakeProductRepo
	carts    *fakeCartRepo
}

type fakeRepoFactory struct{ tx *fakeTxManager }

func (f *fakeRepoFactory) UserRepo() repository.UserRepository { return f.tx.users }
func (f *fakeRepoFactory) RefreshSessionRepo() repository.RefreshSessionRepository {
	return f.tx.sessions
}
func (f *fakeRepoFactory) ActionTokenRepo() repository.ActionTokenRepository { return f.tx.actions }
func (f *fakeRepoFactory) ProductRepo() repository.ProductRepository         { return f.tx.products }
func (f *fakeRepoFactory) CartRepo() repository.CartRepository               { return f.tx.carts }

func (tx *fakeTxManager) Execute(_ context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(&fakeRepoFactory{tx: tx})
}
