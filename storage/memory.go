package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"ecommerce-backend/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore is an in-memory counterpart to the MongoDB stores. It mirrors
// their semantics (unique user fields, one cart per user, conditional stock
// decrement) and backs the test suites. Per-entity views over the shared
// state satisfy the store interfaces.
type MemStore struct {
	db *memDB
}

type memDB struct {
	mu       sync.RWMutex
	users    map[primitive.ObjectID]models.User
	products map[primitive.ObjectID]models.Product
	carts    map[primitive.ObjectID]models.Cart // keyed by user ID
	orders   map[primitive.ObjectID]models.Order
	seq      map[primitive.ObjectID]int
	nextSeq  int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{db: &memDB{
		users:    make(map[primitive.ObjectID]models.User),
		products: make(map[primitive.ObjectID]models.Product),
		carts:    make(map[primitive.ObjectID]models.Cart),
		orders:   make(map[primitive.ObjectID]models.Order),
		seq:      make(map[primitive.ObjectID]int),
	}}
}

// Users returns the UserStore view.
func (s *MemStore) Users() UserStore { return &memUsers{db: s.db} }

// Products returns the ProductStore view.
func (s *MemStore) Products() ProductStore { return &memProducts{db: s.db} }

// Carts returns the CartStore view.
func (s *MemStore) Carts() CartStore { return &memCarts{db: s.db} }

// Orders returns the OrderStore view.
func (s *MemStore) Orders() OrderStore { return &memOrders{db: s.db} }

// ---- UserStore ----

type memUsers struct {
	db *memDB
}

func (s *memUsers) Insert(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, existing := range s.db.users {
		if existing.Email == user.Email || existing.Name == user.Name || existing.Contact == user.Contact {
			return primitive.NilObjectID, ErrDuplicate
		}
	}

	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.db.users[user.ID] = *user
	return user.ID, nil
}

func (s *memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, user := range s.db.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	user, ok := s.db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	u := user
	return &u, nil
}

func (s *memUsers) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, ok := s.db.users[id]
	if !ok {
		return ErrNotFound
	}
	user.Password = hash
	user.UpdatedAt = time.Now().UTC()
	s.db.users[id] = user
	return nil
}

// ---- ProductStore ----

type memProducts struct {
	db *memDB
}

func (s *memProducts) Insert(ctx context.Context, product *models.Product) (primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now().UTC()
	product.ID = primitive.NewObjectID()
	product.CreatedAt = now
	product.UpdatedAt = now
	s.db.products[product.ID] = copyProduct(*product)
	s.db.nextSeq++
	s.db.seq[product.ID] = s.db.nextSeq
	return product.ID, nil
}

func (s *memProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	product, ok := s.db.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := copyProduct(product)
	return &p, nil
}

func (s *memProducts) FindAll(ctx context.Context) ([]models.Product, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	products := make([]models.Product, 0, len(s.db.products))
	for _, product := range s.db.products {
		products = append(products, copyProduct(product))
	}
	s.db.sortProductsNewestFirst(products)
	return products, nil
}

func (s *memProducts) Update(ctx context.Context, product *models.Product) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.products[product.ID]; !ok {
		return ErrNotFound
	}
	product.UpdatedAt = time.Now().UTC()
	s.db.products[product.ID] = copyProduct(*product)
	return nil
}

func (s *memProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.db.products, id)
	return nil
}

func (s *memProducts) Search(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	keyword := strings.ToLower(filter.Keyword)
	var matched []models.Product
	for _, product := range s.db.products {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(product.Name), keyword) &&
			!strings.Contains(strings.ToLower(product.Description), keyword) {
			continue
		}
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && product.SalePrice < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && product.SalePrice > *filter.MaxPrice {
			continue
		}
		matched = append(matched, copyProduct(product))
	}

	s.db.sortProductsNewestFirst(matched)
	total := int64(len(matched))

	if filter.Skip >= total {
		return []models.Product{}, total, nil
	}
	matched = matched[filter.Skip:]
	if filter.Limit > 0 && int64(len(matched)) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *memProducts) DecrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	product, ok := s.db.products[id]
	if !ok {
		return ErrNotFound
	}
	if product.Stock < quantity {
		return ErrInsufficientStock
	}
	product.Stock -= quantity
	s.db.products[id] = product
	return nil
}

func (s *memProducts) IncrementStock(ctx context.Context, id primitive.ObjectID, quantity int) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	product, ok := s.db.products[id]
	if !ok {
		return ErrNotFound
	}
	product.Stock += quantity
	s.db.products[id] = product
	return nil
}

// ---- CartStore ----

type memCarts struct {
	db *memDB
}

func (s *memCarts) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	cart, ok := s.db.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c := copyCart(cart)
	return &c, nil
}

func (s *memCarts) Upsert(ctx context.Context, cart *models.Cart) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := s.db.carts[cart.UserID]; ok {
		cart.ID = existing.ID
		cart.CreatedAt = existing.CreatedAt
	} else {
		cart.ID = primitive.NewObjectID()
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now
	s.db.carts[cart.UserID] = copyCart(*cart)
	return nil
}

func (s *memCarts) Clear(ctx context.Context, userID primitive.ObjectID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cart, ok := s.db.carts[userID]
	if !ok {
		return ErrNotFound
	}
	cart.Items = []models.CartItem{}
	cart.TotalAmount = 0
	cart.UpdatedAt = time.Now().UTC()
	s.db.carts[userID] = cart
	return nil
}

// ---- OrderStore ----

type memOrders struct {
	db *memDB
}

func (s *memOrders) Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	now := time.Now().UTC()
	order.ID = primitive.NewObjectID()
	order.CreatedAt = now
	order.UpdatedAt = now
	s.db.orders[order.ID] = copyOrder(*order)
	s.db.nextSeq++
	s.db.seq[order.ID] = s.db.nextSeq
	return order.ID, nil
}

func (s *memOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	order, ok := s.db.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o := copyOrder(order)
	return &o, nil
}

func (s *memOrders) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var orders []models.Order
	for _, order := range s.db.orders {
		if order.UserID == userID {
			orders = append(orders, copyOrder(order))
		}
	}
	s.db.sortOrdersOldestFirst(orders)
	return orders, nil
}

func (s *memOrders) FindAll(ctx context.Context) ([]models.Order, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	orders := make([]models.Order, 0, len(s.db.orders))
	for _, order := range s.db.orders {
		orders = append(orders, copyOrder(order))
	}
	s.db.sortOrdersOldestFirst(orders)
	return orders, nil
}

func (s *memOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	order, ok := s.db.orders[id]
	if !ok {
		return ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now().UTC()
	s.db.orders[id] = order
	return nil
}

// ---- helpers ----

func (db *memDB) sortProductsNewestFirst(products []models.Product) {
	sort.SliceStable(products, func(i, j int) bool {
		return db.seq[products[i].ID] > db.seq[products[j].ID]
	})
}

func (db *memDB) sortOrdersOldestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return db.seq[orders[i].ID] < db.seq[orders[j].ID]
	})
}

func copyProduct(p models.Product) models.Product {
	p.Images = append([]string(nil), p.Images...)
	return p
}

func copyCart(c models.Cart) models.Cart {
	c.Items = append([]models.CartItem(nil), c.Items...)
	return c
}

func copyOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}
