package order

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	domaincart "github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	domainorder "github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
)

type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (r *memProductRepo) put(p *catalog.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) FindBySlug(_ context.Context, slug string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindAvailable(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.put(p)
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *memProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.products)), nil
}

type memCartRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]*domaincart.CartItem
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{items: make(map[uuid.UUID]*domaincart.CartItem)}
}

func (r *memCartRepo) put(item *domaincart.CartItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.items[item.ID] = &cp
}

func (r *memCartRepo) FindByID(_ context.Context, id uuid.UUID) (*domaincart.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *memCartRepo) FindActiveByOwner(_ context.Context, owner identity.Identity) ([]domaincart.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domaincart.CartItem
	for _, item := range r.items {
		if !item.Paid && item.Owner() == owner {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memCartRepo) FindActiveByOwnerAndProduct(_ context.Context, owner identity.Identity, productID uuid.UUID) (*domaincart.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if !item.Paid && item.Owner() == owner && item.ProductID == productID {
			cp := *item
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCartRepo) FindByBasket(_ context.Context, basketNo uuid.UUID) ([]domaincart.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domaincart.CartItem
	for _, item := range r.items {
		if item.BasketNo != nil && *item.BasketNo == basketNo {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memCartRepo) Save(_ context.Context, item *domaincart.CartItem) error {
	r.put(item)
	return nil
}

func (r *memCartRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *memCartRepo) DeleteByBasket(_ context.Context, basketNo uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range r.items {
		if item.BasketNo != nil && *item.BasketNo == basketNo {
			delete(r.items, id)
		}
	}
	return nil
}

type memPaymentRepo struct {
	mu   sync.Mutex
	recs map[uuid.UUID]*payment.PaymentRecord
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{recs: make(map[uuid.UUID]*payment.PaymentRecord)}
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*payment.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memPaymentRepo) FindByGatewayReference(_ context.Context, sessionID string) (*payment.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recs {
		if rec.GatewayReference == sessionID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByBasket(_ context.Context, basketNo uuid.UUID) (*payment.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recs {
		if rec.BasketNo == basketNo {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindLatestUnpaid(_ context.Context, owner identity.Identity) (*payment.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *payment.PaymentRecord
	for _, rec := range r.recs {
		if rec.Status != payment.StatusInitiated || rec.Owner() != owner {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
		}
	}
	if latest == nil {
		return nil, shared.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *memPaymentRepo) Save(_ context.Context, rec *payment.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.recs[rec.ID] = &cp
	return nil
}

// MarkPaid mirrors the production conditional update: the check and the
// write happen under one lock, so exactly one caller wins.
func (r *memPaymentRepo) MarkPaid(_ context.Context, id uuid.UUID, paymentIntentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return false, shared.ErrNotFound
	}
	if rec.Status != payment.StatusInitiated {
		return false, nil
	}
	if err := rec.MarkPaid(paymentIntentID); err != nil {
		return false, err
	}
	return true, nil
}

func (r *memPaymentRepo) MarkFailed(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return false, shared.ErrNotFound
	}
	if rec.Status != payment.StatusInitiated {
		return false, nil
	}
	if err := rec.MarkFailed(reason); err != nil {
		return false, err
	}
	return true, nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domainorder.Order

	// orderNoCollisions fails that many Creates as if the generated
	// order number clashed with another payment's order
	orderNoCollisions int
	createCalls       int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*domainorder.Order)}
}

// Create enforces the unique indexes the way the database does
func (r *memOrderRepo) Create(_ context.Context, o *domainorder.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if r.orderNoCollisions > 0 {
		r.orderNoCollisions--
		return shared.ErrAlreadyExists
	}
	for _, existing := range r.orders {
		if existing.PaymentID == o.PaymentID || existing.OrderNo == o.OrderNo {
			return shared.ErrAlreadyExists
		}
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*domainorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) FindByPaymentID(_ context.Context, paymentID uuid.UUID) (*domainorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.PaymentID == paymentID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByOrderNo(_ context.Context, orderNo string) (*domainorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNo == orderNo {
			cp := *o
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByOwner(_ context.Context, owner identity.Identity, filter shared.Filter) ([]domainorder.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domainorder.Order
	for _, o := range r.orders {
		if o.Owner() == owner {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.PageSize > 0 && len(out) > filter.PageSize {
		out = out[:filter.PageSize]
	}
	return out, nil
}

func (r *memOrderRepo) CountByOwner(_ context.Context, owner identity.Identity) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if o.Owner() == owner {
			n++
		}
	}
	return n, nil
}

func (r *memOrderRepo) Save(_ context.Context, o *domainorder.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

type fakeGateway struct {
	mu     sync.Mutex
	event  *payment.Event
	verify error
}

func (g *fakeGateway) CreateSession(_ context.Context, req *payment.CreateSessionRequest) (*payment.CheckoutSession, error) {
	return &payment.CheckoutSession{
		SessionID:   "cs_test_" + req.PaymentID.String()[:8],
		RedirectURL: "https://gateway.example/pay",
	}, nil
}

func (g *fakeGateway) VerifyEvent(_ []byte, _ string) (*payment.Event, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.verify != nil {
		return nil, g.verify
	}
	return g.event, nil
}
