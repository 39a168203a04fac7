// Package memory is an in-process implementation of the repository
// interfaces. It backs dev runs without a database and the service tests.
// Adjustments to one wallet serialize on that wallet's mutex; the store has
// no multi-operation transaction runner, so callers use their compensation
// path against it.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/adeyemi/marketplace-backend/internal/models"
	repo "github.com/adeyemi/marketplace-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type Store struct {
	mu       sync.RWMutex
	users    map[string]models.User
	wallets  map[string]*walletEntry
	products map[string]models.Product
	ledger   []models.Transaction
	fundings []models.FundingTransaction
	audits   []models.AuditLog
	otps     map[string][]models.EmailOTP

	// AdjustErr, when set, is consulted before every wallet adjustment and
	// lets tests inject per-user write failures.
	AdjustErr func(userID string, delta int64) error
	// LedgerErr, when set, is consulted before every purchase-ledger insert.
	LedgerErr func(t models.Transaction) error
}

type walletEntry struct {
	mu sync.Mutex
	w  models.Wallet
}

func NewStore() *Store {
	return &Store{
		users:    map[string]models.User{},
		wallets:  map[string]*walletEntry{},
		products: map[string]models.Product{},
		otps:     map[string][]models.EmailOTP{},
	}
}

func (s *Store) Users() repo.Users               { return usersView{s} }
func (s *Store) Wallets() repo.Wallets           { return walletsView{s} }
func (s *Store) Products() repo.Products         { return productsView{s} }
func (s *Store) Transactions() repo.Transactions { return transactionsView{s} }
func (s *Store) Fundings() repo.Fundings         { return fundingsView{s} }
func (s *Store) OTPs() repo.OTPs                 { return otpsView{s} }
func (s *Store) AuditLogs() repo.AuditLogs       { return auditLogsView{s} }

func (s *Store) wallet(userID string) (*walletEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.wallets[userID]
	return e, ok
}

// ----------------- users -----------------

type usersView struct{ s *Store }

func (v usersView) Create(_ context.Context, u models.User) (models.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, ex := range v.s.users {
		if ex.Email == u.Email {
			return models.User{}, repo.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	v.s.users[u.ID] = u
	if _, ok := v.s.wallets[u.ID]; !ok {
		v.s.wallets[u.ID] = &walletEntry{w: models.Wallet{UserID: u.ID, LastUpdatedAt: now}}
	}
	return u, nil
}

func (v usersView) GetByID(_ context.Context, id string) (models.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	u, ok := v.s.users[id]
	if !ok {
		return models.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (v usersView) GetByEmail(_ context.Context, email string) (models.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, u := range v.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repo.ErrNotFound
}

func (v usersView) List(_ context.Context) ([]models.User, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]models.User, 0, len(v.s.users))
	for _, u := range v.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v usersView) MarkVerified(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Verified = true
	u.UpdatedAt = time.Now()
	v.s.users[id] = u
	return nil
}

// ----------------- wallets -----------------

type walletsView struct{ s *Store }

func (v walletsView) Get(_ context.Context, userID string) (models.Wallet, error) {
	e, ok := v.s.wallet(userID)
	if !ok {
		return models.Wallet{}, repo.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.w, nil
}

func (v walletsView) GetOrCreate(_ context.Context, userID string) (models.Wallet, error) {
	v.s.mu.Lock()
	e, ok := v.s.wallets[userID]
	if !ok {
		e = &walletEntry{w: models.Wallet{UserID: userID, LastUpdatedAt: time.Now()}}
		v.s.wallets[userID] = e
	}
	v.s.mu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.w, nil
}

func (v walletsView) Adjust(_ context.Context, userID string, delta int64) (models.Wallet, error) {
	if v.s.AdjustErr != nil {
		if err := v.s.AdjustErr(userID, delta); err != nil {
			return models.Wallet{}, err
		}
	}
	e, ok := v.s.wallet(userID)
	if !ok {
		return models.Wallet{}, repo.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.w.Amount+delta < 0 {
		return models.Wallet{}, repo.ErrInsufficientBalance
	}
	e.w.Amount += delta
	e.w.LastUpdatedAt = time.Now()
	return e.w, nil
}

func (v walletsView) AdjustTx(ctx context.Context, _ pgx.Tx, userID string, delta int64) (models.Wallet, error) {
	return v.Adjust(ctx, userID, delta)
}

func (v walletsView) List(_ context.Context) ([]models.Wallet, error) {
	v.s.mu.RLock()
	entries := make([]*walletEntry, 0, len(v.s.wallets))
	for _, e := range v.s.wallets {
		entries = append(entries, e)
	}
	v.s.mu.RUnlock()

	out := make([]models.Wallet, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.w)
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// ----------------- products -----------------

type productsView struct{ s *Store }

func (v productsView) Create(_ context.Context, p models.Product) (models.Product, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()
	v.s.products[p.ID] = p
	return p, nil
}

func (v productsView) GetByID(_ context.Context, id string) (models.Product, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	p, ok := v.s.products[id]
	if !ok {
		return models.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (v productsView) List(_ context.Context) ([]models.Product, error) {
	return v.filter(func(models.Product) bool { return true }), nil
}

func (v productsView) ListByOwner(_ context.Context, ownerID string) ([]models.Product, error) {
	return v.filter(func(p models.Product) bool { return p.CreatedBy == ownerID }), nil
}

func (v productsView) filter(keep func(models.Product) bool) []models.Product {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []models.Product
	for _, p := range v.s.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (v productsView) Update(_ context.Context, p models.Product) (models.Product, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	ex, ok := v.s.products[p.ID]
	if !ok || ex.CreatedBy != p.CreatedBy {
		return models.Product{}, repo.ErrNotFound
	}
	ex.Title, ex.Price, ex.Picture, ex.URL = p.Title, p.Price, p.Picture, p.URL
	v.s.products[p.ID] = ex
	return ex, nil
}

func (v productsView) Delete(_ context.Context, id, ownerID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	ex, ok := v.s.products[id]
	if !ok || ex.CreatedBy != ownerID {
		return repo.ErrNotFound
	}
	delete(v.s.products, id)
	return nil
}

// ----------------- purchase ledger -----------------

type transactionsView struct{ s *Store }

func (v transactionsView) Create(_ context.Context, t models.Transaction) (models.Transaction, error) {
	if v.s.LedgerErr != nil {
		if err := v.s.LedgerErr(t); err != nil {
			return models.Transaction{}, err
		}
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = time.Now()
	v.s.ledger = append(v.s.ledger, t)
	return t, nil
}

func (v transactionsView) CreateTx(ctx context.Context, _ pgx.Tx, t models.Transaction) (models.Transaction, error) {
	return v.Create(ctx, t)
}

func (v transactionsView) GetByID(_ context.Context, id string) (models.Transaction, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	for _, t := range v.s.ledger {
		if t.ID == id {
			return t, nil
		}
	}
	return models.Transaction{}, repo.ErrNotFound
}

func (v transactionsView) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []models.Transaction
	for i := len(v.s.ledger) - 1; i >= 0; i-- {
		t := v.s.ledger[i]
		if t.BuyerID == userID || t.SellerID == userID {
			out = append(out, t)
		}
	}
	return page(out, limit, offset), nil
}

// ----------------- funding ledger -----------------

type fundingsView struct{ s *Store }

func (v fundingsView) Create(_ context.Context, f models.FundingTransaction) (models.FundingTransaction, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = models.FundingCompleted
	}
	now := time.Now()
	f.CreatedAt, f.UpdatedAt = now, now
	v.s.fundings = append(v.s.fundings, f)
	return f, nil
}

func (v fundingsView) UpdateStatus(_ context.Context, id string, status models.FundingStatus) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i := range v.s.fundings {
		if v.s.fundings[i].ID == id {
			v.s.fundings[i].Status = status
			v.s.fundings[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return repo.ErrNotFound
}

func (v fundingsView) ListByUser(_ context.Context, userID string, limit, offset int) ([]models.FundingTransaction, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []models.FundingTransaction
	for i := len(v.s.fundings) - 1; i >= 0; i-- {
		if v.s.fundings[i].UserID == userID {
			out = append(out, v.s.fundings[i])
		}
	}
	return page(out, limit, offset), nil
}

// ----------------- otps -----------------

type otpsView struct{ s *Store }

func (v otpsView) Create(_ context.Context, o models.EmailOTP) (models.EmailOTP, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CreatedAt = time.Now()
	v.s.otps[o.Email] = append(v.s.otps[o.Email], o)
	return o, nil
}

func (v otpsView) Latest(_ context.Context, email string) (models.EmailOTP, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	list := v.s.otps[email]
	if len(list) == 0 {
		return models.EmailOTP{}, repo.ErrNotFound
	}
	return list[len(list)-1], nil
}

func (v otpsView) DeleteForEmail(_ context.Context, email string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.otps, email)
	return nil
}

// ----------------- audit trail -----------------

type auditLogsView struct{ s *Store }

func (v auditLogsView) Create(_ context.Context, l models.AuditLog) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = time.Now()
	v.s.audits = append(v.s.audits, l)
	return nil
}

func (v auditLogsView) ListByEntity(_ context.Context, entityType string, limit int) ([]models.AuditLog, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	var out []models.AuditLog
	for i := len(v.s.audits) - 1; i >= 0; i-- {
		if v.s.audits[i].EntityType == entityType {
			out = append(out, v.s.audits[i])
		}
	}
	return page(out, limit, 0), nil
}

func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
