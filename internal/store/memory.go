package store

import (
	"context" // Unit of work signature
	"errors"  // Error inspection
	"sort"    // Ordering favorites by id
	"sync"    // Critical sections
	"time"    // Mutation timestamps

	"banking_api/internal/domain" // Domain models

	"github.com/shopspring/decimal" // Exact decimal money
)

// favoriteKey identifies a favorite by its unique (owner, account) pair
type favoriteKey struct {
	ownerID uint
	account string
}

// MemoryStore keeps all state in maps guarded by a single RWMutex.
// Returned records are copies; callers never hold pointers into the store.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[uint]*domain.User // Users by ID
	byEmail   map[string]uint       // Email -> user ID
	byAccount map[string]uint       // Account -> user ID

	transfers  []domain.Transfer // Append-only history
	byTransfer map[string][]int  // Account -> positions in transfers

	favorites  map[uint]domain.Favorite // Favorites by ID
	byFavorite map[favoriteKey]uint     // (owner, account) -> favorite ID

	nextUserID     uint // Last issued user ID
	nextTransferID uint // Last issued transfer ID
	nextFavoriteID uint // Last issued favorite ID
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[uint]*domain.User),
		byEmail:    make(map[string]uint),
		byAccount:  make(map[string]uint),
		byTransfer: make(map[string][]int),
		favorites:  make(map[uint]domain.Favorite),
		byFavorite: make(map[favoriteKey]uint),
	}
}

// Atomic runs fn under the write lock and rolls back its writes on error
func (s *MemoryStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err // Do not start work for a cancelled caller
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memoryTx{s: s}
	if err := fn(tx); err != nil {
		tx.rollback() // Undo in reverse order
		return err
	}
	return nil
}

// View runs fn under the read lock
func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memoryTx{s: s, readOnly: true})
}

// memoryTx journals an undo step for every write
type memoryTx struct {
	s        *MemoryStore
	readOnly bool
	undo     []func()
}

func (t *memoryTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memoryTx) UserByID(id uint) (*domain.User, error) {
	u, ok := t.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (t *memoryTx) UserByEmail(email string) (*domain.User, error) {
	id, ok := t.s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return t.UserByID(id)
}

func (t *memoryTx) UserByAccount(account string) (*domain.User, error) {
	id, ok := t.s.byAccount[account]
	if !ok {
		return nil, ErrNotFound
	}
	return t.UserByID(id)
}

// LockUsers needs no row locks: Atomic already holds the store lock
func (t *memoryTx) LockUsers(ids ...uint) (map[uint]*domain.User, error) {
	out := make(map[uint]*domain.User, len(ids))
	for _, id := range ids {
		u, err := t.UserByID(id)
		if errors.Is(err, ErrNotFound) {
			continue // Absent users are simply missing from the result
		}
		if err != nil {
			return nil, err
		}
		out[id] = u
	}
	return out, nil
}

func (t *memoryTx) AccountExists(account string) (bool, error) {
	_, ok := t.s.byAccount[account]
	return ok, nil
}

func (t *memoryTx) CreateUser(u *domain.User) error {
	if t.readOnly {
		return ErrReadOnly
	}
	if _, taken := t.s.byEmail[u.Email]; taken {
		return ErrEmailTaken
	}
	if _, taken := t.s.byAccount[u.Account]; taken {
		return ErrAccountTaken
	}
	t.s.nextUserID++ // Counters are never rolled back
	u.ID = t.s.nextUserID
	cp := *u
	t.s.users[cp.ID] = &cp
	t.s.byEmail[cp.Email] = cp.ID
	t.s.byAccount[cp.Account] = cp.ID
	t.undo = append(t.undo, func() {
		delete(t.s.users, cp.ID)
		delete(t.s.byEmail, cp.Email)
		delete(t.s.byAccount, cp.Account)
	})
	return nil
}

func (t *memoryTx) AddBalance(id uint, delta decimal.Decimal, at time.Time) error {
	if t.readOnly {
		return ErrReadOnly
	}
	u, ok := t.s.users[id]
	if !ok {
		return ErrNotFound
	}
	prevBalance, prevUpdated := u.Balance, u.UpdatedAt
	u.Balance = u.Balance.Add(delta)
	u.UpdatedAt = at
	t.undo = append(t.undo, func() {
		u.Balance, u.UpdatedAt = prevBalance, prevUpdated
	})
	return nil
}

func (t *memoryTx) RenameUser(id uint, name string, at time.Time) error {
	if t.readOnly {
		return ErrReadOnly
	}
	u, ok := t.s.users[id]
	if !ok {
		return ErrNotFound
	}
	prevName, prevUpdated := u.Name, u.UpdatedAt
	u.Name = name
	u.UpdatedAt = at
	t.undo = append(t.undo, func() {
		u.Name, u.UpdatedAt = prevName, prevUpdated
	})
	return nil
}

func (t *memoryTx) CreateTransfer(tr *domain.Transfer) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.s.nextTransferID++
	tr.ID = t.s.nextTransferID
	pos := len(t.s.transfers)
	t.s.transfers = append(t.s.transfers, *tr)
	t.s.byTransfer[tr.FromAccount] = append(t.s.byTransfer[tr.FromAccount], pos)
	if tr.ToAccount != tr.FromAccount {
		t.s.byTransfer[tr.ToAccount] = append(t.s.byTransfer[tr.ToAccount], pos)
	}
	from, to := tr.FromAccount, tr.ToAccount
	t.undo = append(t.undo, func() {
		t.s.transfers = t.s.transfers[:pos]
		t.s.byTransfer[from] = dropLast(t.s.byTransfer[from])
		if to != from {
			t.s.byTransfer[to] = dropLast(t.s.byTransfer[to])
		}
	})
	return nil
}

func dropLast(positions []int) []int {
	if len(positions) == 0 {
		return positions
	}
	return positions[:len(positions)-1]
}

func (t *memoryTx) TransfersByAccount(account string) ([]domain.Transfer, error) {
	positions := t.s.byTransfer[account]
	out := make([]domain.Transfer, 0, len(positions))
	for _, pos := range positions {
		out = append(out, t.s.transfers[pos])
	}
	return out, nil
}

func (t *memoryTx) FavoriteByAccount(ownerID uint, account string) (*domain.Favorite, error) {
	id, ok := t.s.byFavorite[favoriteKey{ownerID, account}]
	if !ok {
		return nil, ErrNotFound
	}
	f := t.s.favorites[id]
	return &f, nil
}

func (t *memoryTx) FavoriteByID(ownerID, id uint) (*domain.Favorite, error) {
	f, ok := t.s.favorites[id]
	if !ok || f.OwnerID != ownerID {
		return nil, ErrNotFound // Someone else's favorite looks absent
	}
	return &f, nil
}

func (t *memoryTx) CreateFavorite(f *domain.Favorite) error {
	if t.readOnly {
		return ErrReadOnly
	}
	key := favoriteKey{f.OwnerID, f.Account}
	if _, taken := t.s.byFavorite[key]; taken {
		return ErrFavoriteExists
	}
	t.s.nextFavoriteID++
	f.ID = t.s.nextFavoriteID
	cp := *f
	t.s.favorites[cp.ID] = cp
	t.s.byFavorite[key] = cp.ID
	t.undo = append(t.undo, func() {
		delete(t.s.favorites, cp.ID)
		delete(t.s.byFavorite, key)
	})
	return nil
}

func (t *memoryTx) FavoritesByOwner(ownerID uint) ([]domain.Favorite, error) {
	var out []domain.Favorite
	for _, f := range t.s.favorites {
		if f.OwnerID == ownerID {
			out = append(out, f)
		}
	}
	// IDs are issued in insertion order
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memoryTx) DeleteFavorite(ownerID, id uint) error {
	if t.readOnly {
		return ErrReadOnly
	}
	f, ok := t.s.favorites[id]
	if !ok || f.OwnerID != ownerID {
		return ErrNotFound
	}
	key := favoriteKey{f.OwnerID, f.Account}
	delete(t.s.favorites, id)
	delete(t.s.byFavorite, key)
	t.undo = append(t.undo, func() {
		t.s.favorites[f.ID] = f
		t.s.byFavorite[key] = f.ID
	})
	return nil
}
