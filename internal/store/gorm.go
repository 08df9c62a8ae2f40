package store

import (
	"context" // Request-scoped DB sessions
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"strings" // Index name matching
	"time"    // Mutation timestamps

	"banking_api/internal/domain" // Domain models

	"github.com/go-sql-driver/mysql" // MySQL error codes
	"github.com/shopspring/decimal"  // Exact decimal money
	"gorm.io/gorm"                   // GORM ORM library
	"gorm.io/gorm/clause"            // Row locking
)

// GormStore persists state through GORM (MySQL in production)
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open GORM connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// deadlockRetries bounds how often a transaction chosen as deadlock victim is rerun
const deadlockRetries = 3

// Atomic runs fn inside a database transaction; rows are locked only through LockUsers
func (s *GormStore) Atomic(ctx context.Context, fn func(tx Tx) error) error {
	for attempt := 0; ; attempt++ {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormTx{db: tx}) // Returning an error rolls back
		})
		if attempt < deadlockRetries && mysqlCode(err) == 1213 {
			continue // InnoDB rolled the whole transaction back
		}
		return err
	}
}

// View runs fn on a plain session
func (s *GormStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return fn(&gormTx{db: s.db.WithContext(ctx), readOnly: true})
}

type gormTx struct {
	db       *gorm.DB
	readOnly bool
}

// notFound converts gorm's sentinel into ours
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// mysqlCode returns the server error number carried by err, or 0
func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// duplicateKey reports a MySQL unique violation (1062) and the index it hit
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != 1062 {
		return "", false
	}
	return me.Message, true
}

func (t *gormTx) userWhere(query string, arg any) (*domain.User, error) {
	var u domain.User
	if err := t.db.Where(query, arg).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (t *gormTx) UserByID(id uint) (*domain.User, error) {
	return t.userWhere("id = ?", id)
}

func (t *gormTx) UserByEmail(email string) (*domain.User, error) {
	return t.userWhere("email = ?", email)
}

func (t *gormTx) UserByAccount(account string) (*domain.User, error) {
	return t.userWhere("account = ?", account)
}

// LockUsers reads with SELECT ... FOR UPDATE ordered by primary key, so
// concurrent transfers between the same pair always lock in the same order
func (t *gormTx) LockUsers(ids ...uint) (map[uint]*domain.User, error) {
	var users []domain.User
	err := t.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("lock users: %w", err)
	}
	out := make(map[uint]*domain.User, len(users))
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (t *gormTx) AccountExists(account string) (bool, error) {
	var count int64
	if err := t.db.Model(&domain.User{}).Where("account = ?", account).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (t *gormTx) CreateUser(u *domain.User) error {
	if t.readOnly {
		return ErrReadOnly
	}
	err := t.db.Create(u).Error
	if msg, dup := duplicateKey(err); dup {
		if strings.Contains(msg, domain.UserAccountIndex) {
			return ErrAccountTaken
		}
		return ErrEmailTaken
	}
	return err
}

func (t *gormTx) AddBalance(id uint, delta decimal.Decimal, at time.Time) error {
	if t.readOnly {
		return ErrReadOnly
	}
	res := t.db.Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"balance":    gorm.Expr("balance + ?", delta), // Accumulate in the database
		"updated_at": at,
	})
	if res.Error != nil {
		return fmt.Errorf("add balance: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTx) RenameUser(id uint, name string, at time.Time) error {
	if t.readOnly {
		return ErrReadOnly
	}
	res := t.db.Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"name":       name,
		"updated_at": at,
	})
	if res.Error != nil {
		return fmt.Errorf("rename user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *gormTx) CreateTransfer(tr *domain.Transfer) error {
	if t.readOnly {
		return ErrReadOnly
	}
	return t.db.Create(tr).Error
}

func (t *gormTx) TransfersByAccount(account string) ([]domain.Transfer, error) {
	var out []domain.Transfer
	err := t.db.Where("from_account = ? OR to_account = ?", account, account).
		Order("id asc"). // Insertion order
		Find(&out).Error
	return out, err
}

func (t *gormTx) FavoriteByAccount(ownerID uint, account string) (*domain.Favorite, error) {
	var f domain.Favorite
	if err := t.db.Where("owner_id = ? AND account = ?", ownerID, account).First(&f).Error; err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (t *gormTx) FavoriteByID(ownerID, id uint) (*domain.Favorite, error) {
	var f domain.Favorite
	if err := t.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&f).Error; err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (t *gormTx) CreateFavorite(f *domain.Favorite) error {
	if t.readOnly {
		return ErrReadOnly
	}
	err := t.db.Create(f).Error
	if _, dup := duplicateKey(err); dup {
		return ErrFavoriteExists // Only the (owner, account) index is unique
	}
	return err
}

func (t *gormTx) FavoritesByOwner(ownerID uint) ([]domain.Favorite, error) {
	var out []domain.Favorite
	err := t.db.Where("owner_id = ?", ownerID).Order("id asc").Find(&out).Error
	return out, err
}

func (t *gormTx) DeleteFavorite(ownerID, id uint) error {
	if t.readOnly {
		return ErrReadOnly
	}
	res := t.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&domain.Favorite{})
	if res.Error != nil {
		return fmt.Errorf("delete favorite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
