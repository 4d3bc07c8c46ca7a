package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
)

// PostgresStore implements every store interface over a gorm connection.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore wraps an initialized gorm connection.
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func translateErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrNotFound
	}
	return err
}

// --- InventoryStore ---

func (s *PostgresStore) AddBatch(ctx context.Context, batch *model.FlowerBatch) error {
	return s.db.WithContext(ctx).Create(batch).Error
}

func (s *PostgresStore) GetBatch(ctx context.Context, id uint) (*model.FlowerBatch, error) {
	var batch model.FlowerBatch
	if err := s.db.WithContext(ctx).First(&batch, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &batch, nil
}

func (s *PostgresStore) ListBatches(ctx context.Context, offset, limit int) ([]model.FlowerBatch, error) {
	var batches []model.FlowerBatch
	err := s.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&batches).Error
	return batches, err
}

func (s *PostgresStore) ListBatchesCreatedSince(ctx context.Context, since time.Time) ([]model.FlowerBatch, error) {
	var batches []model.FlowerBatch
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("id").
		Find(&batches).Error
	return batches, err
}

// DecrementQuantity locks the row for the check-then-subtract so two
// concurrent sales of the same batch cannot both pass the stock check.
func (s *PostgresStore) DecrementQuantity(ctx context.Context, id uint, quantity int) (*model.FlowerBatch, error) {
	var batch model.FlowerBatch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&batch, id).Error; err != nil {
			return translateErr(err)
		}
		if err := batch.Take(quantity, time.Now().UTC()); err != nil {
			return err
		}
		return tx.Save(&batch).Error
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *PostgresStore) IncrementQuantity(ctx context.Context, id uint, quantity int) (*model.FlowerBatch, error) {
	var batch model.FlowerBatch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&batch, id).Error; err != nil {
			return translateErr(err)
		}
		if err := batch.Restock(quantity); err != nil {
			return err
		}
		return tx.Save(&batch).Error
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *PostgresStore) DeleteBatch(ctx context.Context, id uint) (*model.FlowerBatch, error) {
	var batch model.FlowerBatch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&batch, id).Error; err != nil {
			return translateErr(err)
		}
		return tx.Delete(&model.FlowerBatch{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (s *PostgresStore) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	var deleted int64
	db := s.db.WithContext(ctx)

	res := db.Where("status = ? AND sold_at <= ?", model.BatchStatusSold, now.Add(-soldRetention)).
		Delete(&model.FlowerBatch{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	res = db.Where("status = ? AND created_at <= ?", model.BatchStatusAvailable, now.Add(-availableRetention)).
		Delete(&model.FlowerBatch{})
	if res.Error != nil {
		return deleted, res.Error
	}
	deleted += res.RowsAffected

	return deleted, nil
}

// --- OrderStore ---

func (s *PostgresStore) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &order, nil
}

func (s *PostgresStore) ListOrders(ctx context.Context, offset, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (s *PostgresStore) ListOrdersByCustomer(ctx context.Context, customerID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// --- UserStore ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *PostgresStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

func (s *PostgresStore) ListUsers(ctx context.Context, offset, limit int) ([]model.User, error) {
	var users []model.User
	err := s.db.WithContext(ctx).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return translateErr(err)
		}
		return tx.Delete(&model.User{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// --- SubscriberStore ---

func (s *PostgresStore) UpsertSubscriber(ctx context.Context, chatID string, active bool) (*model.Subscriber, error) {
	sub := model.Subscriber{ChatID: chatID, IsActive: active}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "updated_at"}),
	}).Create(&sub).Error
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Where("chat_id = ?", chatID).First(&sub).Error; err != nil {
		return nil, translateErr(err)
	}
	return &sub, nil
}

func (s *PostgresStore) ListActiveSubscribers(ctx context.Context) ([]model.Subscriber, error) {
	var subs []model.Subscriber
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id").Find(&subs).Error
	return subs, err
}

// --- TxRunner ---

type postgresOrderTx struct {
	tx *gorm.DB
}

func (t *postgresOrderTx) LockBatch(ctx context.Context, id uint) (*model.FlowerBatch, error) {
	var batch model.FlowerBatch
	err := t.tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&batch, id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &batch, nil
}

func (t *postgresOrderTx) SaveBatch(ctx context.Context, batch *model.FlowerBatch) error {
	return t.tx.WithContext(ctx).Save(batch).Error
}

func (t *postgresOrderTx) CreateOrder(ctx context.Context, order *model.Order) error {
	return t.tx.WithContext(ctx).Create(order).Error
}

// InOrderTx runs fn inside one database transaction; gorm rolls back on any
// returned error, so a failed order line undoes every earlier decrement.
func (s *PostgresStore) InOrderTx(ctx context.Context, fn func(tx OrderTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postgresOrderTx{tx: tx})
	})
}
