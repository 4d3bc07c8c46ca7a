package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/12344321abc/romantic-flowers-app/internal/model"
)

func seedBatch(t *testing.T, s *MemoryStore, name string, price float64, quantity int) *model.FlowerBatch {
	t.Helper()
	b := model.NewFlowerBatch(name, "", price, quantity, "", time.Now().UTC())
	if err := s.AddBatch(context.Background(), b); err != nil {
		t.Fatalf("AddBatch error: %v", err)
	}
	return b
}

func TestMemoryStore_AddAndGetBatch(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	b := seedBatch(t, s, "Roses", 10, 5)
	if b.ID == 0 {
		t.Fatalf("AddBatch did not assign an id")
	}

	got, err := s.GetBatch(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetBatch error: %v", err)
	}
	if got.Name != "Roses" || got.Quantity != 5 {
		t.Fatalf("unexpected batch: %+v", got)
	}

	if _, err := s.GetBatch(context.Background(), 999); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ListBatchesPagination(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	for _, name := range []string{"a", "b", "c", "d"} {
		seedBatch(t, s, name, 1, 1)
	}

	page, err := s.ListBatches(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ListBatches error: %v", err)
	}
	if len(page) != 2 || page[0].Name != "b" || page[1].Name != "c" {
		t.Fatalf("unexpected page: %+v", page)
	}

	empty, err := s.ListBatches(context.Background(), 10, 2)
	if err != nil {
		t.Fatalf("ListBatches error: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %+v", empty)
	}
}

func TestMemoryStore_NegativeOffsetListsFromStart(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	seedBatch(t, s, "a", 1, 1)
	seedBatch(t, s, "b", 1, 1)

	batches, err := s.ListBatches(context.Background(), -1, 10)
	if err != nil {
		t.Fatalf("ListBatches error: %v", err)
	}
	if len(batches) != 2 || batches[0].Name != "a" {
		t.Fatalf("unexpected batches for negative offset: %+v", batches)
	}

	if err := s.CreateUser(context.Background(), &model.User{Username: "alice"}); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	users, err := s.ListUsers(context.Background(), -3, 10)
	if err != nil {
		t.Fatalf("ListUsers error: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("unexpected users for negative offset: %+v", users)
	}

	orders, err := s.ListOrders(context.Background(), -2, 10)
	if err != nil {
		t.Fatalf("ListOrders error: %v", err)
	}
	if len(orders) != 0 {
		t.Fatalf("unexpected orders for negative offset: %+v", orders)
	}
}

func TestMemoryStore_DecrementInsufficientLeavesBatchUnchanged(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	b := seedBatch(t, s, "Roses", 10, 4)

	_, err := s.DecrementQuantity(context.Background(), b.ID, 6)
	var insufficient *model.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	got, err := s.GetBatch(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetBatch error: %v", err)
	}
	if got.Quantity != 4 || got.Status != model.BatchStatusAvailable {
		t.Fatalf("batch mutated by failed decrement: %+v", got)
	}
}

func TestMemoryStore_IncrementRevivesSoldBatch(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	b := seedBatch(t, s, "Roses", 10, 2)

	if _, err := s.DecrementQuantity(context.Background(), b.ID, 2); err != nil {
		t.Fatalf("DecrementQuantity error: %v", err)
	}

	got, err := s.IncrementQuantity(context.Background(), b.ID, 3)
	if err != nil {
		t.Fatalf("IncrementQuantity error: %v", err)
	}
	if got.Quantity != 3 || got.Status != model.BatchStatusAvailable || got.SoldAt != nil {
		t.Fatalf("unexpected batch after restock: %+v", got)
	}
}

func TestMemoryStore_SweepExpired(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	now := time.Now().UTC()

	// sold 8 days ago: expired
	soldOld := seedBatch(t, s, "sold-old", 1, 1)
	soldAt := now.Add(-8 * 24 * time.Hour)
	s.batches[soldOld.ID].Status = model.BatchStatusSold
	s.batches[soldOld.ID].Quantity = 0
	s.batches[soldOld.ID].SoldAt = &soldAt

	// sold yesterday: kept
	soldFresh := seedBatch(t, s, "sold-fresh", 1, 1)
	freshSoldAt := now.Add(-24 * time.Hour)
	s.batches[soldFresh.ID].Status = model.BatchStatusSold
	s.batches[soldFresh.ID].Quantity = 0
	s.batches[soldFresh.ID].SoldAt = &freshSoldAt

	// available for 22 days: expired
	availOld := seedBatch(t, s, "avail-old", 1, 1)
	s.batches[availOld.ID].CreatedAt = now.Add(-22 * 24 * time.Hour)

	// available, fresh: kept
	availFresh := seedBatch(t, s, "avail-fresh", 1, 1)

	deleted, err := s.SweepExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("SweepExpired error: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}

	if _, err := s.GetBatch(context.Background(), soldOld.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expired sold batch still present")
	}
	if _, err := s.GetBatch(context.Background(), availOld.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expired available batch still present")
	}
	if _, err := s.GetBatch(context.Background(), soldFresh.ID); err != nil {
		t.Fatalf("fresh sold batch deleted")
	}
	if _, err := s.GetBatch(context.Background(), availFresh.ID); err != nil {
		t.Fatalf("fresh available batch deleted")
	}

	// idempotence: nothing left matching the predicate
	again, err := s.SweepExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("second SweepExpired error: %v", err)
	}
	if again != 0 {
		t.Fatalf("second sweep deleted %d, want 0", again)
	}
}

func TestMemoryStore_InOrderTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	b := seedBatch(t, s, "Roses", 10, 5)

	failed := errors.New("line rejected")
	err := s.InOrderTx(context.Background(), func(tx OrderTx) error {
		batch, err := tx.LockBatch(context.Background(), b.ID)
		if err != nil {
			return err
		}
		if err := batch.Take(3, time.Now().UTC()); err != nil {
			return err
		}
		if err := tx.SaveBatch(context.Background(), batch); err != nil {
			return err
		}
		if err := tx.CreateOrder(context.Background(), &model.Order{CustomerID: 1}); err != nil {
			return err
		}
		return failed
	})
	if !errors.Is(err, failed) {
		t.Fatalf("expected fn error, got %v", err)
	}

	got, err := s.GetBatch(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetBatch error: %v", err)
	}
	if got.Quantity != 5 {
		t.Fatalf("rollback failed: quantity = %d, want 5", got.Quantity)
	}
	if orders, _ := s.ListOrders(context.Background(), 0, 10); len(orders) != 0 {
		t.Fatalf("rollback failed: %d orders persisted", len(orders))
	}
}

func TestMemoryStore_DeleteReturnsCopies(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	b := seedBatch(t, s, "Roses", 10, 5)

	internalBatch := s.batches[b.ID]
	gotBatch, err := s.DeleteBatch(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("DeleteBatch error: %v", err)
	}
	if gotBatch == internalBatch {
		t.Fatalf("DeleteBatch returned the internal row pointer")
	}
	if gotBatch.Name != "Roses" || gotBatch.Quantity != 5 {
		t.Fatalf("unexpected deleted batch: %+v", gotBatch)
	}

	user := &model.User{Username: "alice"}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	internalUser := s.users[user.ID]
	gotUser, err := s.DeleteUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("DeleteUser error: %v", err)
	}
	if gotUser == internalUser {
		t.Fatalf("DeleteUser returned the internal row pointer")
	}
	if gotUser.Username != "alice" {
		t.Fatalf("unexpected deleted user: %+v", gotUser)
	}
}

func TestMemoryStore_UpsertSubscriber(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore()
	ctx := context.Background()

	sub, err := s.UpsertSubscriber(ctx, "chat-1", true)
	if err != nil {
		t.Fatalf("UpsertSubscriber error: %v", err)
	}
	if !sub.IsActive {
		t.Fatalf("expected active subscriber")
	}

	sub, err = s.UpsertSubscriber(ctx, "chat-1", false)
	if err != nil {
		t.Fatalf("UpsertSubscriber error: %v", err)
	}
	if sub.IsActive {
		t.Fatalf("expected inactive subscriber after upsert")
	}

	if _, err := s.UpsertSubscriber(ctx, "chat-2", true); err != nil {
		t.Fatalf("UpsertSubscriber error: %v", err)
	}
	active, err := s.ListActiveSubscribers(ctx)
	if err != nil {
		t.Fatalf("ListActiveSubscribers error: %v", err)
	}
	if len(active) != 1 || active[0].ChatID != "chat-2" {
		t.Fatalf("unexpected active subscribers: %+v", active)
	}
}
