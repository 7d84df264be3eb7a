package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/memory"
)

func TestStore_RunRollbackEnError(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	err := s.Run(ctx, func(movRepo repository.MovementRepository, balRepo repository.StockBalanceRepository) error {
		b, err := balRepo.GetForUpdate(ctx, "p1", "s1")
		require.NoError(t, err)
		b.Quantity = 10
		require.NoError(t, balRepo.Save(ctx, b))
		require.NoError(t, movRepo.Create(ctx, &entity.Movement{
			ProductID: "p1", StoreID: "s1", Type: entity.MovementTypeEntrada, Quantity: 10, CreatedAt: time.Now(),
		}))
		return errors.New("falla después de escribir")
	})
	require.Error(t, err)

	movs, err := s.Movements().ListByProductAndStore(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Empty(t, movs)
	b, err := s.Balances().Get(ctx, "p1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Quantity)
	assert.Equal(t, int64(0), b.Version)
}

func TestStore_BalanceSaveConVersion(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	repo := s.Balances()

	b, err := repo.GetForUpdate(ctx, "p1", "s1")
	require.NoError(t, err)
	stale := *b

	b.Quantity = 5
	require.NoError(t, repo.Save(ctx, b))
	assert.Equal(t, int64(1), b.Version)

	stale.Quantity = 7
	assert.ErrorIs(t, repo.Save(ctx, &stale), domain.ErrConflict)
}

func TestMovementRepo_OrdenYFiltros(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	s.AddProduct(entity.Product{ID: "p1", StoreID: "s1", Name: "Arroz"})
	s.AddStore(entity.Store{ID: "s1", Name: "Centro", OwnerID: "u1"})
	s.AddUser("u1", "Ana")
	repo := s.Movements()

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, typ := range []entity.MovementType{entity.MovementTypeEntrada, entity.MovementTypeSaida, entity.MovementTypePerda} {
		require.NoError(t, repo.Create(ctx, &entity.Movement{
			ID: string(typ), ProductID: "p1", StoreID: "s1", Type: typ, Quantity: 1, UserID: "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &entity.Movement{ID: "otra", ProductID: "p1", StoreID: "s2", Type: entity.MovementTypeEntrada, Quantity: 1, CreatedAt: base}))

	ledger, err := repo.ListByProductAndStore(ctx, "p1", "s1")
	require.NoError(t, err)
	require.Len(t, ledger, 3)
	assert.Equal(t, "ENTRADA", ledger[0].ID)
	assert.Equal(t, "PERDA", ledger[2].ID)
	assert.Less(t, ledger[0].Seq, ledger[2].Seq)

	list, total, err := repo.List(ctx, repository.MovementFilter{StoreID: "s1", Type: entity.MovementTypeSaida, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, "Arroz", list[0].ProductName)
	assert.Equal(t, "Centro", list[0].StoreName)
	assert.Equal(t, "Ana", list[0].UserName)

	page, total, err := repo.List(ctx, repository.MovementFilter{StoreID: "s1", Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "PERDA", page[0].ID, "más recientes primero")

	// el ledger sigue el orden de inserción aunque la fecha sea anterior
	require.NoError(t, repo.Create(ctx, &entity.Movement{
		ID: "tardia", ProductID: "p1", StoreID: "s1", Type: entity.MovementTypeEntrada, Quantity: 1,
		CreatedAt: base.Add(-time.Hour),
	}))
	ledger, err = repo.ListByProductAndStore(ctx, "p1", "s1")
	require.NoError(t, err)
	require.Len(t, ledger, 4)
	assert.Equal(t, "tardia", ledger[3].ID)
}

func TestNotificationRepo_MarkReadSoloDelDueño(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	repo := s.Notifications()

	n := &entity.Notification{UserID: "u1", Title: "t", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, n))

	assert.ErrorIs(t, repo.MarkRead(ctx, "u2", n.ID), domain.ErrNotFound)
	require.NoError(t, repo.MarkRead(ctx, "u1", n.ID))

	unread, err := repo.ListByUser(ctx, "u1", true, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
