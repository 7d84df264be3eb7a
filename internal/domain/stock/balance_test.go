package stock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
)

func mov(id string, t entity.MovementType, qty, balanceAfter int, at time.Time) *entity.Movement {
	return &entity.Movement{ID: id, Type: t, Quantity: qty, BalanceAfter: balanceAfter, CreatedAt: at}
}

func TestEffect(t *testing.T) {
	assert.Equal(t, 7, stock.Effect(entity.MovementTypeEntrada, 7))
	assert.Equal(t, -7, stock.Effect(entity.MovementTypeSaida, 7))
	assert.Equal(t, -7, stock.Effect(entity.MovementTypePerda, 7))
}

func TestFold_IgnoraCanceladosYNoBajaDeCero(t *testing.T) {
	now := time.Now()
	movs := []*entity.Movement{
		mov("1", entity.MovementTypeEntrada, 10, 10, now),
		mov("2", entity.MovementTypeSaida, 4, 6, now),
		mov("3", entity.MovementTypePerda, 1, 5, now),
	}
	assert.Equal(t, 5, stock.Fold(movs))

	movs[0].Cancelled = true
	assert.Equal(t, 0, stock.Fold(movs), "sin la entrada el resultado se limita a cero")
	assert.Equal(t, 0, stock.Fold(nil))
}

func TestBalanceAt(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	movs := []*entity.Movement{
		mov("1", entity.MovementTypeEntrada, 10, 10, t0),
		mov("2", entity.MovementTypeSaida, 3, 7, t0.Add(time.Hour)),
		mov("3", entity.MovementTypeEntrada, 5, 12, t0.Add(2*time.Hour)),
	}
	assert.Equal(t, 0, stock.BalanceAt(movs, t0.Add(-time.Minute)))
	assert.Equal(t, 10, stock.BalanceAt(movs, t0))
	assert.Equal(t, 7, stock.BalanceAt(movs, t0.Add(90*time.Minute)))
	assert.Equal(t, 12, stock.BalanceAt(movs, t0.Add(3*time.Hour)))
}

func TestReplay_DevuelveSoloFilasDesviadas(t *testing.T) {
	now := time.Now()
	movs := []*entity.Movement{
		mov("1", entity.MovementTypeEntrada, 10, 10, now),
		mov("2", entity.MovementTypeSaida, 4, 99, now),
		mov("3", entity.MovementTypeEntrada, 2, 8, now),
	}
	final, drift := stock.Replay(movs)
	assert.Equal(t, 8, final)
	require.Len(t, drift, 1)
	assert.Equal(t, entity.BalanceUpdate{MovementID: "2", BalanceAfter: 6}, drift[0])
}

func TestReplay_EsIdempotente(t *testing.T) {
	now := time.Now()
	movs := []*entity.Movement{
		mov("1", entity.MovementTypeEntrada, 10, 0, now),
		mov("2", entity.MovementTypeSaida, 4, 0, now),
		mov("3", entity.MovementTypePerda, 1, 0, now),
	}
	final1, drift := stock.Replay(movs)
	require.Len(t, drift, 3)
	for _, d := range drift {
		for _, m := range movs {
			if m.ID == d.MovementID {
				m.BalanceAfter = d.BalanceAfter
			}
		}
	}
	final2, drift2 := stock.Replay(movs)
	assert.Equal(t, final1, final2)
	assert.Empty(t, drift2, "la segunda pasada no debe modificar nada")
}

func TestReplay_SaltaCancelados(t *testing.T) {
	now := time.Now()
	cancelled := mov("2", entity.MovementTypeSaida, 4, 6, now)
	cancelled.Cancelled = true
	movs := []*entity.Movement{
		mov("1", entity.MovementTypeEntrada, 10, 10, now),
		cancelled,
		mov("3", entity.MovementTypeEntrada, 2, 8, now),
	}
	final, drift := stock.Replay(movs)
	assert.Equal(t, 12, final)
	require.Len(t, drift, 1)
	assert.Equal(t, "3", drift[0].MovementID)
	assert.Equal(t, 12, drift[0].BalanceAfter)
}
