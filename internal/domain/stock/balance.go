package stock

import (
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// Effect devuelve el efecto con signo de un movimiento sobre el balance: +qty para ENTRADA, -qty para SAIDA/PERDA.
func Effect(t entity.MovementType, quantity int) int {
	if t.IsOutflow() {
		return -quantity
	}
	return quantity
}

// Fold calcula el stock actual a partir del ledger. Los movimientos cancelados no cuentan.
// El resultado nunca es negativo.
func Fold(movements []*entity.Movement) int {
	total := 0
	for _, m := range movements {
		if m.Cancelled {
			continue
		}
		total += Effect(m.Type, m.Quantity)
	}
	return clamp(total)
}

// BalanceAt calcula el stock tal como estaba en el instante at (movimientos con CreatedAt <= at).
func BalanceAt(movements []*entity.Movement, at time.Time) int {
	total := 0
	for _, m := range movements {
		if m.Cancelled || m.CreatedAt.After(at) {
			continue
		}
		total += Effect(m.Type, m.Quantity)
	}
	return clamp(total)
}

// Replay recorre los movimientos en orden del ledger (Seq) y recalcula BalanceAfter de cada uno.
// Devuelve el balance final y solo las filas cuyo valor cacheado difiere del recalculado.
// Los movimientos cancelados conservan su BalanceAfter histórico.
func Replay(movements []*entity.Movement) (int, []entity.BalanceUpdate) {
	running := 0
	var drift []entity.BalanceUpdate
	for _, m := range movements {
		if m.Cancelled {
			continue
		}
		running += Effect(m.Type, m.Quantity)
		if m.BalanceAfter != running {
			drift = append(drift, entity.BalanceUpdate{MovementID: m.ID, BalanceAfter: running})
		}
	}
	return clamp(running), drift
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
