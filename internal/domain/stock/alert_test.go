package stock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stockflow-api/internal/domain/stock"
)

func TestThreshold(t *testing.T) {
	assert.Equal(t, 5, stock.Threshold(10, 50))
	assert.Equal(t, 10, stock.Threshold(20, 50))
	assert.Equal(t, 0, stock.Threshold(10, 0))
	assert.Equal(t, 3, stock.Threshold(5, 50), "2.5 redondea hacia arriba")
	assert.Equal(t, 7, stock.Threshold(13, 50), "6.5 redondea hacia arriba")
}

func TestClassify_ReglasEnOrden(t *testing.T) {
	cases := []struct {
		name              string
		current, previous int
		min, max, pct     int
		want              stock.Alert
	}{
		{"cero es crítico", 0, 3, 10, 100, 50, stock.AlertCriticalStock},
		{"cero es crítico aunque el umbral sea cero", 0, 0, 0, 0, 0, stock.AlertCriticalStock},
		{"en el umbral es bajo", 5, 8, 10, 100, 50, stock.AlertLowStock},
		{"bajo el umbral es bajo", 4, 5, 10, 100, 50, stock.AlertLowStock},
		{"cruce hacia arriba del umbral", 6, 4, 10, 100, 50, stock.AlertStockRecovered},
		{"sigue sobre el umbral", 8, 6, 10, 100, 50, stock.AlertNone},
		{"cruce hacia arriba del máximo", 105, 15, 20, 100, 50, stock.AlertOverstock},
		{"sigue sobre el máximo", 110, 105, 20, 100, 50, stock.AlertNone},
		{"recuperación gana sobre sobrestock", 150, 4, 10, 100, 50, stock.AlertStockRecovered},
		{"sin máximo configurado no hay sobrestock", 500, 50, 10, 0, 50, stock.AlertNone},
		{"primer ingreso desde cero no es recuperación", 50, 0, 20, 100, 50, stock.AlertNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := stock.Classify(tc.current, tc.previous, tc.min, tc.max, tc.pct)
			assert.Equal(t, tc.want, got)
		})
	}
}

// Secuencia 8→6→5→4 con umbral 5: solo los cruces por debajo alertan, y LOW_STOCK se repite.
func TestClassify_SecuenciaDescendente(t *testing.T) {
	levels := []int{8, 6, 5, 4}
	want := []stock.Alert{stock.AlertNone, stock.AlertLowStock, stock.AlertLowStock}
	for i := 1; i < len(levels); i++ {
		got := stock.Classify(levels[i], levels[i-1], 10, 100, 50)
		assert.Equal(t, want[i-1], got, "transición %d→%d", levels[i-1], levels[i])
	}
}

// Secuencia 4→6→8: la recuperación dispara una única vez, en el cruce.
func TestClassify_RecuperacionDisparaUnaVez(t *testing.T) {
	assert.Equal(t, stock.AlertStockRecovered, stock.Classify(6, 4, 10, 100, 50))
	assert.Equal(t, stock.AlertNone, stock.Classify(8, 6, 10, 100, 50))
}

func TestAlert_IsBelowMin(t *testing.T) {
	assert.True(t, stock.AlertLowStock.IsBelowMin())
	assert.True(t, stock.AlertCriticalStock.IsBelowMin())
	assert.False(t, stock.AlertOverstock.IsBelowMin())
	assert.False(t, stock.AlertStockRecovered.IsBelowMin())
	assert.False(t, stock.AlertNone.IsBelowMin())
}
