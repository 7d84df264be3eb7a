package stock

import "math"

// Alert clasificación de una transición de stock. AlertNone equivale a "sin alerta".
type Alert string

// Categorías de alerta (valores de wire).
const (
	AlertNone           Alert = ""
	AlertLowStock       Alert = "LOW_STOCK"
	AlertCriticalStock  Alert = "CRITICAL_STOCK"
	AlertOverstock      Alert = "OVERSTOCK"
	AlertStockRecovered Alert = "STOCK_RECOVERED"
)

// Threshold umbral de alerta: round(stockMin * alertPercentage / 100).
func Threshold(stockMin, alertPercentage int) int {
	return int(math.Round(float64(stockMin) * float64(alertPercentage) / 100))
}

// Classify clasifica la transición previousStock -> currentStock. Gana la primera regla que aplique:
//  1. current <= 0                                 -> CRITICAL_STOCK
//  2. current <= umbral                            -> LOW_STOCK (se repite en cada movimiento)
//  3. current > umbral y 0 < previous <= umbral    -> STOCK_RECOVERED (solo al cruzar desde stock bajo)
//  4. current > stockMax y previous <= stockMax    -> OVERSTOCK (solo al cruzar; requiere stockMax > 0)
func Classify(currentStock, previousStock, stockMin, stockMax, alertPercentage int) Alert {
	threshold := Threshold(stockMin, alertPercentage)
	switch {
	case currentStock <= 0:
		return AlertCriticalStock
	case currentStock <= threshold:
		return AlertLowStock
	case previousStock > 0 && previousStock <= threshold:
		return AlertStockRecovered
	case stockMax > 0 && currentStock > stockMax && previousStock <= stockMax:
		return AlertOverstock
	}
	return AlertNone
}

// IsBelowMin indica si la alerta corresponde a stock bajo el mínimo (LOW o CRITICAL).
func (a Alert) IsBelowMin() bool {
	return a == AlertLowStock || a == AlertCriticalStock
}
