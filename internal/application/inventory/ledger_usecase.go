package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stockflow-api/internal/application/events"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/domain/stock"
	"github.com/jhoicas/stockflow-api/pkg/logger"
)

// LedgerUseCase registra y modifica movimientos de stock de forma transaccional.
// Cada escritura bloquea la fila de balance del par producto+tienda (SELECT FOR UPDATE), recalcula el stock
// desde el ledger dentro de la misma transacción y guarda el balance con control de versión.
// Los efectos secundarios (alertas, notificaciones, workflows) se publican como eventos después del commit.
type LedgerUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	movRepo      repository.MovementRepository
	events       EventPublisher
	cache        StockCache
	log          *logger.Logger
	metrics      ledgerMetrics
	now          func() time.Time
}

// NewLedgerUseCase construye el caso de uso. movRepo va atado al pool (lecturas fuera de transacción).
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
	movRepo repository.MovementRepository,
	publisher EventPublisher,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		movRepo:      movRepo,
		events:       publisher,
		log:          log.Named("ledger"),
		metrics:      newLedgerMetrics(),
		now:          time.Now,
	}
}

// WithStockCache hace que cada commit que cambia el stock escriba el nuevo valor en la caché antes de
// devolver, así quien escribió lee su propio cambio. cache nil lo deshabilita.
func (uc *LedgerUseCase) WithStockCache(cache StockCache) *LedgerUseCase {
	uc.cache = cache
	return uc
}

// CreateMovementInput entrada para registrar un movimiento.
// Expiration acepta YYYY-MM-DD o RFC3339.
type CreateMovementInput struct {
	StoreID    string
	ProductID  string
	Type       string
	Quantity   int
	SupplierID string
	Batch      string
	Expiration string
	Price      *decimal.Decimal
	Note       string
	UserID     string
}

// UpdateMovementInput actualización parcial; los campos nil no cambian.
type UpdateMovementInput struct {
	StoreID    string
	ID         string
	Type       *string
	Quantity   *int
	SupplierID *string
	Batch      *string
	Expiration *string
	Price      *decimal.Decimal
	Note       *string
}

// VerifyMovementInput marca o desmarca la verificación de auditoría.
type VerifyMovementInput struct {
	StoreID  string
	ID       string
	Verified bool
	Note     string
	UserID   string
}

// CancelMovementInput cancelación lógica de un movimiento.
type CancelMovementInput struct {
	StoreID string
	ID      string
	Reason  string
	UserID  string
}

// MaxBulkItems tope de ítems por alta masiva; cada ítem abre su propia transacción.
const MaxBulkItems = 100

// BulkItemResult resultado de un ítem del alta masiva.
type BulkItemResult struct {
	Index    int
	Success  bool
	Movement *entity.MovementDetails
	Err      error
}

// BulkResult resumen del alta masiva.
type BulkResult struct {
	Success int
	Failed  int
	Results []BulkItemResult
}

// Create valida y persiste un movimiento. Una salida o pérdida mayor al stock actual se rechaza con
// domain.ErrInsufficientStock y el ledger queda intacto.
func (uc *LedgerUseCase) Create(ctx context.Context, in CreateMovementInput) (*entity.MovementDetails, error) {
	ctx, span := uc.metrics.tracer.Start(ctx, "ledger.Create", trace.WithAttributes(
		attribute.String("product_id", in.ProductID),
		attribute.String("store_id", in.StoreID),
		attribute.String("type", in.Type),
	))
	defer span.End()

	mov, err := uc.buildMovement(ctx, in)
	if err != nil {
		return nil, uc.fail(ctx, span, "create", err)
	}

	var (
		previous int
		version  int64
	)
	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, balanceRepo repository.StockBalanceRepository) error {
		bal, current, err := lockBalance(ctx, movRepo, balanceRepo, mov.ProductID, mov.StoreID)
		if err != nil {
			return err
		}
		if mov.Type.IsOutflow() && current < mov.Quantity {
			return domain.ErrInsufficientStock
		}
		previous = current
		// la fecha se fija bajo el bloqueo para que coincida con el orden del ledger
		mov.CreatedAt = uc.now()
		mov.UpdatedAt = mov.CreatedAt
		mov.BalanceAfter = current + stock.Effect(mov.Type, mov.Quantity)
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		bal.Quantity = mov.BalanceAfter
		if err := balanceRepo.Save(ctx, bal); err != nil {
			return err
		}
		version = bal.Version
		return nil
	})
	if err != nil {
		return nil, uc.fail(ctx, span, "create", err)
	}

	uc.metrics.created.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(mov.Type))))
	span.SetAttributes(attribute.String("movement_id", mov.ID), attribute.Int("balance_after", mov.BalanceAfter))

	uc.refreshCache(ctx, mov.ProductID, mov.StoreID, version, mov.BalanceAfter)
	uc.publish(ctx, events.Event{
		Kind: events.KindMovementCreated, ProductID: mov.ProductID, StoreID: mov.StoreID,
		Movement: *mov, PreviousStock: previous, CurrentStock: mov.BalanceAfter, Version: version,
	})
	uc.publish(ctx, events.Event{
		Kind: events.KindStockChanged, ProductID: mov.ProductID, StoreID: mov.StoreID,
		Movement: *mov, PreviousStock: previous, CurrentStock: mov.BalanceAfter, Version: version,
	})

	return uc.details(ctx, mov), nil
}

// Update aplica una actualización parcial. Si cambian tipo o cantidad revierte el efecto original
// sobre el stock actual y aplica el nuevo; luego repara los BalanceAfter del ledger.
func (uc *LedgerUseCase) Update(ctx context.Context, in UpdateMovementInput) (*entity.MovementDetails, error) {
	ctx, span := uc.metrics.tracer.Start(ctx, "ledger.Update", trace.WithAttributes(attribute.String("movement_id", in.ID)))
	defer span.End()

	patch, err := uc.buildPatch(ctx, in)
	if err != nil {
		return nil, uc.fail(ctx, span, "update", err)
	}

	var (
		updated           *entity.Movement
		previous, current int
		version           int64
	)
	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, balanceRepo repository.StockBalanceRepository) error {
		m, bal, cur, err := lockMovement(ctx, movRepo, balanceRepo, in.StoreID, in.ID)
		if err != nil {
			return err
		}
		if m.Cancelled {
			return domain.ErrAlreadyCancelled
		}
		newType, newQty := m.Type, m.Quantity
		if patch.typ != nil {
			newType = *patch.typ
		}
		if patch.quantity != nil {
			newQty = *patch.quantity
		}
		if cur-stock.Effect(m.Type, m.Quantity)+stock.Effect(newType, newQty) < 0 {
			return domain.ErrInsufficientStock
		}

		patch.apply(m)
		m.UpdatedAt = uc.now()
		if err := movRepo.Update(ctx, m); err != nil {
			return err
		}
		final, err := replayLedger(ctx, movRepo, balanceRepo, bal)
		if err != nil {
			return err
		}
		updated, previous, current, version = m, cur, final, bal.Version
		return nil
	})
	if err != nil {
		return nil, uc.fail(ctx, span, "update", err)
	}

	uc.publishChange(ctx, updated, previous, current, version)
	return uc.details(ctx, updated), nil
}

// Delete elimina físicamente un movimiento no cancelado. Se rechaza con domain.ErrInsufficientStock
// cuando el stock actual es menor que su cantidad (ver reversible).
func (uc *LedgerUseCase) Delete(ctx context.Context, storeID, id string) error {
	ctx, span := uc.metrics.tracer.Start(ctx, "ledger.Delete", trace.WithAttributes(attribute.String("movement_id", id)))
	defer span.End()

	var (
		deleted           *entity.Movement
		previous, current int
		version           int64
	)
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, balanceRepo repository.StockBalanceRepository) error {
		m, bal, cur, err := lockMovement(ctx, movRepo, balanceRepo, storeID, id)
		if err != nil {
			return err
		}
		if m.Cancelled {
			return domain.ErrAlreadyCancelled
		}
		if !reversible(m, cur) {
			return domain.ErrInsufficientStock
		}
		if err := movRepo.Delete(ctx, m.ID); err != nil {
			return err
		}
		final, err := replayLedger(ctx, movRepo, balanceRepo, bal)
		if err != nil {
			return err
		}
		deleted, previous, current, version = m, cur, final, bal.Version
		return nil
	})
	if err != nil {
		return uc.fail(ctx, span, "delete", err)
	}

	uc.publishChange(ctx, deleted, previous, current, version)
	return nil
}

// Verify marca el movimiento como verificado (o lo desmarca). No afecta el balance.
func (uc *LedgerUseCase) Verify(ctx context.Context, in VerifyMovementInput) (*entity.MovementDetails, error) {
	ctx, span := uc.metrics.tracer.Start(ctx, "ledger.Verify", trace.WithAttributes(attribute.String("movement_id", in.ID)))
	defer span.End()

	var verified *entity.Movement
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, balanceRepo repository.StockBalanceRepository) error {
		m, _, _, err := lockMovement(ctx, movRepo, balanceRepo, in.StoreID, in.ID)
		if err != nil {
			return err
		}
		now := uc.now()
		m.Verified = in.Verified
		if in.Verified {
			m.VerifiedAt = &now
			m.VerifiedBy = in.UserID
			m.VerificationNote = strings.TrimSpace(in.Note)
		} else {
			m.VerifiedAt = nil
			m.VerifiedBy = ""
			m.VerificationNote = ""
		}
		m.UpdatedAt = now
		verified = m
		return movRepo.Update(ctx, m)
	})
	if err != nil {
		return nil, uc.fail(ctx, span, "verify", err)
	}
	return uc.details(ctx, verified), nil
}

// Cancel marca el movimiento como cancelado tras la misma verificación de reversibilidad que Delete.
// Un movimiento cancelado deja de contar para el balance y conserva su fila como auditoría.
func (uc *LedgerUseCase) Cancel(ctx context.Context, in CancelMovementInput) (*entity.MovementDetails, error) {
	ctx, span := uc.metrics.tracer.Start(ctx, "ledger.Cancel", trace.WithAttributes(attribute.String("movement_id", in.ID)))
	defer span.End()

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, uc.fail(ctx, span, "cancel", fmt.Errorf("motivo de cancelación requerido: %w", domain.ErrInvalidInput))
	}

	var (
		cancelled         *entity.Movement
		previous, current int
		version           int64
	)
	err := uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, balanceRepo repository.StockBalanceRepository) error {
		m, bal, cur, err := lockMovement(ctx, movRepo, balanceRepo, in.StoreID, in.ID)
		if err != nil {
			return err
		}
		if m.Cancelled {
			return domain.ErrAlreadyCancelled
		}
		if !reversible(m, cur) {
			return domain.ErrInsufficientStock
		}
		now := uc.now()
		m.Cancelled = true
		m.CancelledAt = &now
		m.CancelledBy = in.UserID
		m.CancellationReason = reason
		m.UpdatedAt = now
		if err := movRepo.Update(ctx, m); err != nil {
			return err
		}
		final, err := replayLedger(ctx, movRepo, balanceRepo, bal)
		if err != nil {
			return err
		}
		cancelled, previous, current, version = m, cur, final, bal.Version
		return nil
	})
	if err != nil {
		return nil, uc.fail(ctx, span, "cancel", err)
	}

	uc.publishChange(ctx, cancelled, previous, current, version)
	return uc.details(ctx, cancelled), nil
}

// RecalculateStock reconstruye los BalanceAfter del par desde cero y persiste solo los que difieren.
// Es idempotente: una segunda ejecución no modifica ninguna fila.
func (uc *LedgerUseCase) RecalculateStock(ctx context.Context, productID, storeID string) (int, error) {
	ctx, span := uc.metrics.tracer.Start(ctx, "ledger.RecalculateStock", trace.WithAttributes(
		attribute.String("product_id", productID),
		attribute.String("store_id", storeID),
	))
	defer span.End()

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return 0, uc.fail(ctx, span, "recalculate", err)
	}
	if product == nil || product.StoreID != storeID {
		return 0, uc.fail(ctx, span, "recalculate", domain.ErrNotFound)
	}

	var (
		previous, final int
		version         int64
	)
	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, balanceRepo repository.StockBalanceRepository) error {
		bal, err := balanceRepo.GetForUpdate(ctx, productID, storeID)
		if err != nil {
			return err
		}
		previous = bal.Quantity
		final, err = replayLedger(ctx, movRepo, balanceRepo, bal)
		version = bal.Version
		return err
	})
	if err != nil {
		return 0, uc.fail(ctx, span, "recalculate", err)
	}

	if previous != final {
		uc.log.Warn().
			Str("product_id", productID).
			Str("store_id", storeID).
			Int("cached", previous).
			Int("recalculated", final).
			Msg("balance cacheado corregido por recálculo")
		uc.publish(ctx, events.Event{
			Kind: events.KindStockChanged, ProductID: productID, StoreID: storeID,
			PreviousStock: previous, CurrentStock: final, Version: version,
		})
	}
	// la caché se reescribe aunque el balance no cambie: puede venir de una lectura vieja
	uc.refreshCache(ctx, productID, storeID, version, final)
	return final, nil
}

// CreateBulk aplica Create a cada ítem en orden, de forma independiente: un fallo no aborta el lote.
// Un lote vacío o de más de MaxBulkItems se rechaza entero con domain.ErrInvalidInput.
func (uc *LedgerUseCase) CreateBulk(ctx context.Context, storeID string, items []CreateMovementInput, userID string) (BulkResult, error) {
	switch {
	case len(items) == 0:
		return BulkResult{}, fmt.Errorf("el lote no tiene movimientos: %w", domain.ErrInvalidInput)
	case len(items) > MaxBulkItems:
		return BulkResult{}, fmt.Errorf("el lote admite hasta %d movimientos, llegaron %d: %w", MaxBulkItems, len(items), domain.ErrInvalidInput)
	}
	res := BulkResult{Results: make([]BulkItemResult, 0, len(items))}
	for i, item := range items {
		item.StoreID = storeID
		if item.UserID == "" {
			item.UserID = userID
		}
		details, err := uc.Create(ctx, item)
		if err != nil {
			res.Failed++
			res.Results = append(res.Results, BulkItemResult{Index: i, Err: err})
			continue
		}
		res.Success++
		res.Results = append(res.Results, BulkItemResult{Index: i, Success: true, Movement: details})
	}
	return res, nil
}

// GetByID devuelve el movimiento con sus proyecciones si pertenece a la tienda.
func (uc *LedgerUseCase) GetByID(ctx context.Context, storeID, id string) (*entity.MovementDetails, error) {
	d, err := uc.movRepo.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.StoreID != storeID {
		return nil, domain.ErrNotFound
	}
	return d, nil
}

// List lista los movimientos de una tienda con filtros y total.
func (uc *LedgerUseCase) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementDetails, int, error) {
	if filter.StoreID == "" {
		return nil, 0, domain.ErrInvalidInput
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, 0, domain.ErrInvalidInput
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return uc.movRepo.List(ctx, filter)
}

// buildMovement valida la entrada y las referencias (producto y proveedor) fuera de la transacción.
func (uc *LedgerUseCase) buildMovement(ctx context.Context, in CreateMovementInput) (*entity.Movement, error) {
	typ := entity.MovementType(in.Type)
	if !typ.Valid() {
		return nil, fmt.Errorf("tipo de movimiento %q: %w", in.Type, domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("la cantidad debe ser positiva: %w", domain.ErrInvalidInput)
	}
	if in.StoreID == "" || in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
	}
	expiration, err := parseExpiration(in.Expiration)
	if err != nil {
		return nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive() || product.StoreID != in.StoreID {
		return nil, fmt.Errorf("producto %s: %w", in.ProductID, domain.ErrNotFound)
	}
	if err := uc.checkSupplier(ctx, in.StoreID, in.SupplierID); err != nil {
		return nil, err
	}

	return &entity.Movement{
		ID:             uuid.New().String(),
		StoreID:        in.StoreID,
		ProductID:      in.ProductID,
		Type:           typ,
		Quantity:       in.Quantity,
		SupplierID:     in.SupplierID,
		Batch:          strings.TrimSpace(in.Batch),
		ExpirationDate: expiration,
		Price:          in.Price,
		Note:           strings.TrimSpace(in.Note),
		UserID:         in.UserID,
	}, nil
}

func (uc *LedgerUseCase) checkSupplier(ctx context.Context, storeID, supplierID string) error {
	if supplierID == "" {
		return nil
	}
	supplier, err := uc.supplierRepo.GetByID(ctx, supplierID)
	if err != nil {
		return err
	}
	if supplier == nil || !supplier.IsActive() || (supplier.StoreID != "" && supplier.StoreID != storeID) {
		return fmt.Errorf("proveedor %s: %w", supplierID, domain.ErrNotFound)
	}
	return nil
}

// movementPatch campos validados de una actualización parcial.
type movementPatch struct {
	typ        *entity.MovementType
	quantity   *int
	supplierID *string
	batch      *string
	expiration **time.Time
	price      *decimal.Decimal
	note       *string
}

func (uc *LedgerUseCase) buildPatch(ctx context.Context, in UpdateMovementInput) (*movementPatch, error) {
	p := &movementPatch{supplierID: in.SupplierID, batch: in.Batch, price: in.Price, note: in.Note}
	if in.Type != nil {
		typ := entity.MovementType(*in.Type)
		if !typ.Valid() {
			return nil, fmt.Errorf("tipo de movimiento %q: %w", *in.Type, domain.ErrInvalidInput)
		}
		p.typ = &typ
	}
	if in.Quantity != nil {
		if *in.Quantity <= 0 {
			return nil, fmt.Errorf("la cantidad debe ser positiva: %w", domain.ErrInvalidInput)
		}
		p.quantity = in.Quantity
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, fmt.Errorf("precio negativo: %w", domain.ErrInvalidInput)
	}
	if in.Expiration != nil {
		exp, err := parseExpiration(*in.Expiration)
		if err != nil {
			return nil, err
		}
		p.expiration = &exp
	}
	if in.SupplierID != nil {
		if err := uc.checkSupplier(ctx, in.StoreID, *in.SupplierID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *movementPatch) apply(m *entity.Movement) {
	if p.typ != nil {
		m.Type = *p.typ
	}
	if p.quantity != nil {
		m.Quantity = *p.quantity
	}
	if p.supplierID != nil {
		m.SupplierID = *p.supplierID
	}
	if p.batch != nil {
		m.Batch = strings.TrimSpace(*p.batch)
	}
	if p.expiration != nil {
		m.ExpirationDate = *p.expiration
	}
	if p.price != nil {
		m.Price = p.price
	}
	if p.note != nil {
		m.Note = strings.TrimSpace(*p.note)
	}
}

// parseExpiration acepta "" (sin vencimiento), YYYY-MM-DD o RFC3339.
func parseExpiration(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("fecha de vencimiento %q: %w", s, domain.ErrInvalidInput)
	}
	return &t, nil
}

// lockBalance bloquea la fila de balance y calcula el stock actual desde el ledger dentro de la transacción.
func lockBalance(
	ctx context.Context,
	movRepo repository.MovementRepository,
	balanceRepo repository.StockBalanceRepository,
	productID, storeID string,
) (*entity.StockBalance, int, error) {
	bal, err := balanceRepo.GetForUpdate(ctx, productID, storeID)
	if err != nil {
		return nil, 0, err
	}
	movs, err := movRepo.ListByProductAndStore(ctx, productID, storeID)
	if err != nil {
		return nil, 0, err
	}
	return bal, stock.Fold(movs), nil
}

// lockMovement resuelve el movimiento dentro de la tienda, bloquea su balance y lo relee bajo el bloqueo.
func lockMovement(
	ctx context.Context,
	movRepo repository.MovementRepository,
	balanceRepo repository.StockBalanceRepository,
	storeID, id string,
) (*entity.Movement, *entity.StockBalance, int, error) {
	m, err := movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}
	if m == nil || m.StoreID != storeID {
		return nil, nil, 0, domain.ErrNotFound
	}
	bal, current, err := lockBalance(ctx, movRepo, balanceRepo, m.ProductID, m.StoreID)
	if err != nil {
		return nil, nil, 0, err
	}
	m, err = movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, 0, err
	}
	if m == nil {
		return nil, nil, 0, domain.ErrNotFound
	}
	return m, bal, current, nil
}

// replayLedger repara los BalanceAfter que derivaron y guarda el balance final.
func replayLedger(
	ctx context.Context,
	movRepo repository.MovementRepository,
	balanceRepo repository.StockBalanceRepository,
	bal *entity.StockBalance,
) (int, error) {
	movs, err := movRepo.ListByProductAndStore(ctx, bal.ProductID, bal.StoreID)
	if err != nil {
		return 0, err
	}
	final, drift := stock.Replay(movs)
	if err := movRepo.UpdateBalances(ctx, drift); err != nil {
		return 0, err
	}
	bal.Quantity = final
	if err := balanceRepo.Save(ctx, bal); err != nil {
		return 0, err
	}
	return final, nil
}

// reversible indica si el movimiento puede revertirse con el stock actual.
// Una salida o pérdida exige stock suficiente para devolver su cantidad; una entrada no puede dejar
// el stock en negativo al retirarse. En ambos casos la condición es current >= quantity.
func reversible(m *entity.Movement, current int) bool {
	if m.Type.IsOutflow() {
		return current >= m.Quantity
	}
	return current-stock.Effect(m.Type, m.Quantity) >= 0
}

func (uc *LedgerUseCase) publishChange(ctx context.Context, m *entity.Movement, previous, current int, version int64) {
	if previous == current {
		return
	}
	uc.refreshCache(ctx, m.ProductID, m.StoreID, version, current)
	uc.publish(ctx, events.Event{
		Kind: events.KindStockChanged, ProductID: m.ProductID, StoreID: m.StoreID,
		Movement: *m, PreviousStock: previous, CurrentStock: current, Version: version,
	})
}

// refreshCache escribe el balance confirmado. Si falla, invalida la clave para no servir un valor viejo.
func (uc *LedgerUseCase) refreshCache(ctx context.Context, productID, storeID string, version int64, qty int) {
	if uc.cache == nil {
		return
	}
	err := uc.cache.Set(ctx, productID, storeID, version, qty)
	if err == nil {
		return
	}
	uc.log.Warn().Err(err).Str("product_id", productID).Str("store_id", storeID).Msg("no se pudo actualizar la caché de stock")
	if err := uc.cache.Invalidate(ctx, productID, storeID); err != nil {
		uc.log.Error().Err(err).Str("product_id", productID).Str("store_id", storeID).Msg("no se pudo invalidar la caché de stock")
	}
}

func (uc *LedgerUseCase) publish(ctx context.Context, ev events.Event) {
	if uc.events == nil {
		return
	}
	if err := uc.events.Publish(ctx, ev); err != nil {
		uc.log.Error().Err(err).
			Str("kind", string(ev.Kind)).
			Str("product_id", ev.ProductID).
			Str("store_id", ev.StoreID).
			Str("movement_id", ev.Movement.ID).
			Msg("evento post-commit descartado")
	}
}

// details relee la proyección tras el commit; si falla devuelve el movimiento sin nombres.
func (uc *LedgerUseCase) details(ctx context.Context, m *entity.Movement) *entity.MovementDetails {
	d, err := uc.movRepo.GetDetails(ctx, m.ID)
	if err != nil || d == nil {
		if err != nil {
			uc.log.Warn().Err(err).Str("movement_id", m.ID).Msg("no se pudo leer la proyección del movimiento")
		}
		return &entity.MovementDetails{Movement: *m}
	}
	return d
}

func (uc *LedgerUseCase) fail(ctx context.Context, span trace.Span, op string, err error) error {
	uc.metrics.reject(ctx, op, err)
	span.RecordError(err)
	if !isBusinessError(err) {
		span.SetStatus(codes.Error, err.Error())
		uc.log.Error().Err(err).Str("operation", op).Msg("operación del ledger falló")
	}
	return err
}

func isBusinessError(err error) bool {
	return errors.Is(err, domain.ErrInsufficientStock) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrAlreadyCancelled)
}
