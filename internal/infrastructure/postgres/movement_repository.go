package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `
	m.id, m.seq, m.store_id, m.product_id, m.type, m.quantity, m.supplier_id, m.batch, m.expiration_date,
	m.price, m.note, m.user_id, m.balance_after, m.created_at, m.updated_at,
	m.verified, m.verified_at, m.verified_by, m.verification_note,
	m.cancelled, m.cancelled_at, m.cancelled_by, m.cancellation_reason`

const movementDetailsFrom = `
	FROM movements m
	JOIN products p ON p.id = m.product_id
	JOIN stores s ON s.id = m.store_id
	LEFT JOIN suppliers sp ON sp.id = m.supplier_id
	LEFT JOIN users u ON u.id = m.user_id`

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un movimiento del ledger y devuelve en m.Seq su posición asignada por la secuencia.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (id, store_id, product_id, type, quantity, supplier_id, batch, expiration_date,
			price, note, user_id, balance_after, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.StoreID, m.ProductID, string(m.Type), m.Quantity, nullString(m.SupplierID),
		nullString(m.Batch), m.ExpirationDate, m.Price, nullString(m.Note), nullString(m.UserID),
		m.BalanceAfter, m.CreatedAt, m.UpdatedAt,
	).Scan(&m.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create movement: %w", domain.ErrConflict)
		}
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID (nil, nil si no existe).
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements m WHERE m.id = $1`
	m, err := scanMovement(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// GetDetails obtiene el movimiento con nombres de producto, tienda, proveedor y usuario.
func (r *MovementRepo) GetDetails(ctx context.Context, id string) (*entity.MovementDetails, error) {
	query := `SELECT ` + movementColumns + `, p.name, s.name, sp.name, u.name ` + movementDetailsFrom + ` WHERE m.id = $1`
	d, err := scanMovementDetails(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement details: %w", err)
	}
	return d, nil
}

// Update guarda los campos mutables del movimiento (datos, verificación y cancelación).
func (r *MovementRepo) Update(ctx context.Context, m *entity.Movement) error {
	query := `
		UPDATE movements SET
			type = $2, quantity = $3, supplier_id = $4, batch = $5, expiration_date = $6, price = $7, note = $8,
			balance_after = $9, updated_at = $10,
			verified = $11, verified_at = $12, verified_by = $13, verification_note = $14,
			cancelled = $15, cancelled_at = $16, cancelled_by = $17, cancellation_reason = $18
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		m.ID, string(m.Type), m.Quantity, nullString(m.SupplierID), nullString(m.Batch), m.ExpirationDate,
		m.Price, nullString(m.Note), m.BalanceAfter, m.UpdatedAt,
		m.Verified, m.VerifiedAt, nullString(m.VerifiedBy), nullString(m.VerificationNote),
		m.Cancelled, m.CancelledAt, nullString(m.CancelledBy), nullString(m.CancellationReason),
	)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina físicamente el movimiento.
func (r *MovementRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProductAndStore devuelve el ledger completo del par en orden de inserción (seq).
func (r *MovementRepo) ListByProductAndStore(ctx context.Context, productID, storeID string) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + `
		FROM movements m
		WHERE m.product_id = $1 AND m.store_id = $2
		ORDER BY m.seq ASC`
	rows, err := r.q.Query(ctx, query, productID, storeID)
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list ledger: %w", err)
	}
	defer rows.Close()
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// UpdateBalances persiste en un solo round-trip los BalanceAfter recalculados.
func (r *MovementRepo) UpdateBalances(ctx context.Context, updates []entity.BalanceUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, u := range updates {
		batch.Queue(`UPDATE movements SET balance_after = $2 WHERE id = $1`, u.MovementID, u.BalanceAfter)
	}
	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range updates {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("update balances: %w", err)
		}
	}
	return nil
}

// List lista movimientos de una tienda con filtros, más el total para paginación.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.MovementDetails, int, error) {
	where := []string{"m.store_id = $1"}
	args := []any{f.StoreID}
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("m.product_id = $%d", f.ProductID)
	}
	if f.SupplierID != "" {
		add("m.supplier_id = $%d", f.SupplierID)
	}
	if f.Type != "" {
		add("m.type = $%d", string(f.Type))
	}
	if f.Verified != nil {
		add("m.verified = $%d", *f.Verified)
	}
	if f.Cancelled != nil {
		add("m.cancelled = $%d", *f.Cancelled)
	}
	if f.From != nil {
		add("m.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("m.created_at <= $%d", *f.To)
	}
	cond := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM movements m`+cond, args...).Scan(&total); err != nil {
		if isInvalidID(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := `SELECT ` + movementColumns + `, p.name, s.name, sp.name, u.name ` + movementDetailsFrom + cond +
		fmt.Sprintf(" ORDER BY m.created_at DESC, m.seq DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementDetails
	for rows.Next() {
		d, err := scanMovementDetails(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, d)
	}
	return list, total, rows.Err()
}

// ListProductIDsByStore devuelve los productos con movimientos en la tienda.
func (r *MovementRepo) ListProductIDsByStore(ctx context.Context, storeID string) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT product_id FROM movements WHERE store_id = $1 ORDER BY product_id`, storeID)
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list product ids: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// movementNulls columnas anulables o tipadas que se normalizan tras el Scan.
type movementNulls struct {
	typ              string
	supplierID       *string
	batch            *string
	note             *string
	userID           *string
	verifiedBy       *string
	verificationNote *string
	cancelledBy      *string
	reason           *string
}

func (n *movementNulls) targets(m *entity.Movement) []any {
	return []any{
		&m.ID, &m.Seq, &m.StoreID, &m.ProductID, &n.typ, &m.Quantity, &n.supplierID, &n.batch, &m.ExpirationDate,
		&m.Price, &n.note, &n.userID, &m.BalanceAfter, &m.CreatedAt, &m.UpdatedAt,
		&m.Verified, &m.VerifiedAt, &n.verifiedBy, &n.verificationNote,
		&m.Cancelled, &m.CancelledAt, &n.cancelledBy, &n.reason,
	}
}

func (n *movementNulls) apply(m *entity.Movement) {
	m.Type = entity.MovementType(n.typ)
	m.SupplierID = derefString(n.supplierID)
	m.Batch = derefString(n.batch)
	m.Note = derefString(n.note)
	m.UserID = derefString(n.userID)
	m.VerifiedBy = derefString(n.verifiedBy)
	m.VerificationNote = derefString(n.verificationNote)
	m.CancelledBy = derefString(n.cancelledBy)
	m.CancellationReason = derefString(n.reason)
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	var n movementNulls
	if err := row.Scan(n.targets(&m)...); err != nil {
		return nil, err
	}
	n.apply(&m)
	return &m, nil
}

func scanMovementDetails(row pgx.Row) (*entity.MovementDetails, error) {
	var d entity.MovementDetails
	var n movementNulls
	var supplierName, userName *string
	targets := append(n.targets(&d.Movement), &d.ProductName, &d.StoreName, &supplierName, &userName)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	n.apply(&d.Movement)
	d.SupplierName = derefString(supplierName)
	d.UserName = derefString(userName)
	return &d, nil
}
