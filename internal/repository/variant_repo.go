package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/toystore_api/internal/models"
)

const variantDetailQuery = `
        SELECT v.id, v.product_id, v.sku, v.name, v.price, v.stock, v.created_at, v.updated_at,
               p.slug AS product_slug, p.name AS product_name, p.category AS product_category,
               p.status AS product_status, p.age_rating, p.images
        FROM product_variants v
        JOIN products p ON p.id = v.product_id`

// VariantRepository reads variants together with their product.
type VariantRepository struct {
	db *sqlx.DB
}

// NewVariantRepository creates a new VariantRepository.
func NewVariantRepository(db *sqlx.DB) *VariantRepository {
	return &VariantRepository{db: db}
}

// GetDetail returns a variant joined with its product. Returns sql.ErrNoRows when absent.
func (r *VariantRepository) GetDetail(ctx context.Context, id int) (*models.VariantDetail, error) {
	var d models.VariantDetail
	if err := r.db.GetContext(ctx, &d, variantDetailQuery+` WHERE v.id = $1`, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDetails returns the details of the given variants keyed by id. Unknown
// ids are simply missing from the map.
func (r *VariantRepository) GetDetails(ctx context.Context, ids []int) (map[int]models.VariantDetail, error) {
	out := make(map[int]models.VariantDetail, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	arg := make([]int64, len(ids))
	for i, id := range ids {
		arg[i] = int64(id)
	}
	var rows []models.VariantDetail
	if err := r.db.SelectContext(ctx, &rows, variantDetailQuery+` WHERE v.id = ANY($1)`, pq.Array(arg)); err != nil {
		return nil, err
	}
	for _, d := range rows {
		out[d.ID] = d
	}
	return out, nil
}

// decrementStock takes qty units from a variant only if enough stock remains.
func decrementStock(ctx context.Context, tx *sqlx.Tx, variantID, qty int) error {
	const q = `UPDATE product_variants SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`
	res, err := tx.ExecContext(ctx, q, variantID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &StockError{VariantID: variantID}
	}
	return nil
}

// restock returns qty units to a variant. Missing variants are ignored.
func restock(ctx context.Context, tx *sqlx.Tx, variantID, qty int) error {
	const q = `UPDATE product_variants SET stock = stock + $2, updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, q, variantID, qty); err != nil {
		return fmt.Errorf("restock variant %d: %w", variantID, err)
	}
	return nil
}
