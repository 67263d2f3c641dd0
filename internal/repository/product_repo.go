package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/GTDGit/toystore_api/internal/database"
	"github.com/GTDGit/toystore_api/internal/models"
)

const productColumns = `id, slug, name, description, category, age_rating, price, original_price,
        weight, images, is_new, status, created_at, updated_at`

// ProductRepository handles data access for products and their variants.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// ListActive returns every ACTIVE product with variants, newest first.
func (r *ProductRepository) ListActive(ctx context.Context) ([]models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE status = 'ACTIVE' ORDER BY created_at DESC, id DESC`
	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, q); err != nil {
		return nil, err
	}
	return products, r.attachVariants(ctx, products)
}

// ListNew returns up to limit ACTIVE products flagged as new.
func (r *ProductRepository) ListNew(ctx context.Context, limit int) ([]models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products
        WHERE status = 'ACTIVE' AND is_new = true
        ORDER BY created_at DESC, id DESC
        LIMIT $1`
	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, q, limit); err != nil {
		return nil, err
	}
	return products, r.attachVariants(ctx, products)
}

// ListAll returns every product regardless of status, newest first.
func (r *ProductRepository) ListAll(ctx context.Context) ([]models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC, id DESC`
	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, q); err != nil {
		return nil, err
	}
	return products, r.attachVariants(ctx, products)
}

// GetActiveBySlug returns an ACTIVE product by slug. Returns sql.ErrNoRows when absent.
func (r *ProductRepository) GetActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE slug = $1 AND status = 'ACTIVE' LIMIT 1`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, slug); err != nil {
		return nil, err
	}
	variants, err := r.variantsFor(ctx, r.db, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

// GetByID returns a product with its variants. Returns sql.ErrNoRows when absent.
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1 LIMIT 1`
	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		return nil, err
	}
	variants, err := r.variantsFor(ctx, r.db, p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

// Categories returns distinct categories with their ACTIVE product counts.
func (r *ProductRepository) Categories(ctx context.Context) ([]models.CategorySummary, error) {
	const q = `
        SELECT category, COUNT(*) AS product_count
        FROM products
        WHERE status = 'ACTIVE'
        GROUP BY category
        ORDER BY category`
	categories := []models.CategorySummary{}
	if err := r.db.SelectContext(ctx, &categories, q); err != nil {
		return nil, err
	}
	return categories, nil
}

// SlugExists reports whether slug is used by a product other than excludeID.
func (r *ProductRepository) SlugExists(ctx context.Context, slug string, excludeID int) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1 AND id <> $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, q, slug, excludeID); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts p and its variants in one transaction. p.Price is set to the
// cheapest variant price. Returns ErrDuplicateSKU on a SKU collision.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	p.Price = p.MinVariantPrice()
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const q = `
            INSERT INTO products (slug, name, description, category, age_rating, price, original_price,
                weight, images, is_new, status)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
            RETURNING id, created_at, updated_at`
		err := tx.QueryRowxContext(ctx, q,
			p.Slug, p.Name, p.Description, p.Category, p.AgeRating, p.Price, p.OriginalPrice,
			p.Weight, p.Images, p.IsNew, p.Status,
		).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert product: %w", err)
		}

		for i := range p.Variants {
			v := &p.Variants[i]
			v.ProductID = p.ID
			if err := insertVariant(ctx, tx, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// Update writes the product fields of p. When replaceVariants is true the
// variants of p are upserted (by id, then by sku) and any variant not listed
// is deleted; the product price is recomputed from the remaining variants.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product, replaceVariants bool) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const q = `
            UPDATE products SET
                slug = $2,
                name = $3,
                description = $4,
                category = $5,
                age_rating = $6,
                original_price = $7,
                weight = $8,
                images = $9,
                is_new = $10,
                status = $11,
                updated_at = NOW()
            WHERE id = $1
            RETURNING updated_at`
		err := tx.QueryRowxContext(ctx, q,
			p.ID, p.Slug, p.Name, p.Description, p.Category, p.AgeRating, p.OriginalPrice,
			p.Weight, p.Images, p.IsNew, p.Status,
		).Scan(&p.UpdatedAt)
		if err != nil {
			return err
		}

		if replaceVariants {
			keep := make([]int64, 0, len(p.Variants))
			for i := range p.Variants {
				v := &p.Variants[i]
				v.ProductID = p.ID
				if err := upsertVariant(ctx, tx, v); err != nil {
					return err
				}
				keep = append(keep, int64(v.ID))
			}
			const del = `DELETE FROM product_variants WHERE product_id = $1 AND NOT (id = ANY($2))`
			if _, err := tx.ExecContext(ctx, del, p.ID, pq.Array(keep)); err != nil {
				return fmt.Errorf("delete removed variants: %w", err)
			}
		}

		const price = `
            UPDATE products SET price = COALESCE(
                (SELECT MIN(price) FROM product_variants WHERE product_id = $1), price)
            WHERE id = $1
            RETURNING price`
		if err := tx.QueryRowxContext(ctx, price, p.ID).Scan(&p.Price); err != nil {
			return fmt.Errorf("recompute price: %w", err)
		}

		variants, err := r.variantsFor(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		p.Variants = variants
		return nil
	})
}

// Delete removes a product. Products referenced by orders are set INACTIVE
// instead so order history stays intact. Returns sql.ErrNoRows when absent.
func (r *ProductRepository) Delete(ctx context.Context, id int) (deactivated bool, err error) {
	err = database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var referenced bool
		const refQ = `
            SELECT EXISTS(SELECT 1 FROM products WHERE id = $1),
                   EXISTS(SELECT 1 FROM order_items WHERE product_id = $1)`
		var exists bool
		if err := tx.QueryRowxContext(ctx, refQ, id).Scan(&exists, &referenced); err != nil {
			return err
		}
		if !exists {
			return sql.ErrNoRows
		}

		if referenced {
			const q = `UPDATE products SET status = 'INACTIVE', updated_at = NOW() WHERE id = $1`
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
			deactivated = true
			return nil
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
		return err
	})
	return deactivated, err
}

// CountActive returns the number of ACTIVE products.
func (r *ProductRepository) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE status = 'ACTIVE'`)
	return n, err
}

// LowStock returns up to limit products having any variant at or below
// threshold. Stock is the minimum across the product's variants.
func (r *ProductRepository) LowStock(ctx context.Context, threshold, limit int) ([]models.LowStockProduct, error) {
	const q = `
        SELECT p.id, p.name, MIN(v.stock) AS stock
        FROM products p
        JOIN product_variants v ON v.product_id = p.id
        GROUP BY p.id, p.name
        HAVING MIN(v.stock) <= $1
        ORDER BY MIN(v.stock), p.id
        LIMIT $2`
	products := []models.LowStockProduct{}
	if err := r.db.SelectContext(ctx, &products, q, threshold, limit); err != nil {
		return nil, err
	}
	return products, nil
}

// attachVariants loads variants for products with a single query.
func (r *ProductRepository) attachVariants(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]int64, len(products))
	index := make(map[int]int, len(products))
	for i := range products {
		ids[i] = int64(products[i].ID)
		index[products[i].ID] = i
		products[i].Variants = []models.Variant{}
	}

	const q = `
        SELECT id, product_id, sku, name, price, stock, created_at, updated_at
        FROM product_variants
        WHERE product_id = ANY($1)
        ORDER BY product_id, id`
	var variants []models.Variant
	if err := r.db.SelectContext(ctx, &variants, q, pq.Array(ids)); err != nil {
		return fmt.Errorf("load variants: %w", err)
	}
	for _, v := range variants {
		i := index[v.ProductID]
		products[i].Variants = append(products[i].Variants, v)
	}
	return nil
}

func (r *ProductRepository) variantsFor(ctx context.Context, q sqlx.QueryerContext, productID int) ([]models.Variant, error) {
	const sel = `
        SELECT id, product_id, sku, name, price, stock, created_at, updated_at
        FROM product_variants
        WHERE product_id = $1
        ORDER BY id`
	variants := []models.Variant{}
	if err := sqlx.SelectContext(ctx, q, &variants, sel, productID); err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	return variants, nil
}

func insertVariant(ctx context.Context, tx *sqlx.Tx, v *models.Variant) error {
	const q = `
        INSERT INTO product_variants (product_id, sku, name, price, stock)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	err := tx.QueryRowxContext(ctx, q, v.ProductID, v.SKU, v.Name, v.Price, v.Stock).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "product_variants_sku_key") {
			return fmt.Errorf("%w: %s", ErrDuplicateSKU, v.SKU)
		}
		return fmt.Errorf("insert variant: %w", err)
	}
	return nil
}

// upsertVariant updates a variant of the same product by id, or by sku when
// id is zero, and inserts it otherwise. A sku owned by another product is a
// duplicate.
func upsertVariant(ctx context.Context, tx *sqlx.Tx, v *models.Variant) error {
	if v.ID > 0 {
		const q = `
            UPDATE product_variants SET sku = $3, name = $4, price = $5, stock = $6, updated_at = NOW()
            WHERE id = $1 AND product_id = $2
            RETURNING created_at, updated_at`
		err := tx.QueryRowxContext(ctx, q, v.ID, v.ProductID, v.SKU, v.Name, v.Price, v.Stock).
			Scan(&v.CreatedAt, &v.UpdatedAt)
		switch {
		case err == nil:
			return nil
		case isUniqueViolation(err, "product_variants_sku_key"):
			return fmt.Errorf("%w: %s", ErrDuplicateSKU, v.SKU)
		case !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("update variant: %w", err)
		}
		// Unknown id for this product: treat as a new variant.
	}

	const q = `
        INSERT INTO product_variants (product_id, sku, name, price, stock)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (sku) DO UPDATE SET
            name = EXCLUDED.name,
            price = EXCLUDED.price,
            stock = EXCLUDED.stock,
            updated_at = NOW()
        WHERE product_variants.product_id = EXCLUDED.product_id
        RETURNING id, created_at, updated_at`
	err := tx.QueryRowxContext(ctx, q, v.ProductID, v.SKU, v.Name, v.Price, v.Stock).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrDuplicateSKU, v.SKU)
	}
	if err != nil {
		return fmt.Errorf("upsert variant: %w", err)
	}
	return nil
}
