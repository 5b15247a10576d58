package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartLineGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartLineGormRepository(db *gorm.DB) *CartLineGormRepository {
	return &CartLineGormRepository{db: db}
}

// カート明細を商品・カテゴリ付きで一覧取得
func (r *CartLineGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartLine, error) {
	var lines []model.CartLine

	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&lines).Error
	if err != nil {
		return []model.CartLine{}, err
	}

	return lines, nil
}

func (r *CartLineGormRepository) FindByID(ctx context.Context, lineID int64) (model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).First(&line, lineID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartLine{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartLine{}, err
	}
	return line, nil
}

func (r *CartLineGormRepository) FindByUserAndProduct(ctx context.Context, userID int64, productID int64) (model.CartLine, bool, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&line).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartLine{}, false, nil
	}
	if err != nil {
		return model.CartLine{}, false, err
	}
	return line, true, nil
}

// 同一商品は数量加算。
// priceAtTime は新規作成のときだけ保存し、加算では触らない。
func (r *CartLineGormRepository) Upsert(ctx context.Context, userID int64, productID int64, addQty int64, priceAtTime decimal.Decimal) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var line model.CartLine

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			First(&line).Error

		if err == nil {
			// 既存ありなら数量だけ増やす
			res := tx.Model(&model.CartLine{}).
				Where("id = ?", line.ID).
				Update("quantity", line.Quantity+addQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		//無い場合は新規作成（ここで価格を固定する）
		newLine := model.CartLine{
			UserID:      userID,
			ProductID:   productID,
			Quantity:    addQty,
			PriceAtTime: priceAtTime,
		}

		if err := tx.Create(&newLine).Error; err != nil {
			// (user_id, product_id) のユニーク制約に同時に当たったら加算でリトライ。
			// 合算後の在庫チェックはここではやり直さない。在庫の本当の守りは
			// 注文確定時の条件付き減算にある。
			if isUniqueViolation(err) {
				res := tx.Model(&model.CartLine{}).
					Where("user_id = ? AND product_id = ?", userID, productID).
					Update("quantity", gorm.Expr("quantity + ?", addQty))
				if res.Error != nil {
					return res.Error
				}
				return nil
			}
			return err
		}

		return nil
	})
}

// 明細の数量を更新
func (r *CartLineGormRepository) UpdateQuantity(ctx context.Context, lineID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartLineGormRepository) DeleteByID(ctx context.Context, lineID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.CartLine{}, lineID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// カートを空にする（空でも成功）
func (r *CartLineGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartLine{}).Error
}

// PostgreSQLの一意制約違反（23505）か
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
