package persistence

import (
	"context"
	"errors"

	"github.com/farmeet/backend/internal/domain/billing"
	"github.com/farmeet/backend/internal/domain/shared"
	"github.com/farmeet/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormVoucherRepository implements billing.VoucherRepository using GORM
type GormVoucherRepository struct {
	db *gorm.DB
}

// NewGormVoucherRepository creates a new GormVoucherRepository
func NewGormVoucherRepository(db *gorm.DB) *GormVoucherRepository {
	return &GormVoucherRepository{db: db}
}

// FindByID finds a voucher by ID
func (r *GormVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.GiftVoucher, error) {
	var model models.GiftVoucherModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a voucher by its code
func (r *GormVoucherRepository) FindByCode(ctx context.Context, code string) (*billing.GiftVoucher, error) {
	var model models.GiftVoucherModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOwner lists a user's vouchers
func (r *GormVoucherRepository) FindByOwner(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]billing.GiftVoucher, error) {
	var voucherModels []models.GiftVoucherModel
	query := r.db.WithContext(ctx).Where("owner_user_id = ?", userID)
	query = applyVoucherFilter(query, filter)
	if err := query.Find(&voucherModels).Error; err != nil {
		return nil, err
	}
	vouchers := make([]billing.GiftVoucher, len(voucherModels))
	for i := range voucherModels {
		vouchers[i] = *voucherModels[i].ToDomain()
	}
	return vouchers, nil
}

// Save creates or updates a voucher
func (r *GormVoucherRepository) Save(ctx context.Context, v *billing.GiftVoucher) error {
	model := models.GiftVoucherModelFromDomain(v)
	return r.db.WithContext(ctx).Save(model).Error
}

// ConsumeBalance decrements the voucher balance with a guarded UPDATE. The
// balance guard makes concurrent spends of the same voucher serialize at the
// database: the loser sees zero rows and the balance never goes negative.
// The status flips to USED in the same statement when the balance hits zero.
func (r *GormVoucherRepository) ConsumeBalance(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Consume amount must be positive")
	}

	result := r.db.WithContext(ctx).
		Model(&models.GiftVoucherModel{}).
		Where("id = ? AND status = ? AND balance >= ?", id, billing.VoucherStatusRedeemed, amount).
		Updates(map[string]interface{}{
			"balance": gorm.Expr("balance - ?", amount),
			"status": gorm.Expr(
				"CASE WHEN balance - ? = 0 THEN ? ELSE status END",
				amount, billing.VoucherStatusUsed,
			),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.GiftVoucherModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrVoucherNotUsable
	}
	return nil
}

// BindOwner binds an unowned voucher to a user. The NULL guard lets exactly
// one of two racing redemptions win; the other sees false.
func (r *GormVoucherRepository) BindOwner(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.GiftVoucherModel{}).
		Where("id = ? AND owner_user_id IS NULL AND status = ?", id, billing.VoucherStatusActive).
		Updates(map[string]interface{}{
			"owner_user_id": userID,
			"status":        billing.VoucherStatusRedeemed,
			"redeemed_at":   gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func applyVoucherFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	orderBy := ValidateSortField(filter.OrderBy, VoucherSortFields, "created_at")
	return query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
}
