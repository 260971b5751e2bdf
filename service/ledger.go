package service

import (
	"errors"

	"expensetracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrCategoryNotFound 分类不存在或不属于当前用户
	ErrCategoryNotFound = errors.New("分类不存在")
	// ErrInsufficientFunds 余额不足
	ErrInsufficientFunds = errors.New("余额不足")
	// ErrSameCategory 转出和转入为同一个分类
	ErrSameCategory = errors.New("转出和转入分类不能相同")
)

// LedgerService 分类余额账本
// 充值、支出、转账都通过条件更新或行锁事务完成，
// 并发场景下余额检查和扣减是同一条语句，不会出现读改写竞争导致的负余额。
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService 创建账本服务
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Fund 给分类充值，返回更新后的余额
// 分类不存在（或属于其他用户）返回 ErrCategoryNotFound
func (s *LedgerService) Fund(userID, categoryID uint, amount float64) (float64, error) {
	var balance float64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Category{}).
			Where("id = ? AND user_id = ?", categoryID, userID).
			Update("balance", gorm.Expr("balance + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return tx.Model(&models.Category{}).
			Select("balance").
			Where("id = ? AND user_id = ?", categoryID, userID).
			Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// Spend 从分类扣款，返回更新后的余额
// 余额检查放在 UPDATE 的 WHERE 条件里，余额不足时一行都不会更新
func (s *LedgerService) Spend(userID, categoryID uint, amount float64) (float64, error) {
	var balance float64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Category{}).
			Where("id = ? AND user_id = ? AND balance >= ?", categoryID, userID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 区分"分类不存在"和"余额不足"
			var count int64
			if err := tx.Model(&models.Category{}).
				Where("id = ? AND user_id = ?", categoryID, userID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrCategoryNotFound
			}
			return ErrInsufficientFunds
		}
		return tx.Model(&models.Category{}).
			Select("balance").
			Where("id = ? AND user_id = ?", categoryID, userID).
			Scan(&balance).Error
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}

// TransferResult 转账结果，包含转出和转入分类更新后的余额
type TransferResult struct {
	FromBalance float64 `json:"from_balance"`
	ToBalance   float64 `json:"to_balance"`
}

// Transfer 在同一用户的两个分类之间转账
// 两个分类在同一事务内按 id 升序加行锁，避免两笔反向转账互相死锁；
// 扣减和入账要么同时生效，要么同时回滚。
func (s *LedgerService) Transfer(userID, fromID, toID uint, amount float64) (*TransferResult, error) {
	if fromID == toID {
		return nil, ErrSameCategory
	}

	var result TransferResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var cats []models.Category
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id IN ? AND user_id = ?", []uint{fromID, toID}, userID).
			Order("id ASC").
			Find(&cats).Error; err != nil {
			return err
		}
		if len(cats) != 2 {
			return ErrCategoryNotFound
		}

		var from, to *models.Category
		for i := range cats {
			switch cats[i].ID {
			case fromID:
				from = &cats[i]
			case toID:
				to = &cats[i]
			}
		}
		if from == nil || to == nil {
			return ErrCategoryNotFound
		}
		if from.Balance < amount {
			return ErrInsufficientFunds
		}

		if err := tx.Model(&models.Category{}).
			Where("id = ?", from.ID).
			Update("balance", gorm.Expr("balance - ?", amount)).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Category{}).
			Where("id = ?", to.ID).
			Update("balance", gorm.Expr("balance + ?", amount)).Error; err != nil {
			return err
		}

		result.FromBalance = from.Balance - amount
		result.ToBalance = to.Balance + amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
