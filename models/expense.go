package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense 消费记录模型
// Category 字段是自由文本标签，不外键关联 categories 表：
// 记录可以引用已经不存在的分类，按分类汇总时仅把它当作分组键。
type Expense struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Description string         `json:"description" gorm:"size:255;not null"`
	Amount      float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Category    string         `json:"category" gorm:"size:255;not null"`
	UserID      uint           `json:"user_id" gorm:"index;not null"`
	Date        time.Time      `json:"date" gorm:"not null;index"` // 服务端在创建时赋值
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
	User        User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}
