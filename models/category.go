package models

import (
	"time"
)

// Category 预算分类（信封）模型
// 每个分类属于一个用户，余额任何时刻不允许为负。
// 余额只能通过账本服务的充值/支出/转账三个操作修改。
type Category struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CategoryName string    `json:"category_name" gorm:"size:255;not null"`
	Balance      float64   `json:"balance" gorm:"type:decimal(10,2);not null;default:0"`
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	User         User      `json:"-" gorm:"foreignKey:UserID"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}
