package repository

import "gorm.io/gorm"

type Repository struct {
	DB         *gorm.DB
	Carts      CartRepo
	Inventory  InventoryRepo
	Orders     OrderRepo
	OrderItems OrderItemRepo
	History    StatusHistoryRepo
	Payments   PaymentRepo
	Sellers    SellerRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:         db,
		Carts:      NewCartRepo(db),
		Inventory:  NewInventoryRepo(db),
		Orders:     NewOrderRepo(db),
		OrderItems: NewOrderItemRepo(db),
		History:    NewStatusHistoryRepo(db),
		Payments:   NewPaymentRepo(db),
		Sellers:    NewSellerRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }

// Глобальная транзакция на весь набор репо
func (r *Repository) WithTx(fn func(tx *Repository) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(buildRepository(tx))
	})
}
