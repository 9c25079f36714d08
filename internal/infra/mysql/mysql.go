package mysql

import (
	"restaurant-service/internal/domain"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// New opens a gorm MySQL connection and migrates the schema. The unique
// indexes on orders.order_number and customers.email created here are the
// final arbiters for reference collisions and concurrent guest signups.
func New(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: false,
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&domain.Customer{},
		&domain.Food{},
		&domain.FoodPortionSize{},
		&domain.Order{},
		&domain.OrderItem{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
