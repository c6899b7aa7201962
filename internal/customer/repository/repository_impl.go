package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/vyapar/internal/customer/domain"
	"github.com/smallbiznis/vyapar/pkg/db/pagination"
	"github.com/smallbiznis/vyapar/pkg/phone"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, company_id, name, phone, email, address, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.CompanyID,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.Address,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, company_id, name, phone, email, address, created_at, updated_at
		 FROM customers WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, companyID snowflake.ID, name string) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).
		Where("company_id = ? AND name = ?", companyID, name).
		Limit(1).
		Find(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) FindByPhone(ctx context.Context, db *gorm.DB, companyID snowflake.ID, number string) (*domain.Customer, error) {
	digits := phone.Local(number)
	if digits == "" {
		return nil, nil
	}

	var candidates []domain.Customer
	err := db.WithContext(ctx).
		Where("company_id = ? AND phone LIKE ?", companyID, "%"+digits[len(digits)-4:]).
		Order("created_at asc, id asc").
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if phone.Local(candidates[i].Phone) == digits {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID snowflake.ID, filter domain.ListCustomerFilter, page pagination.Pagination) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	stmt := db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("company_id = ?", companyID)
	if search := strings.TrimSpace(filter.Search); search != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	offset, limit := page.Window()
	err := stmt.
		Order("name asc, id asc").
		Offset(offset).
		Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers SET name = ?, phone = ?, email = ?, address = ?, updated_at = ?
		 WHERE company_id = ? AND id = ?`,
		customer.Name,
		customer.Phone,
		customer.Email,
		customer.Address,
		customer.UpdatedAt,
		customer.CompanyID,
		customer.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM customers WHERE company_id = ? AND id = ?`,
		companyID,
		id,
	).Error
}

func (r *repo) CountReferences(ctx context.Context, db *gorm.DB, companyID, id snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT
			(SELECT COUNT(*) FROM invoices WHERE company_id = ? AND customer_id = ?) +
			(SELECT COUNT(*) FROM payments WHERE company_id = ? AND customer_id = ?)`,
		companyID, id, companyID, id,
	).Scan(&count).Error
	return count, err
}
