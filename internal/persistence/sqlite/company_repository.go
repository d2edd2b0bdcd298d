package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/office-booking/internal/persistence"
)

// CompanyRepository implements persistence.CompanyRepository using SQLite.
// Companies exist to own rooms; full company management lives elsewhere.
type CompanyRepository struct {
	pool *ConnectionPool
}

// NewCompanyRepository creates a new SQLite company repository.
func NewCompanyRepository(pool *ConnectionPool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// CreateCompany inserts a company and returns it with its generated id.
func (r *CompanyRepository) CreateCompany(ctx context.Context, company persistence.Company) (persistence.Company, error) {
	var address sql.NullString
	if company.Address != nil {
		address = sql.NullString{String: *company.Address, Valid: true}
	}

	result, err := r.pool.db.ExecContext(ctx,
		"INSERT INTO companies (name, address) VALUES (?, ?)", company.Name, address)
	if err != nil {
		return persistence.Company{}, mapSQLiteError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return persistence.Company{}, fmt.Errorf("failed to read generated company id: %w", err)
	}
	company.ID = id
	return company, nil
}

// GetCompany retrieves a company by id.
func (r *CompanyRepository) GetCompany(ctx context.Context, id int64) (persistence.Company, error) {
	var (
		company persistence.Company
		address sql.NullString
	)
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT id, name, address FROM companies WHERE id = ?", id).
		Scan(&company.ID, &company.Name, &address)
	if err != nil {
		return persistence.Company{}, mapSQLiteError(err)
	}
	if address.Valid {
		company.Address = &address.String
	}
	return company, nil
}
