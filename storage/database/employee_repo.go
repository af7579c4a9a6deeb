package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"Attendly/internal/model"
)

type EmployeeRepo struct {
	db *gorm.DB
}

func NewEmployeeRepo(db *gorm.DB) *EmployeeRepo {
	return &EmployeeRepo{db: db}
}

func (r *EmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepo) List(ctx context.Context, offset, limit int) ([]model.Employee, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Employee{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	var list []model.Employee
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	return list, total, nil
}

func (r *EmployeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return &e, nil
}

func (r *EmployeeRepo) Update(ctx context.Context, e *model.Employee) error {
	err := r.db.WithContext(ctx).
		Model(e).
		Select("names", "email", "employee_identifier", "phone_number", "updated_at").
		Updates(e).Error
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("failed to update employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepo) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Employee{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete employee: %w", result.Error)
	}
	return result.RowsAffected, nil
}
