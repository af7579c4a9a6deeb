package service

import (
	"context"
	stderrors "errors"
	"sync"

	"Attendly/internal/model"
	"Attendly/internal/model/dto"
	"Attendly/internal/repository"
	"Attendly/pkg/errors"
	"Attendly/storage/database"
)

var (
	employeeService *EmployeeService
	employeeOnce    sync.Once
)

func Employee() *EmployeeService {
	employeeOnce.Do(func() {
		employeeService = NewEmployeeService(database.NewEmployeeRepo(database.DB()))
	})
	return employeeService
}

type EmployeeService struct {
	repo repository.EmployeeRepository
}

func NewEmployeeService(repo repository.EmployeeRepository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

func (s *EmployeeService) Create(ctx context.Context, req dto.CreateEmployeeRequest) (*model.Employee, error) {
	e := &model.Employee{
		Names:              req.Names,
		Email:              req.Email,
		EmployeeIdentifier: req.EmployeeIdentifier,
		PhoneNumber:        req.PhoneNumber,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, mapEmployeeErr(err)
	}
	return e, nil
}

// List 按创建时间倒序分页
func (s *EmployeeService) List(ctx context.Context, q dto.ListEmployeesQuery) (*dto.EmployeePage, error) {
	q = q.Normalize()

	list, total, err := s.repo.List(ctx, q.Offset(), q.Limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.EmployeeResponse, 0, len(list))
	for i := range list {
		items = append(items, dto.NewEmployeeResponse(&list[i]))
	}
	return &dto.EmployeePage{
		Items: items,
		Page:  q.Page,
		Limit: q.Limit,
		Total: total,
	}, nil
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*model.Employee, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.EmployeeNotFound
	}
	return e, nil
}

// Update 只覆盖请求中出现的字段
func (s *EmployeeService) Update(ctx context.Context, id string, req dto.UpdateEmployeeRequest) (*model.Employee, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Empty() {
		return e, nil
	}

	if req.Names != nil {
		e.Names = *req.Names
	}
	if req.Email != nil {
		e.Email = *req.Email
	}
	if req.EmployeeIdentifier != nil {
		e.EmployeeIdentifier = *req.EmployeeIdentifier
	}
	if req.PhoneNumber != nil {
		e.PhoneNumber = *req.PhoneNumber
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, mapEmployeeErr(err)
	}
	return e, nil
}

// Delete 考勤记录随外键级联删除
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.EmployeeNotFound
	}
	return nil
}

func mapEmployeeErr(err error) error {
	if stderrors.Is(err, repository.ErrDuplicateKey) {
		return errors.EmployeeAlreadyExists
	}
	return err
}
