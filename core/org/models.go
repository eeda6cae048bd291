package org

import (
	"time"

	"github.com/trezcool/chuo/core"
)

type (
	Department struct {
		ID        string    `json:"id"`
		Code      string    `json:"code"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Program struct {
		ID           string    `json:"id"`
		Code         string    `json:"code"`
		Name         string    `json:"name"`
		DepartmentID string    `json:"department_id"`
		CreatedAt    time.Time `json:"created_at"` // UTC
	}

	Section struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		ProgramID string    `json:"program_id"`
		TermID    string    `json:"term_id"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Term struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Subject struct {
		ID        string    `json:"id"`
		Code      string    `json:"code"`
		Name      string    `json:"name"`
		ProgramID string    `json:"program_id"`
		TermID    string    `json:"term_id"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}
)

type (
	NewDepartment struct {
		Code string `json:"code" validate:"required"`
		Name string `json:"name" validate:"required"`
	}

	NewProgram struct {
		Code         string `json:"code" validate:"required"`
		Name         string `json:"name" validate:"required"`
		DepartmentID string `json:"department_id" validate:"required"`
	}

	NewSection struct {
		Name      string `json:"name" validate:"required"`
		ProgramID string `json:"program_id" validate:"required"`
		TermID    string `json:"term_id" validate:"required"`
	}

	NewTerm struct {
		Name      string    `json:"name" validate:"required"`
		StartDate time.Time `json:"start_date" validate:"required"`
		EndDate   time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	}

	NewSubject struct {
		Code      string `json:"code" validate:"required"`
		Name      string `json:"name" validate:"required"`
		ProgramID string `json:"program_id" validate:"required"`
		TermID    string `json:"term_id" validate:"required"`
	}
)

func (nd *NewDepartment) Validate() error {
	nd.Code = core.CleanString(nd.Code, true /* lower */)
	nd.Name = core.CleanString(nd.Name)
	return core.Validate.Struct(nd)
}

func (np *NewProgram) Validate() error {
	np.Code = core.CleanString(np.Code, true /* lower */)
	np.Name = core.CleanString(np.Name)
	return core.Validate.Struct(np)
}

func (ns *NewSection) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	return core.Validate.Struct(ns)
}

func (nt *NewTerm) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	return core.Validate.Struct(nt)
}

func (ns *NewSubject) Validate() error {
	ns.Code = core.CleanString(ns.Code, true /* lower */)
	ns.Name = core.CleanString(ns.Name)
	return core.Validate.Struct(ns)
}
