package domain

import "github.com/yungbote/employee-registry/internal/domain/employee"

type Employee = employee.Employee
type EmployeeView = employee.View
type EmployeeInput = employee.Input

const SelfEmployedLabel = employee.SelfEmployedLabel

// Models lists every type the relational store migrates.
func Models() []interface{} {
	return []interface{}{
		&employee.Employee{},
	}
}
