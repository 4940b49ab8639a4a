package employee

import (
	"encoding/xml"
	"strings"
)

// SelfEmployedLabel is shown in place of a missing company.
const SelfEmployedLabel = "Самозанятый"

// Employee is the stored record. A nil CompanyName means the person is an
// independent contractor; it is never stored as the label or an empty string.
type Employee struct {
	ID             int64   `gorm:"column:id;primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Name           string  `gorm:"column:name;type:text;not null" json:"name" yaml:"name"`
	CompanyName    *string `gorm:"column:company_name;type:text;index" json:"companyName,omitempty" yaml:"companyName,omitempty"`
	Salary         int     `gorm:"column:salary;not null" json:"salary" yaml:"salary"`
	IsConfidential bool    `gorm:"column:is_confidential;not null" json:"isConfidential" yaml:"isConfidential"`
}

func (Employee) TableName() string { return "employees" }

// Clone returns a deep copy so callers cannot alias stored state.
func (e *Employee) Clone() *Employee {
	if e == nil {
		return nil
	}
	out := *e
	if e.CompanyName != nil {
		c := *e.CompanyName
		out.CompanyName = &c
	}
	return &out
}

// NormalizeCompany maps blank values and the self-employed label to nil.
func NormalizeCompany(raw *string) *string {
	if raw == nil {
		return nil
	}
	return CompanyFromLabel(*raw)
}

// CompanyFromLabel is the inverse of DisplayCompany.
func CompanyFromLabel(label string) *string {
	s := strings.TrimSpace(label)
	if s == "" || s == SelfEmployedLabel {
		return nil
	}
	return &s
}

func DisplayCompany(c *string) string {
	if c == nil {
		return SelfEmployedLabel
	}
	return *c
}

// SameCompany reports whether two optional companies denote the same employer.
func SameCompany(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// View is the outward representation with the company label applied.
type View struct {
	XMLName        xml.Name `json:"-" xml:"Employee"`
	ID             int64    `json:"id" xml:"id"`
	Name           string   `json:"name" xml:"name"`
	CompanyName    string   `json:"companyName" xml:"companyName"`
	Salary         int      `json:"salary" xml:"salary"`
	IsConfidential bool     `json:"isConfidential" xml:"isConfidential"`
}

type ViewList struct {
	XMLName   xml.Name `json:"-" xml:"ArrayOfEmployee"`
	Employees []View   `json:"employees" xml:"Employee"`
}

func (e *Employee) View() View {
	return View{
		ID:             e.ID,
		Name:           e.Name,
		CompanyName:    DisplayCompany(e.CompanyName),
		Salary:         e.Salary,
		IsConfidential: e.IsConfidential,
	}
}

func Views(list []*Employee) []View {
	out := make([]View, 0, len(list))
	for _, e := range list {
		if e == nil {
			continue
		}
		out = append(out, e.View())
	}
	return out
}

// Input is the JSON or XML request body for create and update.
type Input struct {
	XMLName        xml.Name `json:"-" xml:"Employee"`
	ID             int64    `json:"id" xml:"id"`
	Name           string   `json:"name" xml:"name"`
	CompanyName    *string  `json:"companyName" xml:"companyName"`
	Salary         int      `json:"salary" xml:"salary"`
	IsConfidential bool     `json:"isConfidential" xml:"isConfidential"`
}

func (in Input) Employee() *Employee {
	return &Employee{
		ID:             in.ID,
		Name:           in.Name,
		CompanyName:    NormalizeCompany(in.CompanyName),
		Salary:         in.Salary,
		IsConfidential: in.IsConfidential,
	}
}
