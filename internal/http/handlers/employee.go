package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/yungbote/employee-registry/internal/domain/employee"
	"github.com/yungbote/employee-registry/internal/http/response"
	"github.com/yungbote/employee-registry/internal/platform/logger"
	"github.com/yungbote/employee-registry/internal/services"
)

const (
	msgInvalidID   = "Некорректный идентификатор сотрудника"
	msgInvalidBody = "Некорректное тело запроса"
)

type EmployeeHandler struct {
	log      *logger.Logger
	svc      services.EmployeeService
	basePath string
}

// NewEmployeeHandler serves the registry routes. basePath is used to build
// the Location header of created records.
func NewEmployeeHandler(log *logger.Logger, svc services.EmployeeService, basePath string) *EmployeeHandler {
	return &EmployeeHandler{
		log:      log.With("handler", "EmployeeHandler"),
		svc:      svc,
		basePath: strings.TrimRight(basePath, "/"),
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", errors.New(msgInvalidID))
		return 0, false
	}
	return id, true
}

// bindEmployee decodes XML bodies when the client says so and JSON otherwise.
func bindEmployee(c *gin.Context) (*employee.Employee, bool) {
	var in employee.Input
	var err error
	switch c.ContentType() {
	case binding.MIMEXML, binding.MIMEXML2:
		err = c.ShouldBindWith(&in, binding.XML)
	default:
		err = c.ShouldBindWith(&in, binding.JSON)
	}
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", fmt.Errorf("%s: %w", msgInvalidBody, err))
		return nil, false
	}
	return in.Employee(), true
}

func renderList(c *gin.Context, list []*employee.Employee) {
	views := employee.Views(list)
	response.Negotiate(c, http.StatusOK, views, employee.ViewList{Employees: views})
}

// GetAll godoc
// @Summary      Список сотрудников
// @Tags         employees
// @Produce      json,xml
// @Success      200  {array}  employee.View
// @Router       /GetAllEmployees [get]
func (h *EmployeeHandler) GetAll(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	renderList(c, list)
}

// Get godoc
// @Summary      Сотрудник по идентификатору
// @Tags         employees
// @Produce      json,xml
// @Param        id   path      int  true  "Идентификатор"
// @Success      200  {object}  employee.View
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Router       /{id} [get]
func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	view := e.View()
	response.Negotiate(c, http.StatusOK, view, view)
}

// SalaryByCompany godoc
// @Summary      Сумма зарплат сотрудников компании
// @Description  Для сотрудников без компании передайте "Самозанятый".
// @Tags         employees
// @Produce      json,xml
// @Param        company  path      string  true  "Компания"
// @Success      200      {integer} int
// @Failure      400      {object}  response.ErrorEnvelope
// @Router       /GetEmployeesSalary/{company} [get]
func (h *EmployeeHandler) SalaryByCompany(c *gin.Context) {
	sum, err := h.svc.SumSalaryByCompany(c.Request.Context(), c.Param("company"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.Negotiate(c, http.StatusOK, sum, response.Int{Value: sum})
}

// Create godoc
// @Summary      Добавить сотрудника
// @Tags         employees
// @Accept       json,xml
// @Produce      json,xml
// @Param        employee  body      employee.Input  true  "Сотрудник"
// @Success      201       {object}  employee.View
// @Failure      400       {object}  response.ErrorEnvelope
// @Router       /AddEmployee [post]
func (h *EmployeeHandler) Create(c *gin.Context) {
	in, ok := bindEmployee(c)
	if !ok {
		return
	}
	e, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Header("Location", h.basePath+"/"+strconv.FormatInt(e.ID, 10))
	view := e.View()
	response.Negotiate(c, http.StatusCreated, view, view)
}

// Update godoc
// @Summary      Изменить сотрудника
// @Tags         employees
// @Accept       json,xml
// @Param        id        path  int             true  "Идентификатор"
// @Param        employee  body  employee.Input  true  "Сотрудник"
// @Success      204
// @Failure      400  {object}  response.ErrorEnvelope
// @Failure      404  {object}  response.ErrorEnvelope
// @Router       /ChangeEmployee/{id} [put]
func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindEmployee(c)
	if !ok {
		return
	}
	if err := h.svc.Update(c.Request.Context(), id, in); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RenameAll godoc
// @Summary      Случайно переименовать всех сотрудников
// @Tags         employees
// @Produce      json,xml
// @Success      200  {array}   employee.View
// @Router       /ChangeAllEmployeesNames [put]
func (h *EmployeeHandler) RenameAll(c *gin.Context) {
	res, err := h.svc.RenameAll(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if res.Message != "" {
		response.RespondMessage(c, http.StatusOK, res.Message)
		return
	}
	renderList(c, res.Employees)
}

// Delete godoc
// @Summary      Удалить сотрудника
// @Tags         employees
// @Param        id   path  int  true  "Идентификатор"
// @Success      204
// @Failure      404  {object}  response.ErrorEnvelope
// @Router       /DeleteEmployee/{id} [delete]
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteAll godoc
// @Summary      Удалить всех сотрудников
// @Tags         employees
// @Produce      json,xml
// @Success      200  {object}  response.Message
// @Failure      400  {object}  response.ErrorEnvelope
// @Router       /DeleteAllEmployees [delete]
func (h *EmployeeHandler) DeleteAll(c *gin.Context) {
	msg, err := h.svc.DeleteAll(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondMessage(c, http.StatusOK, msg)
}
