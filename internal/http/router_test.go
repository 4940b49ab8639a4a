package http

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/employee-registry/internal/data/store/memory"
	"github.com/yungbote/employee-registry/internal/domain/employee"
	httpH "github.com/yungbote/employee-registry/internal/http/handlers"
	"github.com/yungbote/employee-registry/internal/http/response"
	"github.com/yungbote/employee-registry/internal/observability"
	"github.com/yungbote/employee-registry/internal/pkg/namegen"
	"github.com/yungbote/employee-registry/internal/platform/logger"
	"github.com/yungbote/employee-registry/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	svc := services.NewEmployeeService(log, memory.New(log), namegen.NewSeeded(3), nil)
	return NewRouter(RouterConfig{
		Log:             log,
		Metrics:         observability.New(),
		BasePath:        DefaultBasePath,
		CORSOrigins:     []string{"*"},
		EmployeeHandler: httpH.NewEmployeeHandler(log, svc, DefaultBasePath),
		HealthHandler:   httpH.NewHealthHandler(nil),
	})
}

// do sends a request under the base path; a leading "!" marks an absolute path.
func do(t *testing.T, r http.Handler, method, path, contentType, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	target := DefaultBasePath + path
	if strings.HasPrefix(path, "!") {
		target = strings.TrimPrefix(path, "!")
	}
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func wantStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, want, rec.Body.String())
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return env.Error.Message
}

const jsonType = "application/json"

func TestEmployeeLifecycleJSON(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/AddEmployee", jsonType, `{"id":1,"name":"Ivan","companyName":"Acme","salary":100,"isConfidential":true}`)
	wantStatus(t, rec, http.StatusCreated)
	if got := rec.Header().Get("Location"); got != DefaultBasePath+"/1" {
		t.Fatalf("unexpected location: got=%q", got)
	}

	rec = do(t, r, http.MethodPost, "/AddEmployee", jsonType, `{"id":2,"name":"Olga","companyName":null,"salary":50}`)
	wantStatus(t, rec, http.StatusCreated)

	rec = do(t, r, http.MethodGet, "/1", "", "")
	wantStatus(t, rec, http.StatusOK)
	var view employee.View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if view.ID != 1 || view.Name != "Ivan" || view.CompanyName != "Acme" || view.Salary != 100 || !view.IsConfidential {
		t.Fatalf("unexpected view: %+v", view)
	}

	rec = do(t, r, http.MethodGet, "/GetAllEmployees", "", "")
	wantStatus(t, rec, http.StatusOK)
	var list []employee.View
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 2 || list[1].CompanyName != employee.SelfEmployedLabel {
		t.Fatalf("unexpected list: %+v", list)
	}

	rec = do(t, r, http.MethodGet, "/GetEmployeesSalary/Acme", "", "")
	wantStatus(t, rec, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "100" {
		t.Fatalf("unexpected sum: %s", rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/GetEmployeesSalary/"+url.PathEscape(employee.SelfEmployedLabel), "", "")
	wantStatus(t, rec, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "50" {
		t.Fatalf("unexpected self-employed sum: %s", rec.Body.String())
	}

	rec = do(t, r, http.MethodPut, "/ChangeEmployee/1", jsonType, `{"id":1,"name":"Ivan II","companyName":"Acme","salary":120}`)
	wantStatus(t, rec, http.StatusNoContent)

	rec = do(t, r, http.MethodDelete, "/DeleteEmployee/2", "", "")
	wantStatus(t, rec, http.StatusNoContent)

	rec = do(t, r, http.MethodGet, "/2", "", "")
	wantStatus(t, rec, http.StatusNotFound)
	if got := errorMessage(t, rec); got != "Сущности по id-2 не существует в БД!" {
		t.Fatalf("unexpected message: %q", got)
	}

	rec = do(t, r, http.MethodDelete, "/DeleteAllEmployees", "", "")
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), services.MsgAllDeleted) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	rec = do(t, r, http.MethodDelete, "/DeleteAllEmployees", "", "")
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), services.MsgNothingToDelete) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestEmployeeClientErrors(t *testing.T) {
	r := newTestRouter(t)
	wantStatus(t, do(t, r, http.MethodPost, "/AddEmployee", jsonType, `{"id":5,"name":"a"}`), http.StatusCreated)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		msg    string
	}{
		{"duplicate id", http.MethodPost, "/AddEmployee", `{"id":5,"name":"b"}`, http.StatusBadRequest, "Запись с id-5 существует в БД!"},
		{"negative id", http.MethodPost, "/AddEmployee", `{"id":-1,"name":"b"}`, http.StatusBadRequest, services.MsgInvalidID},
		{"malformed body", http.MethodPost, "/AddEmployee", `{"id":"x"`, http.StatusBadRequest, ""},
		{"non-integer id", http.MethodGet, "/abc", "", http.StatusBadRequest, ""},
		{"unknown company", http.MethodGet, "/GetEmployeesSalary/Nope", "", http.StatusBadRequest, "Нету сотрудников из компании Nope!"},
		{"id mismatch", http.MethodPut, "/ChangeEmployee/6", `{"id":5,"name":"b"}`, http.StatusBadRequest, services.MsgIDMismatch},
		{"update vanished", http.MethodPut, "/ChangeEmployee/9", `{"id":9,"name":"b"}`, http.StatusNotFound, "Сущности по id-9 не существует в БД!"},
		{"delete missing", http.MethodDelete, "/DeleteEmployee/9", "", http.StatusNotFound, "Сущности по id-9 не существует в БД!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ct := ""
			if tc.body != "" {
				ct = jsonType
			}
			rec := do(t, r, tc.method, tc.path, ct, tc.body)
			wantStatus(t, rec, tc.status)
			if tc.msg != "" {
				if got := errorMessage(t, rec); got != tc.msg {
					t.Fatalf("unexpected message: got=%q want=%q", got, tc.msg)
				}
			}
		})
	}

	rec := do(t, r, http.MethodGet, "/5", "", "")
	if !strings.Contains(rec.Body.String(), `"name":"a"`) {
		t.Fatalf("failed update mutated record: %s", rec.Body.String())
	}
}

func TestRenameAllRoute(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPut, "/ChangeAllEmployeesNames", "", "")
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), services.MsgNothingToRename) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	for _, body := range []string{`{"id":1,"name":"a"}`, `{"id":2,"name":"b"}`} {
		wantStatus(t, do(t, r, http.MethodPost, "/AddEmployee", jsonType, body), http.StatusCreated)
	}
	rec = do(t, r, http.MethodPut, "/ChangeAllEmployeesNames", "", "")
	wantStatus(t, rec, http.StatusOK)
	var list []employee.View
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || len(list[0].Name) != len(list[1].Name) || list[0].Name == "a" {
		t.Fatalf("unexpected renamed list: %+v", list)
	}
}

func TestXMLNegotiation(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/AddEmployee", "application/xml",
		`<Employee><id>3</id><name>Xml</name><companyName>Acme</companyName><salary>7</salary><isConfidential>false</isConfidential></Employee>`,
		"Accept", "application/xml")
	wantStatus(t, rec, http.StatusCreated)
	var view employee.View
	if err := xml.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode xml: %v (%s)", err, rec.Body.String())
	}
	if view.ID != 3 || view.CompanyName != "Acme" {
		t.Fatalf("unexpected view: %+v", view)
	}

	rec = do(t, r, http.MethodGet, "/GetAllEmployees", "", "", "Accept", "application/xml")
	wantStatus(t, rec, http.StatusOK)
	var list employee.ViewList
	if err := xml.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode xml list: %v", err)
	}
	if len(list.Employees) != 1 || list.Employees[0].Name != "Xml" {
		t.Fatalf("unexpected xml list: %+v", list)
	}

	rec = do(t, r, http.MethodGet, "/GetEmployeesSalary/Acme", "", "", "Accept", "application/xml")
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "<int>7</int>") {
		t.Fatalf("unexpected xml sum: %s", rec.Body.String())
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "!/healthcheck", "", "")
	wantStatus(t, rec, http.StatusOK)

	rec = do(t, r, http.MethodGet, "!/metrics", "", "")
	wantStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "er_api_requests_total") {
		t.Fatalf("unexpected metrics body: %s", rec.Body.String())
	}
}
