package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/employee-registry/internal/http/handlers"
	httpMW "github.com/yungbote/employee-registry/internal/http/middleware"
	"github.com/yungbote/employee-registry/internal/observability"
	"github.com/yungbote/employee-registry/internal/platform/logger"
)

const DefaultBasePath = "/employees/Api"

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	BasePath    string
	CORSOrigins []string

	EmployeeHandler *httpH.EmployeeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = observability.DefaultServiceName
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Metrics
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	basePath := "/" + strings.Trim(cfg.BasePath, "/")
	if basePath == "/" {
		basePath = DefaultBasePath
	}
	api := r.Group(basePath)
	{
		if cfg.EmployeeHandler != nil {
			api.GET("/GetAllEmployees", cfg.EmployeeHandler.GetAll)
			api.GET("/GetEmployeesSalary/:company", cfg.EmployeeHandler.SalaryByCompany)
			api.GET("/:id", cfg.EmployeeHandler.Get)
			api.POST("/AddEmployee", cfg.EmployeeHandler.Create)
			api.PUT("/ChangeEmployee/:id", cfg.EmployeeHandler.Update)
			api.PUT("/ChangeAllEmployeesNames", cfg.EmployeeHandler.RenameAll)
			api.DELETE("/DeleteEmployee/:id", cfg.EmployeeHandler.Delete)
			api.DELETE("/DeleteAllEmployees", cfg.EmployeeHandler.DeleteAll)
		}
	}

	return r
}
