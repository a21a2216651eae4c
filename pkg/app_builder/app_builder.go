package appbuilder

import (
	"fmt"

	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"
	"passport-oracle/pkg/rest"
	"passport-oracle/pkg/utilities"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type AppConfig interface {
	GetLoggerConfig() logger.LoggerConfig
	GetRabbitmqConfig() rabbitmq.RabbitmqConfig
	GetRestApiPort() uint16
}

type AppBuilder[T utilities.JsonConfigObj[U], U AppConfig] struct {
	Logger         *logger.Logger
	Config         U
	conn           *amqp.Connection
	workerServices []rabbitmq.WorkerService
	middlewares    []rest.Middleware
	routes         []rest.Route
	engine         *gin.Engine
}

func New[T utilities.JsonConfigObj[U], U AppConfig]() *AppBuilder[T, U] {
	return &AppBuilder[T, U]{}
}

func (a *AppBuilder[T, U]) InitLogger(loggerArgs logger.GlobalLoggerConfig) *AppBuilder[T, U] {
	logger.InitDefaultLogger(loggerArgs)
	a.Logger = logger.Default()
	a.Logger.Info("Logger initialized")

	return a
}

// ResolveEnvironment loads a .env file if present so config values can be
// overridden without rebuilding the container.
func (a *AppBuilder[T, U]) ResolveEnvironment() *AppBuilder[T, U] {
	if err := godotenv.Load(); err != nil {
		a.Logger.Debug("No .env file found, relying on process environment")
	}
	return a
}

func (a *AppBuilder[T, U]) LoadConfig(filePath string) *AppBuilder[T, U] {
	a.Logger.Infof("Preparing to load config from %s ...", filePath)
	jsonConfig, err := utilities.ReadConfig[T, U](filePath)
	if err != nil {
		a.Logger.Error(err, "Failed to load config")
		panic(err)
	}

	a.Config = jsonConfig
	a.Logger.Info("Config successfully loaded.")
	return a
}

// WithOption runs arbitrary wiring against the partially built application.
func (a *AppBuilder[T, U]) WithOption(option func(a *AppBuilder[T, U])) *AppBuilder[T, U] {
	option(a)
	return a
}

func (a *AppBuilder[T, U]) InitRabbitmqConnection() *AppBuilder[T, U] {
	a.Logger.Info("Preparing to connect to Rabbitmq server...")
	rabbitmqConfig := a.Config.GetRabbitmqConfig()
	conn, err := rabbitmq.ConnectToRabbitmq(
		rabbitmqConfig.Host,
		rabbitmqConfig.User,
		rabbitmqConfig.Password,
	)
	if err != nil {
		panic(err)
	}

	a.conn = conn
	a.Logger.Info("Connection with Rabbitmq server established")

	return a
}

func (a *AppBuilder[T, U]) InitRabbitmqRegistries() *AppBuilder[T, U] {
	a.Logger.Info("Initializing Rabbitmq registries from config")
	rabbitmqConf := a.Config.GetRabbitmqConfig()

	rabbitmq.InitializeConsumerRegistry(a.conn, rabbitmqConf.ConsumersConfig)
	rabbitmq.InitializePublisherRegistry(a.conn, rabbitmqConf.PublishersConfig)
	a.Logger.Info("Successfully initialized Rabbitmq registries from config")

	return a
}

func (a *AppBuilder[T, U]) AddWorkerServices(workerServices ...rabbitmq.WorkerService) *AppBuilder[T, U] {
	a.Logger.Info("Adding Worker Services to Application...")
	a.workerServices = append(a.workerServices, workerServices...)
	return a
}

func (a *AppBuilder[T, U]) AddGinMiddleware(middlewares ...rest.Middleware) *AppBuilder[T, U] {
	a.Logger.Info("Adding Gin middleware to Application...")
	a.middlewares = append(a.middlewares, middlewares...)
	return a
}

func (a *AppBuilder[T, U]) AddGinRoutes(routes ...rest.Route) *AppBuilder[T, U] {
	a.Logger.Info("Adding Gin REST API routes to Application...")
	a.routes = append(a.routes, routes...)
	return a
}

func (a *AppBuilder[T, U]) AddSwagger() *AppBuilder[T, U] {
	a.Logger.Info("Adding SwaggerUI...")
	a.routes = append(a.routes, rest.NewRoute(
		rest.GET,
		"swagger",
		"*any",
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	))

	return a
}

func (a *AppBuilder[T, U]) InitGinRouter() *AppBuilder[T, U] {
	a.Logger.Info("Initializing Gin Router...")
	router := gin.Default()

	for _, m := range a.middlewares {
		if m.Group == "*" {
			router.Use(m.Handler)
		}
	}

	groups := map[string]*gin.RouterGroup{}
	groupFor := func(name string) *gin.RouterGroup {
		if _, exists := groups[name]; !exists {
			groups[name] = router.Group("/" + name)
			for _, m := range a.middlewares {
				if m.Group == name {
					groups[name].Use(m.Handler)
				}
			}
		}
		return groups[name]
	}

	a.Logger.Info("Registering REST API routes...")
	for _, r := range a.routes {
		group := groupFor(r.Group)

		switch r.Method {
		case rest.GET:
			group.GET(r.Path, r.HandlerFunc)
		case rest.POST:
			group.POST(r.Path, r.HandlerFunc)
		case rest.PUT:
			group.PUT(r.Path, r.HandlerFunc)
		case rest.PATCH:
			group.PATCH(r.Path, r.HandlerFunc)
		default:
			a.Logger.Warnf("Unrecognized HTTP method: %d", r.Method)
		}
	}

	a.engine = router
	a.Logger.Info("Successfully registered REST API routes.")
	return a
}

func (a *AppBuilder[T, U]) Build() ApplicationInterface {
	return &Application{
		Logger:         a.Logger,
		Addr:           fmt.Sprintf("0.0.0.0:%d", a.Config.GetRestApiPort()),
		Conn:           a.conn,
		WorkerServices: a.workerServices,
		Engine:         a.engine,
	}
}
