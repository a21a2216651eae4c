package appbuilder

import (
	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Application struct {
	Logger         *logger.Logger
	Addr           string
	Conn           *amqp.Connection
	WorkerServices []rabbitmq.WorkerService
	Engine         *gin.Engine
}

type ApplicationInterface interface {
	Start()
}

func (a *Application) Start() {
	a.Logger.Info("Starting Application runtime...")

	for _, ws := range a.WorkerServices {
		a.Logger.Infof("Starting %s WorkerService", ws.GetServiceName())
		go ws.StartService()
	}

	if a.Engine == nil {
		a.Logger.Info("No REST API configured, running worker services only")
		select {}
	}

	a.Logger.Infof("REST API is now listening on: %s", a.Addr)
	a.Engine.Run(a.Addr)
}
