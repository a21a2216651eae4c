package main

import (
	"crypto/rand"
	"os"

	appbuilder "passport-oracle/pkg/app_builder"
	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"
	"passport-oracle/pkg/rest"
	"passport-oracle/src/attestation"
	"passport-oracle/src/registry"
	"passport-oracle/src/verification"
)

// @title           Passport Oracle API
// @version         1.0
// @description     Verifies passport claims, signs attestations and registers identities
// @host localhost:9000
// @BasePath /v1
func main() {
	var handler *verification.Handler

	appbuilder.New[ApiConfigJson, ApiConfig]().
		InitLogger(logger.GlobalLoggerConfig{
			Args: []logger.LoggerArg{{Key: "service", Value: "api"}},
		}).
		ResolveEnvironment().
		LoadConfig("config.json").
		InitRabbitmqConnection().
		InitRabbitmqRegistries().
		WithOption(func(a *appbuilder.AppBuilder[ApiConfigJson, ApiConfig]) {
			logPublisher := rabbitmq.GetPublisher("LogPublisher")
			logSink := rabbitmq.CreateRabbitmqLoggerSink(logPublisher)
			logger.AddSinkToLoggerInstance(logger.Default(), logSink)
		}).
		WithOption(func(a *appbuilder.AppBuilder[ApiConfigJson, ApiConfig]) {
			oracleConf := a.Config.OracleConf

			credential := loadOrCreateCredential(a.Logger, oracleConf.KeyPath)
			oracle := attestation.NewService(credential, attestation.WithLogger(a.Logger))

			contract := registry.NewContract(oracleConf.RegistryOwner)
			if err := contract.SetOracleKey(oracleConf.RegistryOwner, credential.Public()); err != nil {
				a.Logger.Fatal(err, "Failed to configure registry oracle key")
			}

			handler = verification.Build(
				oracle,
				contract,
				rabbitmq.GetPublisher("RegistrationRequestPublisher"),
				a.Logger,
			)
		}).
		AddGinMiddleware(
			rest.NewMiddleware("*", rest.CORSMiddleware()),
		).
		WithOption(func(a *appbuilder.AppBuilder[ApiConfigJson, ApiConfig]) {
			a.AddGinRoutes(
				rest.NewRoute(rest.POST, "v1", "verification", handler.VerifyPassport),
				rest.NewRoute(rest.POST, "v1", "verification/batch", handler.VerifyBatch),
				rest.NewRoute(rest.POST, "v1", "registry/proof", handler.RegisterWithProof),
				rest.NewRoute(rest.GET, "v1", "registry/status", handler.RegistryStatus),
				rest.NewRoute(rest.POST, "v1", "registry/inclusion", handler.CheckInclusion),
			)
		}).
		AddSwagger().
		InitGinRouter().
		Build().
		Start()
}

// loadOrCreateCredential reads the Oracle key from disk, generating and
// persisting a fresh one on first run.
func loadOrCreateCredential(log *logger.Logger, keyPath string) *attestation.OracleCredential {
	if raw, err := os.ReadFile(keyPath); err == nil {
		credential, err := attestation.LoadOracleCredential(raw)
		if err != nil {
			log.Fatal(err, "Oracle key file is corrupt")
		}
		log.Infof("Loaded oracle key from %s", keyPath)
		return credential
	}

	credential, err := attestation.GenerateOracleCredential(rand.Reader)
	if err != nil {
		log.Fatal(err, "Failed to generate oracle key")
	}
	if err := os.WriteFile(keyPath, credential.Bytes(), 0600); err != nil {
		log.Fatal(err, "Failed to persist oracle key")
	}

	log.Infof("Generated new oracle key at %s", keyPath)
	return credential
}
