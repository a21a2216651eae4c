package main

import (
	appbuilder "passport-oracle/pkg/app_builder"
	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"
	"passport-oracle/src/attestation"
	"passport-oracle/src/database"
	"passport-oracle/src/external"
	"passport-oracle/src/pipeline"
	"passport-oracle/src/registry"
)

func main() {
	var (
		pipe         *pipeline.Pipeline
		contract     *registry.Contract
		anchorWorker *external.RootAnchorWorker
		regWorker    *external.RegistrationWorker
	)

	appbuilder.New[WorkerConfigJson, WorkerConfig]().
		InitLogger(logger.GlobalLoggerConfig{
			Args: []logger.LoggerArg{{Key: "service", Value: "chain-worker"}},
		}).
		ResolveEnvironment().
		LoadConfig("config.json").
		InitRabbitmqConnection().
		InitRabbitmqRegistries().
		WithOption(func(a *appbuilder.AppBuilder[WorkerConfigJson, WorkerConfig]) {
			logPublisher := rabbitmq.GetPublisher("LogPublisher")
			logSink := rabbitmq.CreateRabbitmqLoggerSink(logPublisher)
			logger.AddSinkToLoggerInstance(logger.Default(), logSink)
		}).
		WithOption(func(a *appbuilder.AppBuilder[WorkerConfigJson, WorkerConfig]) {
			if err := database.InitializeDatabaseConnection(a.Config.DatabaseConf.Path); err != nil {
				a.Logger.Fatal(err, "Failed to open transaction queue database")
			}
			db := database.GetDatabaseConnection()

			solanaConfig, err := external.LoadSolanaKeys()
			if err != nil {
				a.Logger.Fatal(err, "Failed to load solana keys")
			}

			registryConf := a.Config.RegistryConf
			contract = registry.NewContract(registryConf.Owner)

			oracleKey, err := attestation.DecodePublicKey(registryConf.OraclePublicKey)
			if err != nil {
				a.Logger.Fatal(err, "Invalid oracle public key in config")
			}
			if err := contract.SetOracleKey(registryConf.Owner, oracleKey); err != nil {
				a.Logger.Fatal(err, "Failed to configure registry oracle key")
			}

			submitter := external.NewSolanaSubmitter(solanaConfig, a.Config.SolanaConf.RpcEndpoint, a.Logger)

			pipe = pipeline.New(
				pipeline.NewQueueRepository(db),
				pipeline.NewSubmissionLedger(db),
				submitter,
				a.Logger,
				pipeline.WithPublishers(
					rabbitmq.GetPublisher("RegistrationResultPublisher"),
					rabbitmq.GetPublisher("RegistrationFailurePublisher"),
				),
			)

			regWorker = external.NewRegistrationWorker(
				contract,
				pipe,
				rabbitmq.GetPublisher("RegistrationFailurePublisher"),
				a.Logger,
			)
			anchorWorker = external.NewRootAnchorWorker(contract, pipe, registryConf.AnchorSchedule, a.Logger)
		}).
		WithOption(func(a *appbuilder.AppBuilder[WorkerConfigJson, WorkerConfig]) {
			a.AddWorkerServices(pipe, regWorker, anchorWorker)
		}).
		Build().
		Start()
}
