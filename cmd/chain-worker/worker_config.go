package main

import (
	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"
)

type WorkerConfigJson struct {
	LoggerConf   logger.LoggerConfigJson    `json:"logger"`
	RabbitmqConf rabbitmq.RabbimqConfigJson `json:"rabbitmq"`
	DatabaseConf DatabaseConfigJson         `json:"database"`
	SolanaConf   SolanaConfigJson           `json:"solana"`
	RegistryConf RegistryConfigJson         `json:"registry"`
}

func (wcj WorkerConfigJson) ConvertToDomain() WorkerConfig {
	return WorkerConfig{
		LoggerConf:   wcj.LoggerConf.ConvertToDomain(),
		RabbitmqConf: wcj.RabbitmqConf.ConvertToDomain(),
		DatabaseConf: wcj.DatabaseConf.ConvertToDomain(),
		SolanaConf:   wcj.SolanaConf.ConvertToDomain(),
		RegistryConf: wcj.RegistryConf.ConvertToDomain(),
	}
}

type WorkerConfig struct {
	LoggerConf   logger.LoggerConfig
	RabbitmqConf rabbitmq.RabbitmqConfig
	DatabaseConf DatabaseConfig
	SolanaConf   SolanaConfig
	RegistryConf RegistryConfig
}

func (wc WorkerConfig) GetLoggerConfig() logger.LoggerConfig {
	return wc.LoggerConf
}

func (wc WorkerConfig) GetRabbitmqConfig() rabbitmq.RabbitmqConfig {
	return wc.RabbitmqConf
}

func (wc WorkerConfig) GetRestApiPort() uint16 {
	return 0
}

type DatabaseConfigJson struct {
	Path string `json:"path"`
}

type DatabaseConfig struct {
	Path string
}

func (dcj DatabaseConfigJson) ConvertToDomain() DatabaseConfig {
	return DatabaseConfig{Path: dcj.Path}
}

type SolanaConfigJson struct {
	RpcEndpoint string `json:"rpc_endpoint"`
}

type SolanaConfig struct {
	RpcEndpoint string
}

func (scj SolanaConfigJson) ConvertToDomain() SolanaConfig {
	return SolanaConfig{RpcEndpoint: scj.RpcEndpoint}
}

type RegistryConfigJson struct {
	Owner           string `json:"owner"`
	OraclePublicKey string `json:"oracle_public_key"`
	AnchorSchedule  string `json:"anchor_schedule"`
}

type RegistryConfig struct {
	Owner           string
	OraclePublicKey string
	AnchorSchedule  string
}

func (rcj RegistryConfigJson) ConvertToDomain() RegistryConfig {
	return RegistryConfig{
		Owner:           rcj.Owner,
		OraclePublicKey: rcj.OraclePublicKey,
		AnchorSchedule:  rcj.AnchorSchedule,
	}
}
