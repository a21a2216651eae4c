package main

import (
	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/rabbitmq"
)

type ApiConfigJson struct {
	LoggerConf   logger.LoggerConfigJson    `json:"logger"`
	RabbitmqConf rabbitmq.RabbimqConfigJson `json:"rabbitmq"`
	RestConf     ApiRestConfigJson          `json:"rest"`
	OracleConf   OracleConfigJson           `json:"oracle"`
}

func (acj ApiConfigJson) ConvertToDomain() ApiConfig {
	return ApiConfig{
		LoggerConf:   acj.LoggerConf.ConvertToDomain(),
		RabbitmqConf: acj.RabbitmqConf.ConvertToDomain(),
		RestConf:     acj.RestConf.ConvertToDomain(),
		OracleConf:   acj.OracleConf.ConvertToDomain(),
	}
}

type ApiConfig struct {
	LoggerConf   logger.LoggerConfig
	RabbitmqConf rabbitmq.RabbitmqConfig
	RestConf     ApiRestConfig
	OracleConf   OracleConfig
}

func (ac ApiConfig) GetLoggerConfig() logger.LoggerConfig {
	return ac.LoggerConf
}

func (ac ApiConfig) GetRabbitmqConfig() rabbitmq.RabbitmqConfig {
	return ac.RabbitmqConf
}

func (ac ApiConfig) GetRestApiPort() uint16 {
	return ac.RestConf.Port
}

type ApiRestConfigJson struct {
	Port uint16 `json:"port"`
}

type ApiRestConfig struct {
	Port uint16
}

func (arcj ApiRestConfigJson) ConvertToDomain() ApiRestConfig {
	return ApiRestConfig{Port: arcj.Port}
}

type OracleConfigJson struct {
	KeyPath       string `json:"key_path"`
	RegistryOwner string `json:"registry_owner"`
}

type OracleConfig struct {
	KeyPath       string
	RegistryOwner string
}

func (ocj OracleConfigJson) ConvertToDomain() OracleConfig {
	return OracleConfig{
		KeyPath:       ocj.KeyPath,
		RegistryOwner: ocj.RegistryOwner,
	}
}
