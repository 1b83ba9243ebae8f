package config

const EnvPrefix = "BOOSTHQ"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
