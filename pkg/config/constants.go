package config

const (
	// EnvPrefix is intentionally empty; every field names its variable
	// explicitly via envconfig tags.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)
