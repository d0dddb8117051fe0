package config

// EnvPrefix scopes all envconfig lookups.
const EnvPrefix = "WAREHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "WAREHUB_APP_ENV"
	EnvDBDSN  = "WAREHUB_DB_DSN"
	EnvDBHost = "WAREHUB_DB_HOST"
	EnvDBUser = "WAREHUB_DB_USER"
	EnvDBName = "WAREHUB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
