package config

const (
	// EnvPrefix scopes every environment variable read by Load.
	EnvPrefix = "LAUNDRYEASE"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "LAUNDRYEASE_APP_ENV"
	EnvDBDSN  = "LAUNDRYEASE_DB_DSN"
	EnvDBHost = "LAUNDRYEASE_DB_HOST"
	EnvDBUser = "LAUNDRYEASE_DB_USER"
	EnvDBName = "LAUNDRYEASE_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
