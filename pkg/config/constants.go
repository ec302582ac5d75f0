package config

// EnvPrefix is the envconfig prefix shared by every PickSync variable.
const EnvPrefix = "picksync"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (error messages, tests).
const (
	EnvAppEnv   = "PICKSYNC_APP_ENV"
	EnvPort     = "PICKSYNC_APP_PORT"
	EnvDBDSN    = "PICKSYNC_DB_DSN"
	EnvDBHost   = "PICKSYNC_DB_HOST"
	EnvDBUser   = "PICKSYNC_DB_USER"
	EnvDBName   = "PICKSYNC_DB_NAME"
	EnvRedisURL = "PICKSYNC_REDIS_URL"
	EnvERPBase  = "PICKSYNC_ERP_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
