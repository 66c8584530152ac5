package config

// EnvPrefix is passed to envconfig; every variable is also fully qualified
// in its struct tag, so the prefix mainly guards against typos in new fields.
const EnvPrefix = "greenbasket"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "GREENBASKET_DB_DSN"
	EnvDBHost = "GREENBASKET_DB_HOST"
	EnvDBUser = "GREENBASKET_DB_USER"
	EnvDBName = "GREENBASKET_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
