package config

// EnvPrefix is passed to envconfig; individual tags carry the full names so it
// stays empty here.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "KRISHIMITRA_DB_DSN"
	EnvDBHost = "KRISHIMITRA_DB_HOST"
	EnvDBUser = "KRISHIMITRA_DB_USER"
	EnvDBName = "KRISHIMITRA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
