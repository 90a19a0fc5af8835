package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "SIPUPUK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "SIPUPUK_APP_ENV"
	EnvPort                   = "SIPUPUK_APP_PORT"
	EnvDBDSN                  = "SIPUPUK_DB_DSN"
	EnvDBHost                 = "SIPUPUK_DB_HOST"
	EnvDBUser                 = "SIPUPUK_DB_USER"
	EnvDBName                 = "SIPUPUK_DB_NAME"
	EnvRedisURL               = "SIPUPUK_REDIS_URL"
	EnvJWTSecret              = "SIPUPUK_JWT_SECRET"
	EnvJWTIssuer              = "SIPUPUK_JWT_ISSUER"
	EnvJWTExpMins             = "SIPUPUK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SIPUPUK_REFRESH_TOKEN_TTL_MINUTES"
)

// legacyDBEnvVars are the discrete connection variables accepted when no
// full DSN is provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
