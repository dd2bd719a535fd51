package config

const EnvPrefix = "QUADRAMALL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "QUADRAMALL_APP_ENV"
	EnvPort   = "QUADRAMALL_APP_PORT"

	EnvCORSAllowedOrigins = "QUADRAMALL_CORS_ALLOWED_ORIGINS"

	EnvDBDSN  = "QUADRAMALL_DB_DSN"
	EnvDBHost = "QUADRAMALL_DB_HOST"
	EnvDBUser = "QUADRAMALL_DB_USER"
	EnvDBName = "QUADRAMALL_DB_NAME"

	EnvRedisURL = "QUADRAMALL_REDIS_URL"

	EnvJWTSecret = "QUADRAMALL_JWT_SECRET"
	EnvJWTIssuer = "QUADRAMALL_JWT_ISSUER"

	EnvCartViewCacheTTL = "QUADRAMALL_CART_VIEW_CACHE_TTL"
	EnvCartItemLockTTL  = "QUADRAMALL_CART_ITEM_LOCK_TTL"

	EnvGCPProjectID     = "QUADRAMALL_GCP_PROJECT_ID"
	EnvPubSubCatalogSub = "QUADRAMALL_PUBSUB_CATALOG_SUBSCRIPTION"

	EnvStorefrontAPIBaseURL = "QUADRAMALL_STOREFRONT_API_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
