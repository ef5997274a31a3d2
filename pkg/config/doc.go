// Package config loads denoid configuration from DENOID_* environment
// variables with defaults, and validates it before the server starts.
//
// # Server
//
//	DENOID_HOST="0.0.0.0"
//	DENOID_PORT="8080"
//	DENOID_HEALTH_PORT="9090"
//	DENOID_CORS_ORIGINS="https://denoland.id"
//
// # Module source
//
//	DENOID_PROVIDER="airtable"   # airtable, sql, file
//	DENOID_AIRTABLE_TOKEN="..."
//	DENOID_AIRTABLE_BASE_ID="app..."
//	DENOID_AIRTABLE_TABLE="modules"
//	DENOID_SQL_DRIVER="postgres" # postgres, sqlite3
//	DENOID_SQL_DSN="postgres://..."
//	DENOID_FILE_PATH="modules.yaml"
//
// # Snapshots
//
//	DENOID_SNAPSHOT_INTERVAL="10s"
//	DENOID_FETCH_TIMEOUT="30s"
//	DENOID_MAX_STALENESS="10m"  # 0 disables the readiness staleness check
//	DENOID_STORE="none"         # none, file, redis, s3
//	DENOID_STORE_FILE="/var/lib/denoid/snapshot.json"
//	DENOID_REDIS_URL="redis://localhost:6379/0"
//	DENOID_S3_BUCKET="denoid"
//
// # Site and observability
//
//	DENOID_SITE_CONFIG="site.yaml"
//	DENOID_LOG_LEVEL="info"
//	DENOID_OTEL_ENABLED="false"
//	DENOID_OTEL_ENDPOINT="localhost:4317"
package config
