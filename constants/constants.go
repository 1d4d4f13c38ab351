package constants

// Loader

const (
	DateFormat              = "2006-01-02"
	TimestampFormat         = "2006-01-02T15:04:05"
	TimeFormatYearSeconds   = "20060102T150405" // used for human readable file names
	TimeFormatYearSecondsTZ = "20060102T150405-0700"
	BatchSizeDefault        = 100
	BatchPauseMillisDefault = 300
	StagedDirDefault        = "Data/Staged"
	FailedBatchFilePrefix   = "failed-rows"
	EmojiBang               = "\U0001F4A5"
	EmojiTick               = "\U00002705"
	EmojiWarn               = "\U000026A0"
	EnvVarPrefix            = "SL" // prefixed for environment variables in twelveFactorMode
	EnvVarStoreUrl          = EnvVarPrefix + "_STORE_URL"
	EnvVarStoreKey          = EnvVarPrefix + "_STORE_KEY"
	EnvVarSupabaseUrl       = "SUPABASE_URL"
	EnvVarSupabaseKey       = "SUPABASE_KEY"
	ConnectionTypePostgrest = "postgrest"
	ConnectionTypeSupabase  = "supabase"
	ConnectionTypePostgres  = "postgres"
	ConnectionTypeSqlServer = "sqlserver"
	ConnectionTypeSnowflake = "snowflake"
	ConnectionTypeS3        = "s3"
	ConnectionNameDefault   = "default"
	OutputFormatText        = "text"
	OutputFormatJson        = "json"
	OutputFormatYaml        = "yaml"
)

// Exit codes.

const (
	ExitCodeSuccess     = 0
	ExitCodeFatal       = 1
	ExitCodePartialLoad = 2
	ExitCodeNothingLoad = 3
)
