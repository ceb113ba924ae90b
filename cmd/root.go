package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/zigchain/dex-analytics/internal/cache"
	"github.com/zigchain/dex-analytics/internal/repository"
	"github.com/zigchain/dex-analytics/internal/repository/pg"
	"github.com/zigchain/dex-analytics/internal/repository/sqlite"
)

var (
	flagVerbose     *bool
	flagNatsUrls    *string
	flagUserCreds   *string
	flagNkey        *string
	flagNatsAccNkey *string
	flagJWT         *string
	flagPrefixName  *string

	flagDbHost     *string
	flagDbPort     *uint
	flagDbUser     *string
	flagDbPassword *string
	flagDbName     *string

	flagRedisAddr     *string
	flagRedisPassword *string
	flagRedisDb       *int
	flagCacheTTL      *time.Duration

	natsConnection *nats.Conn
	database       *repository.Repository
	summaryCache   *cache.SummaryCache
)

func setErrorHandlers(conn *nats.Conn) {
	if conn == nil {
		return
	}

	conn.SetErrorHandler(func(c *nats.Conn, s *nats.Subscription, err error) {
		slog.Error("NATS error", "err", err)
	})
	conn.SetDisconnectHandler(func(c *nats.Conn) {
		slog.Error("NATS disconnected", "err", c.LastError())
	})
}

var rootCmd = &cobra.Command{
	Use:   "dex-analytics",
	Short: "",
	Long:  ``,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if *flagVerbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}

		// Sacrifice some security for the sake of user experience by allowing to
		// supply NATS account NKey instead of passing created user NKey and user JWS.
		if *flagNatsAccNkey != "" {
			nkey, jwt, err := CreateUser(*flagNatsAccNkey)
			flagNkey = nkey
			flagJWT = jwt

			if err != nil {
				panic(fmt.Errorf("failed to generate user JWT: %w", err))
			}
		}

		conn, err := makeNats("ZIGChain DEX Analytics", *flagNatsUrls, *flagUserCreds, *flagNkey, *flagJWT)
		if err != nil {
			panic(fmt.Errorf("failed to connect to NATS %s: %w", *flagNatsUrls, err))
		}
		natsConnection = conn
		setErrorHandlers(conn)

		var db *gorm.DB
		if *flagDbName == "sqlite" {
			db, err = sqlite.New(*flagDbHost)
			if err != nil {
				panic(err)
			}
		} else {
			db, err = pg.New(*flagDbHost, *flagDbPort, *flagDbUser, *flagDbPassword, *flagDbName)
			if err != nil {
				panic(err)
			}
		}
		repo, err := repository.New(db, slog.Default())
		if err != nil {
			panic(err)
		}
		database = repo

		if *flagRedisAddr != "" {
			summaryCache = cache.New(*flagRedisAddr, *flagRedisPassword, *flagRedisDb, *flagCacheTTL)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if natsConnection != nil {
			natsConnection.Close()
		}
		if summaryCache != nil {
			summaryCache.Close()
		}
		if database != nil {
			database.Close()
		}
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	const (
		PUBLISHER_PREFIX = "PREFIX"
		DB_HOST          = "DB_HOST"
		DB_PORT          = "DB_PORT"
		DB_USER          = "DB_USER"
		DB_PASSWORD      = "DB_PASSW"
		DB_NAME          = "DB_NAME"
		REDIS_ADDR       = "REDIS_ADDR"
		REDIS_PASSWORD   = "REDIS_PASSW"
		REDIS_DB         = "REDIS_DB"
		CACHE_TTL        = "CACHE_TTL"
	)
	setDefault(PUBLISHER_PREFIX, "zigchain")
	setDefault(DB_HOST, "postgres")
	setDefault(DB_PORT, "5432")
	setDefault(DB_USER, "dexstats_user")
	setDefault(DB_NAME, "dexstats")

	flagNatsUrls = rootCmd.PersistentFlags().StringP("nats-url", "n", os.Getenv("NATS_URL"), "NATS server URLs (separated by comma)")
	flagNatsAccNkey = rootCmd.PersistentFlags().StringP("nats-acc-nkey", "", os.Getenv("NATS_ACC_NKEY"), "NATS account NKey (seed)")
	flagUserCreds = rootCmd.PersistentFlags().StringP("nats-creds", "c", os.Getenv("NATS_CREDS"), "NATS User Credentials File (combined JWT and NKey file) ")
	flagJWT = rootCmd.PersistentFlags().StringP("nats-jwt", "w", os.Getenv("NATS_JWT"), "NATS JWT")
	flagNkey = rootCmd.PersistentFlags().StringP("nats-nkey", "k", os.Getenv("NATS_NKEY"), "NATS NKey")

	flagDbHost = rootCmd.PersistentFlags().StringP("db-host", "", os.Getenv(DB_HOST), "Database Host (filepath in case of `sqlite` `db-name`)")

	envPort := os.Getenv(DB_PORT)
	port, err := strconv.ParseUint(envPort, 10, 64)
	if err != nil {
		port = 5432
		slog.Warn("Bad database port format, switching to default", "error", err, "port", port)
	}

	flagDbPort = rootCmd.PersistentFlags().UintP("db-port", "", uint(port), "Database Port")
	flagDbUser = rootCmd.PersistentFlags().StringP("db-user", "", os.Getenv(DB_USER), "Database User")
	flagDbName = rootCmd.PersistentFlags().StringP("db-name", "", os.Getenv(DB_NAME), "Database Name (specify `sqlite` for SQLite database)")
	flagDbPassword = rootCmd.PersistentFlags().StringP("db-passw", "", os.Getenv(DB_PASSWORD), "Database Password")

	flagRedisAddr = rootCmd.PersistentFlags().StringP("redis-addr", "", os.Getenv(REDIS_ADDR), "Redis address for the summary cache (empty disables caching)")
	flagRedisPassword = rootCmd.PersistentFlags().StringP("redis-passw", "", os.Getenv(REDIS_PASSWORD), "Redis password")

	envRedisDb := os.Getenv(REDIS_DB)
	redisDb := 0
	if envRedisDb != "" {
		redisDb, err = strconv.Atoi(envRedisDb)
		if err != nil {
			redisDb = 0
			slog.Warn("Bad redis db format, switching to default", "error", err, "db", redisDb)
		}
	}
	flagRedisDb = rootCmd.PersistentFlags().IntP("redis-db", "", redisDb, "Redis database number")

	envCacheTTL := os.Getenv(CACHE_TTL)
	cacheTTL := time.Minute * 5
	if envCacheTTL != "" {
		cacheTTL, err = time.ParseDuration(envCacheTTL)
		if err != nil {
			cacheTTL = time.Minute * 5
			slog.Warn("Invalid format for CACHE_TTL environment variable.", "error", err, "default", cacheTTL)
		}
	}
	flagCacheTTL = rootCmd.PersistentFlags().DurationP("cache-ttl", "", cacheTTL, "Summary cache entry TTL")

	flagPrefixName = rootCmd.PersistentFlags().StringP("prefix", "", os.Getenv(PUBLISHER_PREFIX), "NATS topic prefix name as in {prefix}.summary.{token_id}")

	_, verbosePresent := os.LookupEnv("VERBOSE")

	flagVerbose = rootCmd.PersistentFlags().BoolP("verbose", "v", verbosePresent, "Verbose output")
}
