package shared

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"furryville_index/internal/domain"
)

// ReaderUser is the read-only database account the index connects as.
const ReaderUser = "fv_index_reader"

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	DBHost      string
	DBPort      string
	DBName      string
	DBPass      string
	HTTPTimeout time.Duration

	// WarpHallStallPages gates /stall/warp-hall/{n}; off by default.
	WarpHallStallPages bool
	MallSchema         domain.MallSchema

	warnings []string
}

// Warnings lists problems found while loading. Load runs before the
// process logger exists, so the caller logs them.
func (c Config) Warnings() []string { return c.warnings }

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	var warns []string
	envBool := func(k string, def bool) bool {
		if v := os.Getenv(k); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return b
			}
			warns = append(warns, fmt.Sprintf("ignoring non-boolean %s=%q", k, v))
		}
		return def
	}
	c := Config{
		AppEnv:             env("APP_ENV", "prod"),
		HTTPAddr:           env("HTTP_ADDR", ":5000"),
		MetricsAddr:        env("METRICS_ADDR", ":9100"),
		DBHost:             env("FV_DB_HOST", "localhost"),
		DBPort:             env("FV_DB_PORT", "3306"),
		DBName:             env("FV_DB_NAME", "furryville_index"),
		DBPass:             os.Getenv("FV_INDEX_READER_PASS"),
		HTTPTimeout:        time.Duration(atoi("HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
		WarpHallStallPages: envBool("FV_WARP_HALL_STALL_PAGES", false),
		MallSchema:         domain.ParseMallSchema(env("FV_MALL_SCHEMA", "auto")),
	}
	if c.DBPass == "" {
		warns = append(warns, "FV_INDEX_READER_PASS is empty")
	}
	c.warnings = warns
	return c
}

// MySQLDSN builds the reader DSN from the configured parts.
func (c Config) MySQLDSN() string {
	m := mysql.NewConfig()
	m.User = ReaderUser
	m.Passwd = c.DBPass
	m.Net = "tcp"
	m.Addr = net.JoinHostPort(c.DBHost, c.DBPort)
	m.DBName = c.DBName
	m.ParseTime = true
	m.Loc = time.UTC
	return m.FormatDSN()
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
