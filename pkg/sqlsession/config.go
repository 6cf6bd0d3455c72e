package sqlsession

import (
	"context"
	"strings"

	"github.com/sllt/sqlsession/pkg/sqlsession/config"
)

// DBConfig is the connection described by the DB_* configuration keys.
type DBConfig struct {
	Dialect  string `config:"DB_DIALECT" validate:"required,oneof=mysql mariadb postgres postgresql pgsql cockroachdb pgx sqlite sqlite3"`
	HostName string `config:"DB_HOST" validate:"omitempty,hostname_rfc1123|ip"`
	User     string `config:"DB_USER"`
	Password string `config:"DB_PASSWORD"`
	Port     string `config:"DB_PORT" validate:"omitempty,numeric"`
	Database string `config:"DB_NAME" validate:"required"`
	SSLMode  string `config:"DB_SSL_MODE" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	Charset  string `config:"DB_CHARSET" validate:"omitempty,alphanum"`
}

func getDBConfig(c config.Config) *DBConfig {
	return &DBConfig{
		Dialect:  strings.ToLower(c.GetOrDefault("DB_DIALECT", "mysql")),
		HostName: c.GetOrDefault("DB_HOST", "localhost"),
		User:     c.Get("DB_USER"),
		Password: c.Get("DB_PASSWORD"),
		Port:     c.Get("DB_PORT"),
		Database: c.Get("DB_NAME"),
		SSLMode:  c.Get("DB_SSL_MODE"),
		Charset:  c.Get("DB_CHARSET"),
	}
}

// Validate returns a *ValidationError naming every invalid field by its configuration key.
func (c *DBConfig) Validate() error {
	return validateStruct(c)
}

// Target renders the configuration as a connection target descriptor.
func (c *DBConfig) Target() string {
	if c.Dialect == "sqlite" || c.Dialect == "sqlite3" {
		return c.Dialect + ":" + c.Database
	}

	pairs := []string{"host=" + c.HostName}

	if c.Port != "" {
		pairs = append(pairs, "port="+c.Port)
	}

	pairs = append(pairs, "dbname="+c.Database)

	if c.Charset != "" {
		pairs = append(pairs, "charset="+c.Charset)
	}

	if c.SSLMode != "" {
		pairs = append(pairs, "sslmode="+c.SSLMode)
	}

	return c.Dialect + ":" + strings.Join(pairs, ";")
}

// FromConfig opens a Session on the connection described by the DB_DIALECT, DB_HOST, DB_PORT,
// DB_USER, DB_PASSWORD, DB_NAME, DB_SSL_MODE and DB_CHARSET keys of cfg.
func FromConfig(ctx context.Context, cfg config.Config, opts ...Option) (*Session, error) {
	dbc := getDBConfig(cfg)

	if err := dbc.Validate(); err != nil {
		return nil, newError(KindConnection, "open", err)
	}

	return Open(ctx, dbc.Target(), dbc.User, dbc.Password, opts...)
}
