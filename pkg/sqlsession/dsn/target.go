package dsn

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	errMalformedTarget = errors.New("malformed target descriptor")
	errMissingDatabase = errors.New("target descriptor names no database")
)

// Target is a parsed connection descriptor.
type Target struct {
	Dialect Dialect
	Driver  string

	Host     string
	Port     string
	Socket   string
	Database string
	Charset  string
	SSLMode  string

	// Params holds keys without a dedicated field; they are passed to the driver untouched.
	Params map[string]string
}

// Parse reads descriptors such as
//
//	mysql:host=localhost;port=3306;dbname=app;charset=utf8mb4
//	pgsql:host=db.internal;dbname=app;sslmode=disable
//	sqlite:/var/lib/app.db
//	sqlite::memory:
func Parse(target string) (Target, error) {
	prefix, rest, ok := strings.Cut(strings.TrimSpace(target), ":")
	if !ok || prefix == "" {
		return Target{}, fmt.Errorf("%w: %q has no dialect prefix", errMalformedTarget, target)
	}

	dialect, driver, err := NormalizeDialect(prefix)
	if err != nil {
		return Target{}, err
	}

	t := Target{Dialect: dialect, Driver: driver}

	if dialect == SQLite {
		if rest == "" {
			return Target{}, fmt.Errorf("%w: %q", errMissingDatabase, target)
		}

		t.Database = rest

		return t, nil
	}

	if err := t.parsePairs(rest); err != nil {
		return Target{}, fmt.Errorf("%w: %v", errMalformedTarget, err)
	}

	if t.Host == "" && t.Socket == "" {
		t.Host = "localhost"
	}

	return t, nil
}

func (t *Target) parsePairs(rest string) error {
	for _, pair := range strings.Split(rest, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		key, value, ok := strings.Cut(pair, "=")

		key = strings.ToLower(strings.TrimSpace(key))
		if !ok || key == "" {
			return fmt.Errorf("%q is not a key=value pair", pair)
		}

		value = strings.TrimSpace(value)

		switch key {
		case "host":
			t.Host = value
		case "port":
			t.Port = value
		case "unix_socket":
			t.Socket = value
		case "dbname":
			t.Database = value
		case "charset":
			t.Charset = value
		case "sslmode":
			t.SSLMode = value
		default:
			if t.Params == nil {
				t.Params = make(map[string]string)
			}

			t.Params[key] = value
		}
	}

	return nil
}

// DriverName is the name to pass to sql.Open.
func (t Target) DriverName() string {
	return t.Driver
}

// DSN renders the driver specific data source name for the given principal.
func (t Target) DSN(user, password string) string {
	switch t.Dialect {
	case MySQL:
		return t.mysqlDSN(user, password)
	case Postgres:
		return t.postgresDSN(user, password)
	default:
		return t.Database
	}
}

func (t Target) mysqlDSN(user, password string) string {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = password
	cfg.DBName = t.Database

	if t.Socket != "" {
		cfg.Net = "unix"
		cfg.Addr = t.Socket
	} else {
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(t.Host, defaultString(t.Port, "3306"))
	}

	if t.Charset != "" {
		_ = cfg.Apply(mysql.Charset(t.Charset, ""))
	}

	if len(t.Params) > 0 {
		cfg.Params = make(map[string]string, len(t.Params))
		for k, v := range t.Params {
			cfg.Params[k] = v
		}
	}

	return cfg.FormatDSN()
}

func (t Target) postgresDSN(user, password string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(t.Host, defaultString(t.Port, "5432")),
		Path:   "/" + t.Database,
	}

	switch {
	case password != "":
		u.User = url.UserPassword(user, password)
	case user != "":
		u.User = url.User(user)
	}

	q := url.Values{}
	for k, v := range t.Params {
		q.Set(k, v)
	}

	if t.SSLMode != "" {
		q.Set("sslmode", t.SSLMode)
	}

	if t.Socket != "" {
		q.Set("host", t.Socket)
	}

	if t.Charset != "" {
		q.Set("client_encoding", t.Charset)
	}

	u.RawQuery = q.Encode()

	return u.String()
}

// String renders the descriptor back in its canonical form, without credentials.
func (t Target) String() string {
	if t.Dialect == SQLite {
		return string(t.Dialect) + ":" + t.Database
	}

	pairs := make([]string, 0, 6+len(t.Params))

	add := func(k, v string) {
		if v != "" {
			pairs = append(pairs, k+"="+v)
		}
	}

	add("host", t.Host)
	add("port", t.Port)
	add("unix_socket", t.Socket)
	add("dbname", t.Database)
	add("charset", t.Charset)
	add("sslmode", t.SSLMode)

	keys := make([]string, 0, len(t.Params))
	for k := range t.Params {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		add(k, t.Params[k])
	}

	prefix := string(t.Dialect)
	if t.Driver == driverPgx {
		prefix = driverPgx
	}

	return prefix + ":" + strings.Join(pairs, ";")
}

// Address is host:port, the socket path, or the sqlite file, used to label logs and metrics.
func (t Target) Address() string {
	switch {
	case t.Dialect == SQLite:
		return t.Database
	case t.Socket != "":
		return t.Socket
	case t.Port != "":
		return net.JoinHostPort(t.Host, t.Port)
	default:
		return t.Host
	}
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}

	return v
}
