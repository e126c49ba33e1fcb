package datasource

import (
	"fmt"
	"net/url"
	"os"
	"sync"
)

// Supported database types.
const (
	TypePostgres  = "postgres"
	TypeSQLServer = "sqlserver"
)

// Config contains the connection settings of the queried database.
type Config struct {
	Type         string
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
}

// DriverName returns the database/sql driver registered for the type.
func (c *Config) DriverName() (string, error) {
	switch c.Type {
	case TypePostgres, "":
		return "pgx", nil
	case TypeSQLServer:
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("unsupported database type %q", c.Type)
	}
}

// DSN builds the connection URL for the type.
func (c *Config) DSN() (string, error) {
	host := resolveHost(c.Host, runningInDocker())

	switch c.Type {
	case TypePostgres, "":
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", host, c.Port),
			Path:     "/" + c.Database,
			RawQuery: url.Values{"sslmode": {sslMode}}.Encode(),
		}
		return u.String(), nil
	case TypeSQLServer:
		query := url.Values{}
		query.Add("database", c.Database)
		if c.SSLMode == "disable" {
			query.Add("encrypt", "disable")
		}
		u := url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(c.User, c.Password),
			Host:     fmt.Sprintf("%s:%d", host, c.Port),
			RawQuery: query.Encode(),
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("unsupported database type %q", c.Type)
	}
}

var (
	dockerOnce   sync.Once
	dockerResult bool
)

// runningInDocker reports whether /.dockerenv exists. The result is cached.
func runningInDocker() bool {
	dockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		dockerResult = err == nil
	})
	return dockerResult
}

// resolveHost maps loopback hosts to host.docker.internal inside a container
// so a database on the Docker host stays reachable.
func resolveHost(host string, inDocker bool) string {
	if inDocker && (host == "localhost" || host == "127.0.0.1") {
		return "host.docker.internal"
	}
	return host
}
