package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides of the database file, e.g.
// CSVETL_DB_PASSWORD.
const EnvPrefix = "CSVETL_DB"

// Database holds connection parameters for the target database.
type Database struct {
	Driver   string            `mapstructure:"driver" json:"driver"`
	Host     string            `mapstructure:"host" json:"host"`
	Port     int               `mapstructure:"port" json:"port"`
	User     string            `mapstructure:"user" json:"user"`
	Password string            `mapstructure:"password" json:"password"`
	Database string            `mapstructure:"database" json:"database"`
	SSLMode  string            `mapstructure:"sslmode" json:"sslmode"`
	Params   map[string]string `mapstructure:"params" json:"params"`
}

// defaultPorts by driver.
var defaultPorts = map[string]int{
	"postgres": 5432,
	"mysql":    3306,
	"mssql":    1433,
}

// Addr returns host:port with the driver default port filled in.
func (d Database) Addr() string {
	port := d.Port
	if port == 0 {
		port = defaultPorts[d.Driver]
	}
	if port == 0 {
		return d.Host
	}
	return d.Host + ":" + strconv.Itoa(port)
}

// String describes the connection without the password, for logs.
func (d Database) String() string {
	if d.Driver == "sqlite" {
		return "sqlite:" + d.Database
	}
	var b strings.Builder
	b.WriteString(d.Driver)
	b.WriteString("://")
	if d.User != "" {
		b.WriteString(d.User)
		b.WriteByte('@')
	}
	b.WriteString(d.Addr())
	b.WriteByte('/')
	b.WriteString(d.Database)
	return b.String()
}

// LoadDatabase reads the database file at path. Values can be overridden by
// CSVETL_DB_<KEY> environment variables; the legacy key "dbname" is accepted
// for "database".
func LoadDatabase(path string) (Database, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	// Precedence: env vars > config file > defaults. Defaults are set for
	// every key so AutomaticEnv knows which variables to look up.
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("driver", "postgres")
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 0)
	v.SetDefault("user", "")
	v.SetDefault("password", "")
	v.SetDefault("database", "")
	v.SetDefault("sslmode", "disable")

	if err := v.ReadInConfig(); err != nil {
		return Database{}, fmt.Errorf("read database config %s: %w", path, err)
	}
	// Registered after reading so a "dbname" key in the file is moved over.
	v.RegisterAlias("dbname", "database")

	var db Database
	if err := v.Unmarshal(&db); err != nil {
		return Database{}, fmt.Errorf("decode database config %s: %w", path, err)
	}
	db.Driver = strings.ToLower(strings.TrimSpace(db.Driver))
	return db, nil
}

// ValidateDatabase returns configuration issues for d.
func ValidateDatabase(d Database) []Issue {
	var issues []Issue

	switch d.Driver {
	case "postgres", "mysql", "mssql":
		if strings.TrimSpace(d.Host) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "host",
				Message:  "host must not be empty",
			})
		}
		if strings.TrimSpace(d.User) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "user",
				Message:  "user must not be empty",
			})
		}
	case "sqlite":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "driver",
			Message:  fmt.Sprintf("unsupported driver %q; use postgres, mysql, mssql or sqlite", d.Driver),
		})
	}

	if strings.TrimSpace(d.Database) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "database",
			Message:  "database must not be empty",
		})
	}
	if d.Port < 0 || d.Port > 65535 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "port",
			Message:  fmt.Sprintf("port %d out of range", d.Port),
		})
	}
	if d.Driver == "postgres" && d.Password == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "password",
			Message:  "password is empty; set it in the file or via " + EnvPrefix + "_PASSWORD",
		})
	}

	return issues
}
