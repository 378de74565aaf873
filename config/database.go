package config

import "fmt"

// Database selects one of the supported relational backends and its
// connection parameters. Path applies to sqlite only.
type Database struct {
	Connector string `mapstructure:"connector"` // "postgres", "mysql" or "sqlite"
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	User      string `mapstructure:"user"`
	Password  string `mapstructure:"password"`
	DBName    string `mapstructure:"dbname"`
	SSLMode   string `mapstructure:"sslmode"`
	Path      string `mapstructure:"path"`
}

// DSN renders the connector-specific connection string.
func (d Database) DSN() string {
	switch d.Connector {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, sslMode,
		)
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName,
		)
	case "sqlite":
		return d.Path
	default:
		return ""
	}
}
