package postgres

import (
	"fmt"
	"strings"

	"github.com/freelancehub/dashboard-backend/config"
)

// DSN returns cfg.DSN when set, otherwise a key/value connection string built
// from the discrete parts. Both lib/pq and pgx accept either form.
func DSN(cfg *config.DatabaseConfig) string {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Name)
	if cfg.Password != "" {
		dsn += " password=" + quote(cfg.Password)
	}
	return dsn
}

// quote escapes a value for the key/value connection string format.
func quote(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
