package server

import (
	"github.com/xiaoyuanzhu-com/todos/config"
	"github.com/xiaoyuanzhu-com/todos/db"
	"github.com/xiaoyuanzhu-com/todos/session"
	"github.com/xiaoyuanzhu-com/todos/workers/sweeper"
)

// toDBConfig converts app config to database config
func toDBConfig(c *config.Config) db.Config {
	return db.Config{
		Path:            c.DatabasePath,
		Driver:          c.DBDriver,
		MaxOpenConns:    1, // single writer
		MaxIdleConns:    1,
		ConnMaxLifetime: 0, // Never expire
		LogQueries:      c.DBLogQueries,
	}
}

// toSessionConfig converts app config to session cookie settings
func toSessionConfig(c *config.Config) session.Config {
	return session.Config{
		CookieName: c.SessionCookieName,
		MaxAge:     c.SessionMaxAge,
		Secure:     c.SessionSecure,
	}
}

func toSweeperConfig(c *config.Config) sweeper.Config {
	return sweeper.Config{Interval: c.SessionSweepInterval}
}
