package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRESQL_REPLICAS", "host=r1 dbname=a,host=r2 dbname=a")

	require.NoError(t, Load())

	assert.Equal(t, "3000", Cfg.ServerPort)
	assert.Equal(t, "console", Cfg.MailTransport)
	assert.Equal(t, 3, Cfg.MailMaxAttempts)
	assert.Equal(t, []string{"host=r1 dbname=a", "host=r2 dbname=a"}, Cfg.PostgreSQLReplicas)
}

func TestValidate(t *testing.T) {
	valid := Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		MailTransport:    "console",
		MailMaxAttempts:  3,
		AppTimezone:      "UTC",
	}
	assert.NoError(t, valid.Validate())

	t.Run("missing secrets", func(t *testing.T) {
		c := valid
		c.JWTSecret = ""
		c.JWTRefreshSecret = "short"
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
		assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
	})

	t.Run("smtp without host", func(t *testing.T) {
		c := valid
		c.MailTransport = "smtp"
		assert.Error(t, c.Validate())
	})

	t.Run("unknown transport", func(t *testing.T) {
		c := valid
		c.MailTransport = "ethereal"
		assert.Error(t, c.Validate())
	})

	t.Run("bad timezone", func(t *testing.T) {
		c := valid
		c.AppTimezone = "Mars/Olympus"
		assert.Error(t, c.Validate())
	})
}

func TestLocation(t *testing.T) {
	c := Config{AppTimezone: "Local"}
	loc, err := c.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	c.AppTimezone = "Asia/Shanghai"
	loc, err = c.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Shanghai", loc.String())
}

func TestGetMigrationURL(t *testing.T) {
	c := Config{
		PostgreSQLUser:     "u",
		PostgreSQLPassword: "p",
		PostgreSQLHost:     "db",
		PostgreSQLPort:     "5432",
		PostgreSQLDatabase: "attendly",
		PostgreSQLSSLMode:  "disable",
		PostgreSQLSchema:   "public",
	}
	assert.Equal(t, "postgres://u:p@db:5432/attendly?sslmode=disable&search_path=public", c.GetMigrationURL())
}
