package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Igor-Vicente/English.Registration.API/pkg/config"
)

func TestDSNEscapesCredentials(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "p@ss word",
		Name:     "english_registration",
		SSLMode:  "disable",
	})
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/english_registration?sslmode=disable", dsn)
}
