package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/admission-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "adm", Password: "secret", Name: "catalog", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=adm password=secret dbname=catalog sslmode=disable", dsn)
}
