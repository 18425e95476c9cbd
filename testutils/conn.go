package testutils

import (
	"os"
	"testing"
)

// PGConnStr returns the PostgreSQL instance used by integration tests,
// skipping the test if none is configured.
func PGConnStr(t *testing.T) string {
	pgInstanceURL, ok := os.LookupEnv("POSTGRES_URL")
	if !ok {
		t.Skip("POSTGRES_URL not set")
	}
	return pgInstanceURL
}

// MySQLConnStr returns the MySQL instance used by integration tests,
// skipping the test if none is configured.
func MySQLConnStr(t *testing.T) string {
	mysqlInstanceURL, ok := os.LookupEnv("MYSQL_URL")
	if !ok {
		t.Skip("MYSQL_URL not set")
	}
	return mysqlInstanceURL
}
