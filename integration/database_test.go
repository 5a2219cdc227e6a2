//go:build database

// Package integration contains integration tests for polyscan.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags database ./integration
package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPolyscanWithMySQL tests the polyscan CLI with a MySQL backend.
func TestPolyscanWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "polyscan",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/polyscan?parseTime=true", host, port.Port())

	// Set environment variables
	_ = os.Setenv("POLYSCAN_CACHE_BACKEND", "mysql")
	_ = os.Setenv("POLYSCAN_CACHE_DB_CONNECT", connStr)
	_ = os.Setenv("POLYSCAN_RUNS_BACKEND", "mysql")
	_ = os.Setenv("POLYSCAN_RUNS_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("POLYSCAN_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("POLYSCAN_CACHE_DB_CONNECT") }()
	defer func() { _ = os.Unsetenv("POLYSCAN_RUNS_BACKEND") }()
	defer func() { _ = os.Unsetenv("POLYSCAN_RUNS_DB_CONNECT") }()

	project := writeSampleProject(t)

	// Run polyscan cache clear
	err = runPolyscanCommand(t, "cache", "clear")
	require.NoError(t, err)

	// Run polyscan runs clear
	err = runPolyscanCommand(t, "runs", "clear")
	require.NoError(t, err)

	// Run polyscan languages on the sample project
	err = runPolyscanCommand(t, "languages", project)
	require.NoError(t, err)

	// Run polyscan deps on the sample project
	err = runPolyscanCommand(t, "deps", project)
	require.NoError(t, err)

	// Run polyscan cache status
	err = runPolyscanCommand(t, "cache", "status")
	require.NoError(t, err)

	// Run polyscan runs status
	err = runPolyscanCommand(t, "runs", "status")
	require.NoError(t, err)
}

// TestPolyscanWithPostgres tests the polyscan CLI with a PostgreSQL backend.
func TestPolyscanWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	// Set environment variables
	_ = os.Setenv("POLYSCAN_CACHE_BACKEND", "postgresql")
	_ = os.Setenv("POLYSCAN_CACHE_DB_CONNECT", connStr)
	_ = os.Setenv("POLYSCAN_RUNS_BACKEND", "postgresql")
	_ = os.Setenv("POLYSCAN_RUNS_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("POLYSCAN_CACHE_BACKEND") }()
	defer func() { _ = os.Unsetenv("POLYSCAN_CACHE_DB_CONNECT") }()
	defer func() { _ = os.Unsetenv("POLYSCAN_RUNS_BACKEND") }()
	defer func() { _ = os.Unsetenv("POLYSCAN_RUNS_DB_CONNECT") }()

	project := writeSampleProject(t)

	// Run polyscan cache clear
	err = runPolyscanCommand(t, "cache", "clear")
	require.NoError(t, err)

	// Run polyscan runs clear
	err = runPolyscanCommand(t, "runs", "clear")
	require.NoError(t, err)

	// Run polyscan runs migrate to latest
	err = runPolyscanCommand(t, "runs", "migrate")
	require.NoError(t, err)

	// Run polyscan languages on the sample project
	err = runPolyscanCommand(t, "languages", project)
	require.NoError(t, err)

	// Run polyscan deps on the sample project
	err = runPolyscanCommand(t, "deps", project)
	require.NoError(t, err)

	// Run polyscan cache status
	err = runPolyscanCommand(t, "cache", "status")
	require.NoError(t, err)

	// Run polyscan runs status
	err = runPolyscanCommand(t, "runs", "status")
	require.NoError(t, err)
}

// runPolyscanCommand runs the polyscan CLI with the given arguments.
func runPolyscanCommand(t *testing.T, args ...string) error {
	polyscanPath := getPolyscanBinary()
	cmd := exec.Command(polyscanPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
