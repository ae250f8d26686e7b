// containers.go
//
// Matching data service for founders and investors
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of napkins.
// napkins is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// napkins is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with napkins.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"github.com/localnerve/napkins/internal/config"
	"github.com/localnerve/napkins/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const dbNetworkAlias = "db"

// Containers holds a throwaway database, and optionally the service, on a
// private docker network. Config points at the database from the host.
type Containers struct {
	Network      *testcontainers.DockerNetwork
	DBContainer  testcontainers.Container
	AppContainer testcontainers.Container
	Config       *config.Config
	AppURL       string
}

// Terminate stops every container and removes the network.
// t may be nil when run from a standalone command.
func (tc *Containers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.AppContainer != nil {
		if err := tc.AppContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate service: %v", err)
		}
	}
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate database: %v", err)
		}
	}
	if tc.Network != nil {
		if err := tc.Network.Remove(ctx); err != nil {
			logMessage(t, "Failed to remove network: %v", err)
		}
	}
}

// StartContainers starts the database named by DB_TYPE and DB_IMAGE. When
// APP_IMAGE is set and present locally, the service is started against it.
func StartContainers(t *testing.T) (*Containers, error) {
	ctx := context.Background()
	tc := &Containers{}

	dbType := getEnv("DB_TYPE", "mariadb")
	dbImage := os.Getenv("DB_IMAGE")
	if dbImage == "" {
		return nil, fmt.Errorf("DB_IMAGE is required")
	}
	debugContainer := os.Getenv("DEBUG_CONTAINER") == "true"

	nw, err := network.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create network: %w", err)
	}
	tc.Network = nw

	dbPortNumber := getEnv("DB_PORT", defaultPort(dbType))
	tcpDBPort, err := nat.NewPort("tcp", dbPortNumber)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to create DB port: %w", err)
	}

	// Pin the database to a fixed local port for attaching a client while debugging
	hostConfigModifier := func(hostConfig *container.HostConfig) {
		if debugContainer {
			hostConfig.PortBindings = nat.PortMap{
				tcpDBPort: []nat.PortBinding{
					{HostIP: "127.0.0.1", HostPort: dbPortNumber},
				},
			}
		}
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:              dbImage,
			ExposedPorts:       []string{string(tcpDBPort)},
			Env:                dbInitEnv(dbType),
			WaitingFor:         wait.ForListeningPort(tcpDBPort).WithStartupTimeout(90 * time.Second),
			HostConfigModifier: hostConfigModifier,
			Networks:           []string{nw.Name},
			NetworkAliases: map[string][]string{
				nw.Name: {dbNetworkAlias},
			},
		},
		Started: true,
	})
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to start database: %w", err)
	}
	tc.DBContainer = dbContainer

	dbHost, err := dbContainer.Host(ctx)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to get database host: %w", err)
	}
	dbPort, err := dbContainer.MappedPort(ctx, tcpDBPort)
	if err != nil {
		tc.Terminate(t)
		return nil, fmt.Errorf("failed to get database port: %w", err)
	}

	tc.Config = &config.Config{
		DBType:            dbType,
		DBHost:            dbHost,
		DBPort:            dbPort.Port(),
		DBDatabase:        getEnv("DB_DATABASE", "napkins"),
		DBUser:            getEnv("DB_USER", "napkins"),
		DBPassword:        getEnv("DB_PASSWORD", "napkins"),
		DBConnectionLimit: 5,
		DBLogLevel:        "warn",
	}
	logMessage(t, "DB_HOST=%s DB_PORT=%s", dbHost, dbPort.Port())

	if appImage := os.Getenv("APP_IMAGE"); appImage != "" {
		if err := tc.startApp(ctx, t, appImage, dbPortNumber); err != nil {
			tc.Terminate(t)
			return nil, err
		}
	}

	return tc, nil
}

// Connect opens a migrated connection to the containerized database,
// retrying while the server finishes its own startup.
func (tc *Containers) Connect() (*gorm.DB, error) {
	var db *gorm.DB
	var err error
	for i := 0; i < 30; i++ {
		if db, err = database.Connect(tc.Config); err == nil {
			if err = ping(db); err == nil {
				break
			}
			_ = database.Close(db)
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("database not ready after 30 seconds: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return db, nil
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (tc *Containers) startApp(ctx context.Context, t *testing.T, appImage, dbPortNumber string) error {
	exists, err := imageExists(ctx, appImage)
	if err != nil {
		return fmt.Errorf("failed to check if image exists: %w", err)
	}
	if !exists {
		return fmt.Errorf("image %s not found locally, build it first", appImage)
	}

	appPortNumber := getEnv("PORT", "3000")
	tcpAppPort, err := nat.NewPort("tcp", appPortNumber)
	if err != nil {
		return fmt.Errorf("failed to create service port: %w", err)
	}

	appContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        appImage,
			ExposedPorts: []string{string(tcpAppPort)},
			Env: map[string]string{
				"PORT":                appPortNumber,
				"DB_TYPE":             tc.Config.DBType,
				"DB_HOST":             dbNetworkAlias,
				"DB_PORT":             dbPortNumber,
				"DB_DATABASE":         tc.Config.DBDatabase,
				"DB_USER":             tc.Config.DBUser,
				"DB_PASSWORD":         tc.Config.DBPassword,
				"DB_CONNECTION_LIMIT": "5",
				"JWT_SECRET":          os.Getenv("JWT_SECRET"),
				"AUTHZ_URL":           os.Getenv("AUTHZ_URL"),
				"AUTHZ_CLIENT_ID":     os.Getenv("AUTHZ_CLIENT_ID"),
			},
			WaitingFor: wait.ForHTTP("/healthz").WithPort(tcpAppPort).WithStartupTimeout(60 * time.Second),
			Networks:   []string{tc.Network.Name},
		},
		Started: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	tc.AppContainer = appContainer

	appHost, _ := appContainer.Host(ctx)
	appPort, _ := appContainer.MappedPort(ctx, tcpAppPort)
	tc.AppURL = fmt.Sprintf("http://%s:%s", appHost, appPort.Port())
	logMessage(t, "BASE_URL=%s", tc.AppURL)
	return nil
}

func dbInitEnv(dbType string) map[string]string {
	switch dbType {
	case "postgres", "postgresql":
		return map[string]string{
			"POSTGRES_PASSWORD": getEnv("DB_PASSWORD", "napkins"),
			"POSTGRES_USER":     getEnv("DB_USER", "napkins"),
			"POSTGRES_DB":       getEnv("DB_DATABASE", "napkins"),
		}
	default:
		return map[string]string{
			"MYSQL_ROOT_PASSWORD": getEnv("DB_ROOT_PASSWORD", "napkins-root"),
			"MYSQL_DATABASE":      getEnv("DB_DATABASE", "napkins"),
			"MYSQL_USER":          getEnv("DB_USER", "napkins"),
			"MYSQL_PASSWORD":      getEnv("DB_PASSWORD", "napkins"),
		}
	}
}

func defaultPort(dbType string) string {
	switch dbType {
	case "postgres", "postgresql":
		return "5432"
	case "sqlserver", "mssql":
		return "1433"
	}
	return "3306"
}

func imageExists(ctx context.Context, imageName string) (bool, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return false, err
	}
	defer cli.Close()

	images, err := cli.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return false, err
	}

	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == imageName {
				return true, nil
			}
		}
	}
	return false, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
