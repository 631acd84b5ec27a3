package app

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/guttosm/tradesummary/config"
)

func pgConfig() config.Config {
	return config.Config{Postgres: config.PostgresConfig{
		User: "reader", Password: "p@ss/word", Host: "db", Port: 5433, DBName: "trades", SSLMode: "disable",
		MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxIdleTime: time.Minute,
	}}
}

func TestInitPostgres(t *testing.T) {
	cases := []struct {
		name    string
		openErr error
		pingErr error
		wantErr string
	}{
		{name: "connected"},
		{name: "open fails", openErr: errors.New("open failed"), wantErr: "failed to open postgres"},
		{name: "ping fails", pingErr: errors.New("ping failed"), wantErr: "failed to ping postgres db:5433/trades"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotDriver, gotDSN string
			var mock sqlmock.Sqlmock
			old := sqlOpener
			sqlOpener = func(driverName, dataSourceName string) (*sql.DB, error) {
				gotDriver, gotDSN = driverName, dataSourceName
				if tc.openErr != nil {
					return nil, tc.openErr
				}
				db, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
				if err != nil {
					t.Fatalf("sqlmock new: %v", err)
				}
				mock = m
				m.ExpectPing().WillReturnError(tc.pingErr)
				if tc.pingErr != nil {
					m.ExpectClose()
				}
				return db, nil
			}
			t.Cleanup(func() { sqlOpener = old })

			db, err := InitPostgres(pgConfig())
			if gotDriver != "postgres" || gotDSN != pgConfig().Postgres.DSN() {
				t.Fatalf("opened %s %q", gotDriver, gotDSN)
			}
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) || db != nil {
					t.Fatalf("want %q, got db=%v err=%v", tc.wantErr, db, err)
				}
				if mock != nil {
					if err := mock.ExpectationsWereMet(); err != nil {
						t.Fatalf("handle not closed after failed ping: %v", err)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("InitPostgres: %v", err)
			}
			defer func() { _ = db.Close() }()
			if got := db.Stats().MaxOpenConnections; got != 7 {
				t.Fatalf("max open conns: got %d want 7", got)
			}
		})
	}
}
