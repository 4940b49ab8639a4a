package db

import (
	"fmt"
	"net/url"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresParams struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (p PostgresParams) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(p.User, p.Password),
		Host:     p.Host + ":" + p.Port,
		Path:     "/" + p.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func openPostgres(cfg Config) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(cfg.DSN), gormConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return conn, nil
}
