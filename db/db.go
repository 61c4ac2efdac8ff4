package db

import (
	"context"
	"database/sql/driver"
	"encoding/json"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"

	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

//go:generate mockgen -destination datasource_mock.go -package db . DataSource
// DataSource delivers one graph universe to the engine: the content nodes
// and the raw, un-consolidated relationships between them.
type DataSource interface {
	Load(ctx context.Context) ([]model.ContentNode, []model.RawLink, error)
}

// Payload is the opaque per-node content blob, stored as jsonb.
type Payload map[string]interface{}

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal payload")
	}
	return string(raw), nil
}

func (p *Payload) Scan(value interface{}) error {
	if value == nil {
		*p = Payload{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.Errorf("cannot scan %T into Payload", value)
	}
	return errors.Wrap(json.Unmarshal(raw, p), "failed to unmarshal payload")
}

type Config struct {
	PGHost     string `env:"DB_POSTGRES_HOST" envDefault:"localhost"`
	PGPort     int    `env:"DB_POSTGRES_PORT" envDefault:"5432"`
	PGUser     string `env:"DB_POSTGRES_USER" envDefault:"zer0"`
	PGPassword string `env:"DB_POSTGRES_PASSWORD" envDefault:"example"`
	PGDatabase string `env:"DB_POSTGRES_DB" envDefault:"zer0graph"`
}

func GetEnvConfig() Config {
	conf := Config{}
	env.Parse(&conf)
	return conf
}
