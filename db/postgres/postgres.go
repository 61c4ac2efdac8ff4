package postgres

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rob-hayward/zer0-graph-engine/db"
	"github.com/rob-hayward/zer0-graph-engine/graph/model"
)

// Node is one row of user content. NodeID is the natural key the engine
// works with; the numeric gorm ID stays internal to the store.
type Node struct {
	gorm.Model
	NodeID  string     `gorm:"uniqueIndex;not null"`
	Kind    string     `gorm:"type:text;not null"`
	Payload db.Payload `gorm:"type:jsonb;default:'{}';not null"`
}

type VoteKind string

const (
	VoteKindInclusion VoteKind = "inclusion"
	VoteKindContent   VoteKind = "content"
)

// Vote is one user's +1/-1 on a node. Net counts are aggregated at load
// time, never stored.
type Vote struct {
	gorm.Model
	NodeID uint
	Node   Node `gorm:"constraint:OnDelete:CASCADE;not null"`
	UserID uint
	Kind   VoteKind `gorm:"type:text;not null"`
	Value  int      `gorm:"not null"`
}

type Relationship struct {
	gorm.Model
	FromID uint   `gorm:"index:noDuplicateRelationships,unique;"`
	ToID   uint   `gorm:"index:noDuplicateRelationships,unique;"`
	Kind   string `gorm:"index:noDuplicateRelationships,unique;type:text;not null"`
	From   Node   `gorm:"constraint:OnDelete:CASCADE;not null"`
	To     Node   `gorm:"constraint:OnDelete:CASCADE;not null"`
}

func NewPostgresDB(conf db.Config) (*PostgresDB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{
		DSN: dsn(conf),
	}), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to postgres")
	}
	pg := &PostgresDB{db: gdb}
	return pg, pg.init()
}

func dsn(conf db.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		conf.PGHost, conf.PGUser, conf.PGPassword, conf.PGDatabase, conf.PGPort,
	)
}

type PostgresDB struct {
	db *gorm.DB
}

func (pg *PostgresDB) init() error {
	return pg.db.AutoMigrate(&Node{}, &Vote{}, &Relationship{})
}

// Load implements db.DataSource.
func (pg *PostgresDB) Load(ctx context.Context) ([]model.ContentNode, []model.RawLink, error) {
	nodes := []Node{}
	if err := pg.db.WithContext(ctx).Find(&nodes).Error; err != nil {
		return nil, nil, errors.Wrap(err, "failed to load nodes")
	}
	votes := []Vote{}
	if err := pg.db.WithContext(ctx).Find(&votes).Error; err != nil {
		return nil, nil, errors.Wrap(err, "failed to load votes")
	}
	relationships := []Relationship{}
	if err := pg.db.WithContext(ctx).Find(&relationships).Error; err != nil {
		return nil, nil, errors.Wrap(err, "failed to load relationships")
	}
	convert := NewConvertToModel()
	return convert.Nodes(nodes, votes), convert.Links(nodes, relationships), nil
}

// CreateNode inserts a content row. Returns the natural node ID.
func (pg *PostgresDB) CreateNode(ctx context.Context, nodeID string, kind model.NodeKind, payload db.Payload) (string, error) {
	node := Node{NodeID: nodeID, Kind: string(kind), Payload: payload}
	if err := pg.db.WithContext(ctx).Create(&node).Error; err != nil {
		return "", errors.Wrapf(err, "failed to create node '%s'", nodeID)
	}
	return node.NodeID, nil
}

// AddVote records a single +1/-1 vote of a user on a node.
func (pg *PostgresDB) AddVote(ctx context.Context, nodeID string, userID uint, kind VoteKind, value int) error {
	if value != 1 && value != -1 {
		return errors.Errorf("vote value must be +1 or -1, got %d", value)
	}
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		node := Node{}
		if err := tx.Where(&Node{NodeID: nodeID}).First(&node).Error; err != nil {
			return errors.Wrapf(err, "failed to find node '%s'", nodeID)
		}
		vote := Vote{NodeID: node.ID, UserID: userID, Kind: kind, Value: value}
		return tx.Create(&vote).Error
	})
}

// CreateRelationship links two nodes by their natural IDs.
func (pg *PostgresDB) CreateRelationship(ctx context.Context, fromID, toID string, kind model.LinkKind) error {
	return pg.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		from, to := Node{}, Node{}
		if err := tx.Where(&Node{NodeID: fromID}).First(&from).Error; err != nil {
			return errors.Wrapf(err, "failed to find node '%s'", fromID)
		}
		if err := tx.Where(&Node{NodeID: toID}).First(&to).Error; err != nil {
			return errors.Wrapf(err, "failed to find node '%s'", toID)
		}
		relationship := Relationship{FromID: from.ID, ToID: to.ID, Kind: string(kind)}
		return tx.Create(&relationship).Error
	})
}
