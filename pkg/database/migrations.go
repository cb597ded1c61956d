package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Migration struct {
	Version     int
	Description string
	Up          func(*mongo.Database) error
	Down        func(*mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
}

func NewMigrator(db *mongo.Database) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
	}
}

func (m *Migrator) Up() error {
	err := m.createMigrationsCollection()
	if err != nil {
		return err
	}

	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version > currentVersion {
			log.Printf("Running migration %d: %s", migration.Version, migration.Description)

			err := migration.Up(m.db)
			if err != nil {
				return fmt.Errorf("migration %d failed: %w", migration.Version, err)
			}

			err = m.updateVersion(migration.Version)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d completed successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) Down(targetVersion int) error {
	currentVersion, err := m.getCurrentVersion()
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version <= currentVersion && migration.Version > targetVersion {
			log.Printf("Reverting migration %d: %s", migration.Version, migration.Description)

			err := migration.Down(m.db)
			if err != nil {
				return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
			}

			previousVersion := targetVersion
			if i > 0 {
				previousVersion = m.migrations[i-1].Version
			}

			err = m.updateVersion(previousVersion)
			if err != nil {
				return fmt.Errorf("failed to update migration version: %w", err)
			}

			log.Printf("Migration %d reverted successfully", migration.Version)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsCollection() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collections, err := m.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}

	for _, name := range collections {
		if name == "migrations" {
			return nil
		}
	}

	return m.db.CreateCollection(ctx, "migrations")
}

func (m *Migrator) getCurrentVersion() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection("migrations").FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(version int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := m.db.Collection("migrations").ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create affiliates collection with indexes",
			Up: func(db *mongo.Database) error {
				return createAffiliatesIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("affiliates").Drop(context.Background())
			},
		},
		{
			Version:     2,
			Description: "Create affiliate_applications collection with indexes",
			Up: func(db *mongo.Database) error {
				return createApplicationsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("affiliate_applications").Drop(context.Background())
			},
		},
		{
			Version:     3,
			Description: "Create affiliate_clicks collection with indexes",
			Up: func(db *mongo.Database) error {
				return createClicksIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("affiliate_clicks").Drop(context.Background())
			},
		},
		{
			Version:     4,
			Description: "Create conversions collection with unique order index",
			Up: func(db *mongo.Database) error {
				return createConversionsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("conversions").Drop(context.Background())
			},
		},
		{
			Version:     5,
			Description: "Create settlements collection with indexes",
			Up: func(db *mongo.Database) error {
				return createSettlementsIndexes(db)
			},
			Down: func(db *mongo.Database) error {
				return db.Collection("settlements").Drop(context.Background())
			},
		},
	}
}

func createAffiliatesIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("affiliates")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "referral_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createApplicationsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("affiliate_applications")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createClicksIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("affiliate_clicks")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "affiliate_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createConversionsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("conversions")

	// The unique order_id index is what makes RecordConversion safe under
	// concurrent at-least-once delivery. Do not relax it.
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "affiliate_id", Value: 1}, {Key: "settlement_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "affiliate_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createSettlementsIndexes(db *mongo.Database) error {
	ctx := context.Background()
	collection := db.Collection("settlements")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "affiliate_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
