package database

import (
	"context"
	"fmt"
	"log"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"
)

// Migrate creates or updates the SQL schema
func Migrate(db *gorm.DB) error {
	log.Println("Running database migrations...")
	err := db.AutoMigrate(
		&models.User{},
		&models.Task{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := backfillFoldedTitles(db); err != nil {
		return fmt.Errorf("failed to backfill folded titles: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}

// backfillFoldedTitles fills title_folded for rows written before the column
// existed.
func backfillFoldedTitles(db *gorm.DB) error {
	var tasks []models.Task
	result := db.Select("id", "title").
		Where("title_folded = ? AND title <> ?", "", "").
		FindInBatches(&tasks, 200, func(tx *gorm.DB, batch int) error {
			for _, task := range tasks {
				err := db.Model(&models.Task{}).
					Where("id = ?", task.ID).
					UpdateColumn("title_folded", models.FoldTitle(task.Title)).Error
				if err != nil {
					return err
				}
			}
			return nil
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Backfilled folded titles for %d tasks", result.RowsAffected)
	}
	return nil
}

// MigrateMongo creates the indexes the document store relies on: unique user
// emails and the owner/creation order used by every task listing.
func MigrateMongo(ctx context.Context, db *mongo.Database) error {
	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{
			repository.UsersCollection,
			mongo.IndexModel{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("idx_users_email").SetUnique(true),
			},
		},
		{
			repository.TasksCollection,
			mongo.IndexModel{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("idx_tasks_user_created"),
			},
		},
		{
			repository.TasksCollection,
			mongo.IndexModel{
				Keys:    bson.D{{Key: "user", Value: 1}, {Key: "category", Value: 1}},
				Options: options.Index().SetName("idx_tasks_user_category"),
			},
		},
	}

	for _, idx := range indexes {
		name, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model)
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", idx.collection, err)
		}
		log.Printf("Ensured index %s on %s", name, idx.collection)
	}

	return nil
}
