package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TasksCollection = "tasks"
	UsersCollection = "users"
)

// taskDocument is the BSON shape of a task in the tasks collection.
type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Tags        []string           `bson:"tags"`
	Priority    models.Priority    `bson:"priority"`
	Completed   bool               `bson:"completed"`
	DueDate     *time.Time         `bson:"dueDate"`
	User        string             `bson:"user"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newTaskDocument(task *models.Task) taskDocument {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}
	return taskDocument{
		Title:       task.Title,
		Description: task.Description,
		Category:    task.Category,
		Tags:        tags,
		Priority:    task.Priority,
		Completed:   task.Completed,
		DueDate:     task.DueDate,
		User:        task.UserID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func (d taskDocument) toModel() models.Task {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Task{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Tags:        tags,
		Priority:    d.Priority,
		Completed:   d.Completed,
		DueDate:     d.DueDate,
		UserID:      d.User,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoTaskRepository is a MongoDB implementation of TaskRepository
type MongoTaskRepository struct {
	coll *mongo.Collection
}

// NewMongoTaskRepository creates a TaskRepository backed by db's tasks collection
func NewMongoTaskRepository(db *mongo.Database) TaskRepository {
	return &MongoTaskRepository{coll: db.Collection(TasksCollection)}
}

// Create inserts a task and fills in its ObjectID
func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	doc := newTaskDocument(task)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	task.ID = doc.ID.Hex()
	task.Tags = doc.Tags
	return nil
}

// FindByID finds a task by its hex ObjectID
func (r *MongoTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	task := doc.toModel()
	return &task, nil
}

// List retrieves tasks with filtering, newest first
func (r *MongoTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	cur, err := r.coll.Find(ctx, taskFilterDocument(filter), options.Find().SetSort(taskSortDocument()))
	if err != nil {
		return nil, err
	}

	var docs []taskDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, doc.toModel())
	}
	return tasks, nil
}

// Update sets the mutable fields of task, matching on _id and owner
func (r *MongoTaskRepository) Update(ctx context.Context, task *models.Task) error {
	oid, err := primitive.ObjectIDFromHex(task.ID)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "user": task.UserID},
		bson.M{"$set": taskUpdateDocument(task)},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task, matching on _id and owner
func (r *MongoTaskRepository) Delete(ctx context.Context, id, userID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "user": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// taskFilterDocument translates a TaskFilter into a query document. Title
// search is a case-insensitive literal substring match.
func taskFilterDocument(filter TaskFilter) bson.M {
	query := bson.M{"user": filter.UserID}
	if filter.Category != nil {
		query["category"] = *filter.Category
	}
	if filter.Completed != nil {
		query["completed"] = *filter.Completed
	}
	if filter.TitleContains != nil {
		query["title"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(*filter.TitleContains),
			Options: "i",
		}
	}
	return query
}

func taskSortDocument() bson.D {
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}

func taskUpdateDocument(task *models.Task) bson.M {
	tags := task.Tags
	if tags == nil {
		tags = []string{}
	}
	return bson.M{
		"title":       task.Title,
		"description": task.Description,
		"category":    task.Category,
		"tags":        tags,
		"priority":    task.Priority,
		"completed":   task.Completed,
		"dueDate":     task.DueDate,
		"updatedAt":   task.UpdatedAt,
	}
}
