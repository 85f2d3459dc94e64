package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type wishDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Fields    `bson:",inline"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// bsonFields maps record field names onto document keys.
var bsonFields = map[string]string{
	FieldTitle:            "title",
	FieldPrice:            "price",
	FieldLink:             "link",
	FieldImages:           "images",
	FieldStatus:           "status",
	FieldCreatedBy:        "created_by",
	FieldCreatedAt:        "created_at",
	FieldObjectionComment: "objection_comment",
	FieldObjectedBy:       "objected_by",
	FieldApprovedAt:       "approved_at",
	FieldArchivedAt:       "archived_at",
}

// WishRepository keeps wish records in a MongoDB collection. Image URLs are
// stored as given, so staged blobs must outlive the record.
type WishRepository struct {
	collection *mongo.Collection
}

func NewWishRepository(db *mongo.Database) *WishRepository {
	return &WishRepository{collection: db.Collection("wishes")}
}

func toRecord(doc wishDocument) Record {
	return Record{ID: doc.ID.Hex(), Fields: doc.Fields}
}

func (r *WishRepository) FetchAll(ctx context.Context, filter Filter) ([]Record, error) {
	query := bson.M{}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query["status"] = bson.M{"$in": statuses}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, storageErr("list", fmt.Errorf("failed to get wishes: %w", err))
	}
	defer cursor.Close(ctx)

	var records []Record
	for cursor.Next(ctx) {
		var doc wishDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, storageErr("list", err)
		}
		records = append(records, toRecord(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, storageErr("list", err)
	}
	return records, nil
}

func (r *WishRepository) FetchOne(ctx context.Context, id string) (*Record, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc wishDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storageErr("get", fmt.Errorf("failed to get wish: %w", err))
	}
	rec := toRecord(doc)
	return &rec, nil
}

func (r *WishRepository) Create(ctx context.Context, fields Fields) (*Record, error) {
	for i := range fields.Images {
		if fields.Images[i].ID == "" {
			fields.Images[i].ID = uuid.NewString()
		}
	}
	doc := wishDocument{Fields: fields, UpdatedAt: time.Now()}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, storageErr("create", fmt.Errorf("failed to create wish: %w", err))
	}

	doc.ID = result.InsertedID.(primitive.ObjectID)
	rec := toRecord(doc)
	return &rec, nil
}

func (r *WishRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*Record, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	set, err := toBSONUpdates(updates)
	if err != nil {
		return nil, storageErr("update", err)
	}
	set["updated_at"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc wishDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		logrus.WithError(err).WithField("wish_id", id).Error("Failed to update wish and return updated object")
		return nil, storageErr("update", fmt.Errorf("failed to update wish: %w", err))
	}
	rec := toRecord(doc)
	return &rec, nil
}

func (r *WishRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return storageErr("delete", fmt.Errorf("failed to delete wish: %w", err))
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func toBSONUpdates(updates map[string]interface{}) (bson.M, error) {
	set := bson.M{}
	for field, value := range updates {
		key, ok := bsonFields[field]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", field)
		}
		set[key] = value
	}
	return set, nil
}
