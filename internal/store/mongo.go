package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"forum/internal/model"
)

type postDoc struct {
	ID    primitive.ObjectID `bson:"_id,omitempty"`
	Title string             `bson:"title"`
	Text  string             `bson:"text"`
}

func (d postDoc) post() model.Post {
	return model.Post{ID: d.ID.Hex(), Title: d.Title, Text: d.Text}
}

// Mongo stores posts as {title, text} documents in one collection.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects and pings so an unreachable server fails here rather
// than on the first query.
func OpenMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Mongo{client: client, coll: client.Database(database).Collection(collection)}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Insert(ctx context.Context, title, text string) (string, error) {
	res, err := m.coll.InsertOne(ctx, bson.M{"title": title, "text": text})
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("insert post: unexpected id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (m *Mongo) FindByID(ctx context.Context, id string) (model.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Post{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	var doc postDoc
	err = m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post %s: %w", id, err)
	}
	return doc.post(), nil
}

func (m *Mongo) List(ctx context.Context) ([]model.Post, error) {
	cur, err := m.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	posts := make([]model.Post, 0, len(docs))
	for _, d := range docs {
		posts = append(posts, d.post())
	}
	return posts, nil
}
