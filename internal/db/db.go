package db

import (
	"context"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectToDB() (*mongo.Database, context.CancelFunc, error) {
	mongoURI := os.Getenv("MONGODB_URI")

	uri, err := url.Parse(mongoURI)
	if err != nil {
		log.Fatalf("Error parsing MongoDB URI: %v", err)
		return nil, nil, err
	}

	dbName := strings.TrimPrefix(uri.Path, "/")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Error connecting to MongoDB: %v", err)
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Error pinging MongoDB: %v", err)
		return nil, nil, err
	}

	db := client.Database(dbName)

	return db, cancel, nil
}

// EnsureIndexes creates the lookup and uniqueness indexes the stores
// rely on: unique join codes, one player per (game, device), one QR
// token per room within a game.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"games": {
			{Keys: bson.M{"join_code": 1}, Options: options.Index().SetUnique(true)},
			{Keys: bson.M{"status": 1}},
		},
		"players": {
			{Keys: bson.D{{Key: "game_id", Value: 1}, {Key: "device_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.M{"game_id": 1}},
		},
		"rooms": {
			{Keys: bson.D{{Key: "game_id", Value: 1}, {Key: "qr_token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.M{"game_id": 1}},
		},
		"tasks": {
			{Keys: bson.M{"game_id": 1}},
		},
	}

	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
