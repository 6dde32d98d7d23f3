package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createIndexes() {
	createPlacesIndexes()
}

func createPlacesIndexes() {
	placesCollection := GetCollection("places")
	placesIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "primaryidentifier", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "location.coordinates", Value: "2d"}},
		},
		{
			Keys: bson.D{{Key: "otheridentifiers", Value: 1}},
		},
	}

	opts := options.CreateIndexes()
	_, err := placesCollection.Indexes().CreateMany(context.Background(), placesIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
