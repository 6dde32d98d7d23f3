package placeresolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/itinera/itinera/pkg/database"
	"github.com/itinera/itinera/pkg/tmdf"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Resolver turns the origin/destination identifiers of a request into
// resolved places. Identifiers are either "lon;lat" coordinates or named
// place references looked up in the places collection
type Resolver struct {
}

func (r *Resolver) Resolve(ctx context.Context, identifier string) (*tmdf.Place, error) {
	if place, ok := tmdf.ParseCoordinate(identifier); ok {
		return &place, nil
	}

	placesCollection := database.GetCollection("places")

	var place *tmdf.Place
	query := bson.M{"$or": bson.A{
		bson.M{"primaryidentifier": identifier},
		bson.M{"otheridentifiers": identifier},
	}}
	err := placesCollection.FindOne(ctx, query).Decode(&place)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &tmdf.InvalidRequestError{Reason: "unknown place " + identifier}
	}
	if err != nil {
		return nil, fmt.Errorf("place lookup for %s failed: %w", identifier, err)
	}

	return place, nil
}

// StopCode returns the vendor code registered under tag for the identified
// stop, falling back to the identifier itself when no code is known
func (r *Resolver) StopCode(ctx context.Context, identifier string, tag string) string {
	if tag == "" {
		return identifier
	}

	place, err := r.Resolve(ctx, identifier)
	if err != nil {
		return identifier
	}

	if code := place.Code(tag); code != "" {
		return code
	}

	return identifier
}
