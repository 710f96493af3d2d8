package main

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/gigainfosystems/buffi/registry/store"
	storemongo "github.com/gigainfosystems/buffi/registry/store/mongo"
)

// dialLedger connects to the hermeticity ledger's MongoDB backend and
// returns a ready store.Store alongside a function that closes the
// connection.
func dialLedger(ctx context.Context, uri string) (store.Store, func(), error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("ping %s: %w", uri, err)
	}
	collection := client.Database("buffi").Collection("hermeticity_ledger")
	closeFn := func() { _ = client.Disconnect(ctx) }
	return storemongo.New(collection), closeFn, nil
}
