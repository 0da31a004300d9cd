// Package mongostore implements a MongoDB-backed version history source.
//
// Events live in a single collection, one document per link, with node
// observations embedded on the old/new sides. History loads a connected
// component by expanding the set of stable identifiers until no new ones
// appear, so split and merge lineages come back complete.
package mongostore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lineagelab/idhist/pkg/graphio"
	"github.com/lineagelab/idhist/pkg/lineage"
	"github.com/lineagelab/idhist/pkg/pipeline"
	"github.com/lineagelab/idhist/pkg/store"
)

// Config holds MongoDB connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string

	// ConnectTimeout bounds the initial connection and ping.
	// Defaults to 10 seconds.
	ConnectTimeout time.Duration
}

// Store is a MongoDB-backed record source.
type Store struct {
	client *mongo.Client
	events *mongo.Collection
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = "idhist"
	}
	if cfg.Collection == "" {
		cfg.Collection = "events"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{
		client: client,
		events: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// History loads the full history tree connected to stableID.
//
// The component is expanded breadth-first: each round fetches every event
// touching the current identifier set and adds newly discovered identifiers
// to the frontier. Documents are read in _id order so link insertion order
// is stable across loads.
func (s *Store) History(ctx context.Context, stableID string) (*lineage.Tree, error) {
	t := lineage.NewTree()
	seen := map[string]bool{stableID: true}
	frontier := []string{stableID}
	added := map[string]bool{}

	for len(frontier) > 0 {
		links, err := s.fetchEvents(ctx, frontier)
		if err != nil {
			return nil, err
		}

		var next []string
		for _, lj := range links {
			key := eventKey(lj)
			if added[key] {
				continue
			}
			added[key] = true

			l := lineage.Link{Old: toNodeRef(lj.Old), New: toNodeRef(lj.New), Score: lj.Score}
			if err := t.AddLink(l); err != nil {
				return nil, fmt.Errorf("add event: %w", err)
			}

			for _, n := range []*graphio.Node{lj.Old, lj.New} {
				if n != nil && !seen[n.StableID] {
					seen[n.StableID] = true
					next = append(next, n.StableID)
				}
			}
		}
		sort.Strings(next)
		frontier = next
	}
	t.AddLinkNodes()

	if t.NodeCount() == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, stableID)
	}
	return t, nil
}

// StableIDs lists identifiers with recorded history, optionally filtered by
// prefix. A limit of 0 means no limit.
func (s *Store) StableIDs(ctx context.Context, prefix string, limit int64) ([]string, error) {
	filter := bson.M{}
	if prefix != "" {
		filter = bson.M{"new.stable_id": bson.M{"$regex": "^" + prefix}}
	}

	ids, err := s.events.Distinct(ctx, "new.stable_id", filter)
	if err != nil {
		return nil, fmt.Errorf("distinct stable ids: %w", err)
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if s, ok := id.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Loader adapts the store to the pipeline's Loader interface.
func (s *Store) Loader() pipeline.Loader {
	return pipeline.LoaderFunc(func(ctx context.Context, opts pipeline.Options) (*lineage.Tree, error) {
		return s.History(ctx, opts.StableID)
	})
}

func (s *Store) fetchEvents(ctx context.Context, stableIDs []string) ([]graphio.Link, error) {
	filter := bson.M{"$or": []bson.M{
		{"old.stable_id": bson.M{"$in": stableIDs}},
		{"new.stable_id": bson.M{"$in": stableIDs}},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cur, err := s.events.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cur.Close(ctx)

	var links []graphio.Link
	if err := cur.All(ctx, &links); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return links, nil
}

// eventKey deduplicates events re-fetched by overlapping frontier queries.
func eventKey(l graphio.Link) string {
	return sideKey(l.Old) + "|" + sideKey(l.New)
}

func sideKey(n *graphio.Node) string {
	if n == nil {
		return ""
	}
	return n.StableID + "/" + n.Instance
}

func toNodeRef(nj *graphio.Node) *lineage.Node {
	if nj == nil {
		return nil
	}
	return &lineage.Node{
		StableID: nj.StableID,
		Version:  nj.Version,
		Release:  nj.Release,
		Instance: nj.Instance,
	}
}
