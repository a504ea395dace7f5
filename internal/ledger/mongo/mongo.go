// Package mongo implements ledger.Store on a MongoDB collection. Field
// names keep the original collection schema: i (item), a (amount),
// c (category), n (note), date (created at).
package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/dvloznov/expensebot/internal/domain"
	"github.com/dvloznov/expensebot/internal/ledger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Item      string             `bson:"i"`
	Amount    float64            `bson:"a"`
	Category  string             `bson:"c"`
	Note      string             `bson:"n"`
	CreatedAt time.Time          `bson:"date"`
}

func (d document) toDomain() domain.Transaction {
	return domain.Transaction{
		ID:        d.ID.Hex(),
		Item:      d.Item,
		Amount:    d.Amount,
		Category:  d.Category,
		Note:      d.Note,
		CreatedAt: d.CreatedAt,
	}
}

// Store is a MongoDB-backed ledger.
type Store struct {
	col *mongo.Collection
	now func() time.Time
}

var _ ledger.Store = (*Store)(nil)

// Connect dials MongoDB and returns a Store over the given database and
// collection. The returned client is owned by the caller via Close.
func Connect(ctx context.Context, uri, database, collection string) (*Store, *mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("Connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, fmt.Errorf("Connect: ping: %w", err)
	}

	return NewStore(client.Database(database).Collection(collection)), client, nil
}

// NewStore wraps an existing collection.
func NewStore(col *mongo.Collection) *Store {
	return &Store{col: col, now: time.Now}
}

// Insert appends one record; MongoDB assigns the ObjectID, the store
// assigns CreatedAt.
func (s *Store) Insert(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	doc := document{
		Item:      t.Item,
		Amount:    t.Amount,
		Category:  t.Category,
		Note:      t.Note,
		CreatedAt: s.now(),
	}

	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("Insert: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return domain.Transaction{}, fmt.Errorf("Insert: unexpected inserted ID type %T", res.InsertedID)
	}

	doc.ID = oid
	return doc.toDomain(), nil
}

// Recent returns up to limit records sorted by creation time descending.
func (s *Store) Recent(ctx context.Context, limit int64) ([]domain.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cur, err := s.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("Recent: %w", err)
	}
	return decodeAll(ctx, cur)
}

// All returns the full ledger.
func (s *Store) All(ctx context.Context) ([]domain.Transaction, error) {
	cur, err := s.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("All: %w", err)
	}
	return decodeAll(ctx, cur)
}

// FindMatch returns the newest record with this exact amount and a
// case-insensitive substring match on the item. The fragment is
// regex-escaped: matching is literal, never user-supplied regex.
func (s *Store) FindMatch(ctx context.Context, amount float64, fragment string) (domain.Transaction, error) {
	filter := bson.D{
		{Key: "a", Value: amount},
		{Key: "i", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(fragment)},
			{Key: "$options", Value: "i"},
		}},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}})

	var doc document
	err := s.col.FindOne(ctx, filter, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return domain.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("FindMatch: %w", err)
	}
	return doc.toDomain(), nil
}

// Delete removes one record by its hex ObjectID.
func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("Delete: invalid id %q: %w", id, err)
	}

	res, err := s.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes the pipeline relies on: chronological
// reads (date desc) and fuzzy-delete lookups (amount + item).
func (s *Store) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "a", Value: 1}, {Key: "i", Value: 1}}},
	}

	if _, err := s.col.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("EnsureIndexes: %w", err)
	}
	return nil
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]domain.Transaction, error) {
	defer cur.Close(ctx)

	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decodeAll: %w", err)
	}

	out := make([]domain.Transaction, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}
