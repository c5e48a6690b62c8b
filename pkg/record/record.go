// Package record keeps an optional log of generated greetings.
//
// Persistence is best effort: [Init] falls back to a no-op [Recorder] when
// no MongoDB URI is configured or the server cannot be reached, and callers
// are expected to log (not return) errors from [Recorder.Save].
package record

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/greetcard/pkg/cache"
	"github.com/matzehuels/greetcard/pkg/errors"
	"github.com/matzehuels/greetcard/pkg/observability"
)

// Field limits, in runes.
const (
	MaxNameLen  = 100
	MaxPhoneLen = 50
)

// Defaults for Config.
const (
	DefaultDatabase   = "greetcard"
	DefaultCollection = "greetings"
	DefaultTimeout    = 5 * time.Second
)

// Config selects the MongoDB deployment. An empty URI disables recording.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Greeting is one generated card.
type Greeting struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name,omitempty" json:"name,omitempty"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	ImageURL  string             `bson:"image_url" json:"imageUrl"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Recorder stores greetings.
type Recorder interface {
	Save(ctx context.Context, g Greeting) (Greeting, error)
	Enabled() bool
	Close(ctx context.Context) error
}

// Nop discards every greeting.
type Nop struct{}

func (Nop) Save(_ context.Context, g Greeting) (Greeting, error) { return g, nil }
func (Nop) Enabled() bool                                        { return false }
func (Nop) Close(context.Context) error                          { return nil }

// Init connects to MongoDB and ensures the created_at index. Any failure
// is logged and yields Nop, so a missing database never stops the service.
func Init(ctx context.Context, cfg Config, logger *log.Logger) Recorder {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.URI == "" {
		logger.Info("record keeping disabled (no MongoDB URI)")
		return Nop{}
	}
	r, err := NewMongoRecorder(ctx, cfg)
	if err != nil {
		logger.Warn("record keeping disabled", "err", err)
		return Nop{}
	}
	logger.Info("record keeping enabled", "database", r.coll.Database().Name(), "collection", r.coll.Name())
	return r
}

// MongoRecorder stores greetings in a MongoDB collection.
type MongoRecorder struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoRecorder connects, pings the primary and creates the created_at
// index.
func NewMongoRecorder(ctx context.Context, cfg Config) (*MongoRecorder, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "connect to mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "ping mongodb")
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(pingCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: -1}},
		Options: options.Index().SetName("created_at_desc"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "ensure greetings index")
	}
	return &MongoRecorder{client: client, coll: coll, timeout: cfg.Timeout}, nil
}

// Save inserts g, retrying network errors and timeouts.
func (r *MongoRecorder) Save(ctx context.Context, g Greeting) (saved Greeting, err error) {
	defer func() { observability.Storage().OnRecord(ctx, err) }()

	g = Normalize(g)
	if g.ImageURL == "" {
		return g, errors.New(errors.ErrCodeInvalidInput, "greeting needs an image url")
	}
	err = cache.RetryWithBackoff(ctx, func() error {
		opCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()
		res, err := r.coll.InsertOne(opCtx, g)
		if err != nil {
			if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
				return cache.Retryable(err)
			}
			return err
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			g.ID = id
		}
		return nil
	})
	if err != nil {
		return g, errors.Wrap(errors.ErrCodePersistence, err, "save greeting")
	}
	return g, nil
}

// Recent returns up to limit greetings, newest first.
func (r *MongoRecorder) Recent(ctx context.Context, limit int64) ([]Greeting, error) {
	opCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(opCtx, bson.D{}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "query greetings")
	}
	var out []Greeting
	if err := cur.All(opCtx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "decode greetings")
	}
	return out, nil
}

func (r *MongoRecorder) Enabled() bool { return true }

func (r *MongoRecorder) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Normalize trims and truncates the free-text fields and stamps CreatedAt
// when unset.
func Normalize(g Greeting) Greeting {
	g.Name = truncate(strings.TrimSpace(g.Name), MaxNameLen)
	g.Phone = truncate(strings.TrimSpace(g.Phone), MaxPhoneLen)
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	return g
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

var (
	_ Recorder = Nop{}
	_ Recorder = (*MongoRecorder)(nil)
)
