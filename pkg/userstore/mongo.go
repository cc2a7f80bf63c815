package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/georadical/layer-flow/pkg/auth"
	mongodb "github.com/georadical/layer-flow/pkg/mongo"
)

const (
	usersCollection    = "users"
	countersCollection = "counters"
	userSequence       = "users"
)

type userDocument struct {
	ID           int64     `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash *string   `bson:"hashed_password"`
	AuthProvider string    `bson:"auth_provider"`
	ProviderID   *string   `bson:"provider_id"`
	IsActive     bool      `bson:"is_active"`
	CreatedAt    time.Time `bson:"created_at"`
}

func (d *userDocument) user() *auth.User {
	u := &auth.User{
		ID:           d.ID,
		Email:        d.Email,
		AuthProvider: d.AuthProvider,
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
	}
	if d.PasswordHash != nil {
		u.PasswordHash = *d.PasswordHash
	}
	if d.ProviderID != nil {
		u.ProviderID = *d.ProviderID
	}
	return u
}

type counterDocument struct {
	Seq int64 `bson:"seq"`
}

// Mongo is a user directory backed by a MongoDB database.
type Mongo struct {
	db       *mongo.Database
	users    *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// NewMongo creates a directory on db. Call EnsureIndexes once at startup.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{
		db:       db,
		users:    db.Collection(usersCollection),
		counters: db.Collection(countersCollection),
		now:      time.Now,
	}
}

// EnsureIndexes creates the unique email index.
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("users_email_key"),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

func (s *Mongo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Mongo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

// Create allocates the next id and inserts the user. The unique email index
// rejects duplicates; the consumed id is not reused.
func (s *Mongo) Create(ctx context.Context, draft auth.NewUser) (*auth.User, error) {
	if draft.Email == "" {
		return nil, auth.ErrEmailRequired
	}

	id, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}

	provider := draft.AuthProvider
	if provider == "" {
		provider = auth.ProviderLocal
	}
	doc := userDocument{
		ID:           id,
		Email:        draft.Email,
		PasswordHash: nullable(draft.PasswordHash),
		AuthProvider: provider,
		ProviderID:   nullable(draft.ProviderID),
		IsActive:     draft.IsActive,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, auth.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.user(), nil
}

// UpdateProviderID sets provider_id. Writing the same value again is a no-op.
func (s *Mongo) UpdateProviderID(ctx context.Context, id int64, providerID string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "provider_id", Value: nullable(providerID)}}}},
	)
	if err != nil {
		return fmt.Errorf("update provider id: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash replaces hashed_password.
func (s *Mongo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := s.users.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "hashed_password", Value: hash}}}},
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if res.MatchedCount == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// Healthcheck pings the server.
func (s *Mongo) Healthcheck(ctx context.Context) error {
	return mongodb.Healthcheck(s.db.Client())(ctx)
}

func (s *Mongo) findOne(ctx context.Context, filter bson.D) (*auth.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.user(), nil
}

func (s *Mongo) nextID(ctx context.Context) (int64, error) {
	var c counterDocument
	err := s.counters.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: userSequence}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "seq", Value: int64(1)}}}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, fmt.Errorf("allocate user id: %w", err)
	}
	return c.Seq, nil
}

var (
	_ auth.UserDirectory   = (*Mongo)(nil)
	_ auth.CredentialStore = (*Mongo)(nil)
)
