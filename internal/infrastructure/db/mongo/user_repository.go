package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fooddelivery/delivery-platform/internal/core/domain"
)

const userCollection = "users"

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique constraints that arbitrate concurrent
// registration races. Phone and identification number are only unique when
// non-empty.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	nonEmpty := func(field string) *options.IndexOptions {
		return options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{field: bson.M{"$gt": ""}})
	}

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "phone_number", Value: 1}}, Options: nonEmpty("phone_number")},
		{Keys: bson.D{{Key: "identification_number", Value: 1}}, Options: nonEmpty("identification_number")},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type mongoLocation struct {
	Type      string  `bson:"type"`
	Latitude  float64 `bson:"latitude"`
	Longitude float64 `bson:"longitude"`
	Address   string  `bson:"address,omitempty"`
}

type mongoUser struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	Username             string             `bson:"username"`
	Email                string             `bson:"email"`
	PasswordHash         string             `bson:"password_hash"`
	FirstName            string             `bson:"first_name,omitempty"`
	LastName             string             `bson:"last_name,omitempty"`
	PhoneNumber          string             `bson:"phone_number,omitempty"`
	ProfileImage         string             `bson:"profile_image,omitempty"`
	Address              string             `bson:"address,omitempty"`
	Location             *mongoLocation     `bson:"location,omitempty"`
	IdentificationNumber string             `bson:"identification_number,omitempty"`
	VehicleNumber        string             `bson:"vehicle_number,omitempty"`
	Roles                []string           `bson:"roles"`
	Enabled              bool               `bson:"enabled"`
	Disabled             bool               `bson:"disabled"`
	Deleted              bool               `bson:"deleted"`
	Verified             bool               `bson:"verified"`
	CreatedAt            int64              `bson:"created_at"`
	UpdatedAt            int64              `bson:"updated_at"`
}

func toDoc(user *domain.User) mongoUser {
	doc := mongoUser{
		Username:             user.Username,
		Email:                user.Email,
		PasswordHash:         user.PasswordHash,
		FirstName:            user.FirstName,
		LastName:             user.LastName,
		PhoneNumber:          user.PhoneNumber,
		ProfileImage:         user.ProfileImage,
		Address:              user.Address,
		IdentificationNumber: user.IdentificationNumber,
		VehicleNumber:        user.VehicleNumber,
		Roles:                user.Roles,
		Enabled:              user.Enabled,
		Disabled:             user.Disabled,
		Deleted:              user.Deleted,
		Verified:             user.Verified,
		CreatedAt:            user.CreatedAt.Unix(),
		UpdatedAt:            user.UpdatedAt.Unix(),
	}
	if user.Location != nil {
		doc.Location = &mongoLocation{
			Type:      user.Location.Type,
			Latitude:  user.Location.Latitude,
			Longitude: user.Location.Longitude,
			Address:   user.Location.Address,
		}
	}
	return doc
}

func toDomain(mu mongoUser) *domain.User {
	user := &domain.User{
		ID:                   mu.ID.Hex(),
		Username:             mu.Username,
		Email:                mu.Email,
		PasswordHash:         mu.PasswordHash,
		FirstName:            mu.FirstName,
		LastName:             mu.LastName,
		PhoneNumber:          mu.PhoneNumber,
		ProfileImage:         mu.ProfileImage,
		Address:              mu.Address,
		IdentificationNumber: mu.IdentificationNumber,
		VehicleNumber:        mu.VehicleNumber,
		Roles:                mu.Roles,
		Enabled:              mu.Enabled,
		Disabled:             mu.Disabled,
		Deleted:              mu.Deleted,
		Verified:             mu.Verified,
		CreatedAt:            unixToTime(mu.CreatedAt),
		UpdatedAt:            unixToTime(mu.UpdatedAt),
	}
	if mu.Location != nil {
		user.Location = &domain.Location{
			Type:      mu.Location.Type,
			Latitude:  mu.Location.Latitude,
			Longitude: mu.Location.Longitude,
			Address:   mu.Location.Address,
		}
	}
	return user
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	res, err := r.coll.InsertOne(ctx, toDoc(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	doc := toDoc(user)
	doc.ID = oid
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return toDomain(mu), nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) findMany(ctx context.Context, filter bson.M) ([]*domain.User, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	for cursor.Next(ctx) {
		var mu mongoUser
		if err := cursor.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, toDomain(mu))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (r *MongoUserRepository) FindAll(ctx context.Context) ([]*domain.User, error) {
	return r.findMany(ctx, bson.M{})
}

func (r *MongoUserRepository) FindByRole(ctx context.Context, role string) ([]*domain.User, error) {
	return r.findMany(ctx, bson.M{"roles": role})
}

func (r *MongoUserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

func (r *MongoUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) ExistsByPhoneNumber(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, bson.M{"phone_number": phone})
}

func (r *MongoUserRepository) ExistsByIdentificationNumber(ctx context.Context, idNumber string) (bool, error) {
	return r.exists(ctx, bson.M{"identification_number": idNumber})
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
