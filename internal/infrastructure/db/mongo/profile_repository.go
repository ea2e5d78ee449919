package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sandia/users-manager/internal/core/domain"
	"github.com/sandia/users-manager/internal/core/ports"
)

const usersCollection = "users"

// Index names referenced when attributing a duplicate-key error to the
// colliding credential.
const (
	emailIndex    = "email_unique"
	usernameIndex = "username_unique"
)

// ProfileRepository is the MongoDB implementation of ports.ProfileRepository.
// All driver errors are wrapped into the domain error categories at this
// boundary.
type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(usersCollection)}
}

// CheckCredentials reports which of email/username already exist. The check
// is advisory: the unique indexes remain the authoritative guard against
// concurrent registrations.
func (r *ProfileRepository) CheckCredentials(ctx context.Context, email, username string) (ports.CredentialExistence, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var existing ports.CredentialExistence

	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return existing, domain.WrapStore(domain.ErrLookup, err)
	}
	existing.Email = n > 0

	n, err = r.coll.CountDocuments(ctx, bson.M{"username": username})
	if err != nil {
		return existing, domain.WrapStore(domain.ErrLookup, err)
	}
	existing.Username = n > 0

	return existing, nil
}

// InsertUser persists a new user record and returns the generated id.
func (r *ProfileRepository) InsertUser(ctx context.Context, user *domain.User) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, recordFromUser(user))
	if err != nil {
		// A duplicate on anything other than the credential indexes
		// (e.g. _id) is not attributable to the caller's input and falls
		// through to the persistence wrap.
		if mongo.IsDuplicateKeyError(err) {
			if kind, ok := duplicateKind(err); ok {
				return "", &domain.DuplicateCredentialError{Kind: kind}
			}
		}
		return "", domain.WrapStore(domain.ErrPersistence, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", domain.WrapStore(domain.ErrPersistence, fmt.Errorf("unexpected inserted id type %T", res.InsertedID))
	}
	return oid.Hex(), nil
}

// EnsureAdministrator provisions the bootstrap administrator record. An
// existing record with the same email or username is left untouched; the
// unique indexes make the insert idempotent.
func (r *ProfileRepository) EnsureAdministrator(ctx context.Context, admin *domain.Administrator) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, recordFromAdministrator(admin))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return domain.WrapStore(domain.ErrPersistence, err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		admin.Ident.ID = oid.Hex()
	}
	return nil
}

// FindByCredentials matches a record where email or username equals
// credential and the password matches exactly. No match is (nil, nil).
func (r *ProfileRepository) FindByCredentials(ctx context.Context, credential, password string) (domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"$or": bson.A{
			bson.M{"email": credential},
			bson.M{"username": credential},
		},
		"password": password,
	}

	var rec profileRecord
	if err := r.coll.FindOne(ctx, filter).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, domain.WrapStore(domain.ErrAuth, err)
	}

	profile, ok := rec.toProfile()
	if !ok {
		// Matches neither variant; treated the same as no match.
		return nil, nil
	}
	return profile, nil
}

// ListUsers returns every user-variant record: explicit kind=user plus
// legacy records identified by the presence of gender.
func (r *ProfileRepository) ListUsers(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"$or": bson.A{
			bson.M{"kind": string(domain.KindUser)},
			bson.M{
				"kind":   bson.M{"$exists": false},
				"gender": bson.M{"$exists": true},
			},
		},
	}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, domain.WrapStore(domain.ErrRetrieval, err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var rec profileRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, domain.WrapStore(domain.ErrRetrieval, err)
		}
		profile, ok := rec.toProfile()
		if !ok {
			continue
		}
		user, ok := profile.(*domain.User)
		if !ok {
			continue
		}
		users = append(users, user)
	}
	if err := cur.Err(); err != nil {
		return nil, domain.WrapStore(domain.ErrRetrieval, err)
	}

	return users, nil
}

// UpdateUser replaces the mutable fields of the record with the user's id.
// Email, username and _id are deliberately left out of the $set.
func (r *ProfileRepository) UpdateUser(ctx context.Context, user *domain.User) (ports.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(user.Ident.ID)
	if err != nil {
		return ports.UpdateResult{}, domain.ErrInvalidProfileID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"password":  user.Ident.Password,
		"name":      user.Ident.Name,
		"lastname":  user.Ident.LastName,
		"telephone": user.Ident.Telephone,
		"gender":    string(user.Gender),
		"card":      user.Card,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return ports.UpdateResult{}, domain.WrapStore(domain.ErrPersistence, err)
	}

	return ports.UpdateResult{
		Matched:  res.MatchedCount > 0,
		Modified: res.ModifiedCount > 0,
	}, nil
}

// DeleteUser removes the record by id.
func (r *ProfileRepository) DeleteUser(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrInvalidProfileID
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, domain.WrapStore(domain.ErrPersistence, err)
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes creates the unique indexes on email and username. These
// indexes are the actual enforcement of credential uniqueness; the
// pre-insert existence check only improves error messages.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(emailIndex),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(usernameIndex),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// duplicateKind attributes a duplicate-key error to the colliding
// credential by looking for the index name in the driver message. Reports
// ok=false when neither credential index is named.
func duplicateKind(err error) (domain.CredentialKind, bool) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, usernameIndex):
		return domain.CredentialUsername, true
	case strings.Contains(msg, emailIndex):
		return domain.CredentialEmail, true
	default:
		return "", false
	}
}
