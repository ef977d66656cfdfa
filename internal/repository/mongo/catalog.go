package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kareempogba0/B-Laban/internal/entity"
	"github.com/kareempogba0/B-Laban/internal/repository"
)

type productRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a new ProductRepository backed by MongoDB.
func NewProductRepository(db *mongo.Database) repository.ProductRepository {
	return &productRepository{coll: db.Collection(productsCollection)}
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	products, err := findAll(ctx, r.coll, bson.M{}, nil, entity.ProductFromDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (entity.Product, error) {
	p, err := findOne(ctx, r.coll, bson.M{"_id": id}, entity.ProductFromDocument)
	if err != nil {
		return entity.Product{}, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return p, nil
}

type profileRepository struct {
	coll *mongo.Collection
}

// NewProfileRepository creates a new ProfileRepository backed by MongoDB.
func NewProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &profileRepository{coll: db.Collection(usersCollection)}
}

func (r *profileRepository) Get(ctx context.Context, uid string) (entity.UserProfile, error) {
	p, err := findOne(ctx, r.coll, bson.M{"_id": uid}, entity.ProfileFromDocument)
	if err != nil {
		return entity.UserProfile{}, fmt.Errorf("failed to get profile %s: %w", uid, err)
	}
	return p, nil
}

func (r *profileRepository) Create(ctx context.Context, profile entity.UserProfile) error {
	doc := bson.M(profile.Document())
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": profile.UID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to create profile %s: %w", profile.UID, translateError(err))
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, uid string, update entity.ProfileUpdate) error {
	fields := bson.M{
		"name":    update.Name,
		"phone":   update.Phone,
		"address": update.Address.Document(),
	}
	if update.ProfilePic != "" {
		fields["profilePic"] = update.ProfilePic
	}
	return r.set(ctx, uid, fields)
}

func (r *profileRepository) SetPaymentMethods(ctx context.Context, uid string, methods []entity.PaymentMethod) error {
	docs := make(bson.A, 0, len(methods))
	for _, m := range methods {
		docs = append(docs, m.Document())
	}
	return r.set(ctx, uid, bson.M{"paymentMethods": docs})
}

func (r *profileRepository) set(ctx context.Context, uid string, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update profile %s: %w", uid, translateError(err))
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update profile %s: %w", uid, translateError(mongo.ErrNoDocuments))
	}
	return nil
}
