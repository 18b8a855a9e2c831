package repository

import (
	"context"
	"errors"
	"time"

	billdomain "github.com/harborline/shopd/internal/bill/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "bills"

// billDocument is the persisted shape; the oid stays native inside the
// driver and is stringified at the domain boundary.
type billDocument struct {
	ID         primitive.ObjectID    `bson:"_id,omitempty"`
	CustomerID int64                 `bson:"customerId"`
	Total      float64               `bson:"total"`
	Items      []billdomain.BillItem `bson:"items"`
	CreatedAt  time.Time             `bson:"createdAt"`
}

// MongoRepository stores bills in a mongo collection.
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository builds the store over an existing database handle.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection(collectionName)}
}

func (r *MongoRepository) Create(ctx context.Context, bill *billdomain.Bill) (*billdomain.Bill, error) {
	doc := billDocument{
		CustomerID: bill.CustomerID,
		Total:      bill.Total,
		Items:      bill.Items,
		CreatedAt:  time.Now().UTC(),
	}
	result, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, errors.New("unexpected inserted id type")
	}
	doc.ID = oid
	return doc.toDomain(), nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*billdomain.Bill, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc billDocument
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *MongoRepository) FindByCustomer(ctx context.Context, customerID int64) ([]billdomain.Bill, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"customerId": customerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bills []billdomain.Bill
	for cursor.Next(ctx) {
		var doc billDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		bills = append(bills, *doc.toDomain())
	}
	return bills, cursor.Err()
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (*billdomain.Bill, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc billDocument
	err = r.col.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (d billDocument) toDomain() *billdomain.Bill {
	return &billdomain.Bill{
		ID:         d.ID.Hex(),
		CustomerID: d.CustomerID,
		Total:      d.Total,
		Items:      d.Items,
		CreatedAt:  d.CreatedAt,
	}
}
