package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainroom "hotelier/internal/domain/room"
)

type RoomCatalog struct {
	col *mongo.Collection
}

func NewRoomCatalog(db *mongo.Database) *RoomCatalog {
	return &RoomCatalog{col: db.Collection("cat_room")}
}

func (c *RoomCatalog) ByID(ctx context.Context, id domainroom.RoomID) (*domainroom.Room, error) {
	var doc roomDocument
	if err := c.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainroom.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (c *RoomCatalog) Save(ctx context.Context, r *domainroom.Room) error {
	doc := newRoomDocument(r)
	opts := options.Update().SetUpsert(true)
	_, err := c.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

func (c *RoomCatalog) List(ctx context.Context) ([]*domainroom.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	cursor, err := c.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainroom.Room, 0)
	for cursor.Next(ctx) {
		var doc roomDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type roomDocument struct {
	ID          string        `bson:"_id"`
	Number      string        `bson:"number"`
	Capacity    int           `bson:"capacity"`
	NightlyRate moneyDocument `bson:"nightly_rate"`
	Status      string        `bson:"status"`
}

func newRoomDocument(r *domainroom.Room) roomDocument {
	return roomDocument{
		ID:          string(r.ID),
		Number:      r.Number,
		Capacity:    r.Capacity,
		NightlyRate: newMoneyDocument(r.NightlyRate),
		Status:      string(r.Status),
	}
}

func (d roomDocument) toAggregate() *domainroom.Room {
	return &domainroom.Room{
		ID:          domainroom.RoomID(d.ID),
		Number:      d.Number,
		Capacity:    d.Capacity,
		NightlyRate: d.NightlyRate.toMoney(),
		Status:      domainroom.RoomStatus(d.Status),
	}
}
