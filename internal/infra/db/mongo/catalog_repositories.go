package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainamenity "hotelier/internal/domain/amenity"
	domainguest "hotelier/internal/domain/guest"
	domainpromotion "hotelier/internal/domain/promotion"
	domainrange "hotelier/internal/domain/shared/daterange"
)

type GuestDirectory struct {
	col *mongo.Collection
}

func NewGuestDirectory(db *mongo.Database) *GuestDirectory {
	return &GuestDirectory{col: db.Collection("cat_guest")}
}

func (d *GuestDirectory) ByID(ctx context.Context, id domainguest.GuestID) (*domainguest.Guest, error) {
	var doc guestDocument
	if err := d.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainguest.ErrNotFound
		}
		return nil, err
	}
	return &domainguest.Guest{ID: domainguest.GuestID(doc.ID), Name: doc.Name, Email: doc.Email}, nil
}

func (d *GuestDirectory) Save(ctx context.Context, g *domainguest.Guest) error {
	doc := guestDocument{ID: string(g.ID), Name: g.Name, Email: g.Email}
	opts := options.Update().SetUpsert(true)
	_, err := d.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type guestDocument struct {
	ID    string `bson:"_id"`
	Name  string `bson:"name"`
	Email string `bson:"email"`
}

type AmenityCatalog struct {
	col *mongo.Collection
}

func NewAmenityCatalog(db *mongo.Database) *AmenityCatalog {
	return &AmenityCatalog{col: db.Collection("cat_amenity")}
}

func (c *AmenityCatalog) ByID(ctx context.Context, id domainamenity.AmenityID) (*domainamenity.Amenity, error) {
	var doc amenityDocument
	if err := c.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainamenity.ErrNotFound
		}
		return nil, err
	}
	return &domainamenity.Amenity{
		ID:    domainamenity.AmenityID(doc.ID),
		Name:  doc.Name,
		Price: doc.Price.toMoney(),
	}, nil
}

func (c *AmenityCatalog) Save(ctx context.Context, a *domainamenity.Amenity) error {
	doc := amenityDocument{ID: string(a.ID), Name: a.Name, Price: newMoneyDocument(a.Price)}
	opts := options.Update().SetUpsert(true)
	_, err := c.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type amenityDocument struct {
	ID    string        `bson:"_id"`
	Name  string        `bson:"name"`
	Price moneyDocument `bson:"price"`
}

type PromotionCatalog struct {
	col *mongo.Collection
}

func NewPromotionCatalog(db *mongo.Database) *PromotionCatalog {
	return &PromotionCatalog{col: db.Collection("cat_promotion")}
}

// ApplicableForRange filters on the validity window only; per-kind rules run
// in the domain.
func (c *PromotionCatalog) ApplicableForRange(ctx context.Context, stay domainrange.DateRange) ([]*domainpromotion.Promotion, error) {
	checkIn := stay.CheckIn.UnixMilli()
	filter := bson.M{
		"$and": bson.A{
			bson.M{"$or": bson.A{
				bson.M{"valid_from": bson.M{"$lte": checkIn}},
				bson.M{"valid_from": 0},
			}},
			bson.M{"$or": bson.A{
				bson.M{"valid_to": bson.M{"$gte": checkIn}},
				bson.M{"valid_to": 0},
			}},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := c.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	out := make([]*domainpromotion.Promotion, 0)
	for cursor.Next(ctx) {
		var doc promotionDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

func (c *PromotionCatalog) Save(ctx context.Context, p *domainpromotion.Promotion) error {
	doc := newPromotionDocument(p)
	opts := options.Update().SetUpsert(true)
	_, err := c.col.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": doc}, opts)
	return err
}

type promotionDocument struct {
	ID               string `bson:"_id"`
	Kind             string `bson:"kind"`
	DiscountPercent  int    `bson:"discount_percent"`
	ValidFrom        int64  `bson:"valid_from"`
	ValidTo          int64  `bson:"valid_to"`
	MinNights        int    `bson:"min_nights"`
	MinDaysInAdvance int    `bson:"min_days_in_advance"`
}

func newPromotionDocument(p *domainpromotion.Promotion) promotionDocument {
	doc := promotionDocument{
		ID:               string(p.ID),
		Kind:             string(p.Kind),
		DiscountPercent:  p.DiscountPercent,
		MinNights:        p.MinNights,
		MinDaysInAdvance: p.MinDaysInAdvance,
	}
	if !p.ValidFrom.IsZero() {
		doc.ValidFrom = p.ValidFrom.UnixMilli()
	}
	if !p.ValidTo.IsZero() {
		doc.ValidTo = p.ValidTo.UnixMilli()
	}
	return doc
}

func (d promotionDocument) toAggregate() *domainpromotion.Promotion {
	p := &domainpromotion.Promotion{
		ID:               domainpromotion.PromotionID(d.ID),
		Kind:             domainpromotion.Kind(d.Kind),
		DiscountPercent:  d.DiscountPercent,
		MinNights:        d.MinNights,
		MinDaysInAdvance: d.MinDaysInAdvance,
	}
	if d.ValidFrom != 0 {
		p.ValidFrom = timestampToTime(d.ValidFrom)
	}
	if d.ValidTo != 0 {
		p.ValidTo = timestampToTime(d.ValidTo)
	}
	return p
}
