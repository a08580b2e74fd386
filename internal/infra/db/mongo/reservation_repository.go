package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainamenity "hotelier/internal/domain/amenity"
	domainguest "hotelier/internal/domain/guest"
	domainpromotion "hotelier/internal/domain/promotion"
	domainreservation "hotelier/internal/domain/reservation"
	domainroom "hotelier/internal/domain/room"
	domainrange "hotelier/internal/domain/shared/daterange"
	"hotelier/internal/domain/shared/money"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type ReservationRepository struct {
	col *mongo.Collection
}

func NewReservationRepository(db *mongo.Database) *ReservationRepository {
	col := db.Collection("agg_reservation")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "range.check_in", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &ReservationRepository{col: col}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ReservationID) (*domainreservation.Reservation, error) {
	var doc reservationDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreservation.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

// Save upserts with the version in the filter: a stale aggregate matches
// nothing and the write is rejected instead of clobbering a newer state.
func (r *ReservationRepository) Save(ctx context.Context, resv *domainreservation.Reservation) error {
	doc := newReservationDocument(resv)
	filter := bson.M{"_id": doc.ID, "version": resv.Version}
	doc.Version = resv.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	resv.Version = doc.Version
	return nil
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID domainguest.GuestID) ([]*domainreservation.Reservation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{"guest_id": string(guestID)}, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

// OverlappingForRoom applies the half-open interval predicate in the query:
// existing.check_in < checkOut AND existing.check_out > checkIn.
func (r *ReservationRepository) OverlappingForRoom(ctx context.Context, roomID domainroom.RoomID, stay domainrange.DateRange) ([]*domainreservation.Reservation, error) {
	filter := bson.M{
		"room_id":         string(roomID),
		"range.check_in":  bson.M{"$lt": stay.CheckOut.UnixMilli()},
		"range.check_out": bson.M{"$gt": stay.CheckIn.UnixMilli()},
	}
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

func (r *ReservationRepository) ActiveForRoom(ctx context.Context, roomID domainroom.RoomID) ([]*domainreservation.Reservation, error) {
	filter := bson.M{
		"room_id": string(roomID),
		"status": bson.M{"$in": []string{
			string(domainreservation.StatusConfirmed),
			string(domainreservation.StatusCheckedIn),
		}},
	}
	cursor, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

func (r *ReservationRepository) ConfirmedArrivingBefore(ctx context.Context, day time.Time) ([]*domainreservation.Reservation, error) {
	filter := bson.M{
		"status":         string(domainreservation.StatusConfirmed),
		"range.check_in": bson.M{"$lt": domainrange.Day(day).UnixMilli()},
	}
	opts := options.Find().SetSort(bson.D{{Key: "range.check_in", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll(ctx, cursor)
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]*domainreservation.Reservation, error) {
	defer cursor.Close(ctx)
	out := make([]*domainreservation.Reservation, 0)
	for cursor.Next(ctx) {
		var doc reservationDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type reservationDocument struct {
	ID        string                `bson:"_id"`
	GuestID   string                `bson:"guest_id"`
	RoomID    string                `bson:"room_id"`
	Range     rangeDocument         `bson:"range"`
	Guests    int                   `bson:"guests"`
	Status    string                `bson:"status"`
	StayTotal moneyDocument         `bson:"stay_total"`
	Total     moneyDocument         `bson:"total"`
	Promo     promoDocument         `bson:"promo"`
	Amenities []amenityLineDocument `bson:"amenities"`
	CreatedAt int64                 `bson:"created_at"`
	UpdatedAt int64                 `bson:"updated_at"`
	Version   int64                 `bson:"version"`
}

type rangeDocument struct {
	CheckIn  int64 `bson:"check_in"`
	CheckOut int64 `bson:"check_out"`
}

type moneyDocument struct {
	Cents    int64  `bson:"cents"`
	Currency string `bson:"currency"`
}

type promoDocument struct {
	PromotionID     string        `bson:"promotion_id"`
	DiscountPercent int           `bson:"discount_percent"`
	OriginalStay    moneyDocument `bson:"original_stay"`
}

type amenityLineDocument struct {
	AmenityID string        `bson:"amenity_id"`
	Name      string        `bson:"name"`
	UnitPrice moneyDocument `bson:"unit_price"`
	Quantity  int           `bson:"quantity"`
}

func newReservationDocument(resv *domainreservation.Reservation) reservationDocument {
	doc := reservationDocument{
		ID:      string(resv.ID),
		GuestID: string(resv.GuestID),
		RoomID:  string(resv.RoomID),
		Range: rangeDocument{
			CheckIn:  resv.Range.CheckIn.UnixMilli(),
			CheckOut: resv.Range.CheckOut.UnixMilli(),
		},
		Guests:    resv.Guests,
		Status:    string(resv.Status),
		StayTotal: newMoneyDocument(resv.StayTotal),
		Total:     newMoneyDocument(resv.Total),
		Promo: promoDocument{
			PromotionID:     string(resv.Promo.PromotionID),
			DiscountPercent: resv.Promo.DiscountPercent,
			OriginalStay:    newMoneyDocument(resv.Promo.OriginalStay),
		},
		CreatedAt: resv.CreatedAt.UnixMilli(),
		UpdatedAt: resv.UpdatedAt.UnixMilli(),
		Version:   resv.Version,
	}
	for _, line := range resv.Amenities {
		doc.Amenities = append(doc.Amenities, amenityLineDocument{
			AmenityID: string(line.AmenityID),
			Name:      line.Name,
			UnitPrice: newMoneyDocument(line.UnitPrice),
			Quantity:  line.Quantity,
		})
	}
	return doc
}

func (d reservationDocument) toAggregate() *domainreservation.Reservation {
	resv := &domainreservation.Reservation{
		ID:      domainreservation.ReservationID(d.ID),
		GuestID: domainguest.GuestID(d.GuestID),
		RoomID:  domainroom.RoomID(d.RoomID),
		Range: domainrange.DateRange{
			CheckIn:  timestampToTime(d.Range.CheckIn),
			CheckOut: timestampToTime(d.Range.CheckOut),
		},
		Guests:    d.Guests,
		Status:    domainreservation.Status(d.Status),
		StayTotal: d.StayTotal.toMoney(),
		Total:     d.Total.toMoney(),
		Promo: domainreservation.PromoSnapshot{
			PromotionID:     domainpromotion.PromotionID(d.Promo.PromotionID),
			DiscountPercent: d.Promo.DiscountPercent,
			OriginalStay:    d.Promo.OriginalStay.toMoney(),
		},
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
		Version:   d.Version,
	}
	for _, line := range d.Amenities {
		resv.Amenities = append(resv.Amenities, domainreservation.AmenityLine{
			AmenityID: domainamenity.AmenityID(line.AmenityID),
			Name:      line.Name,
			UnitPrice: line.UnitPrice.toMoney(),
			Quantity:  line.Quantity,
		})
	}
	return resv
}

func newMoneyDocument(m money.Money) moneyDocument {
	return moneyDocument{Cents: m.Cents, Currency: m.Currency}
}

func (d moneyDocument) toMoney() money.Money {
	return money.Money{Cents: d.Cents, Currency: d.Currency}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
