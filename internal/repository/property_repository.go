package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lrotelli01/largebnb/internal/model"
)

// PropertyRepo provides CRUD and search access to the `properties` and
// `rooms` tables.  Amenity and photo lists are stored as JSON text
// columns.  It also implements the inventory lookups the reservation
// engine depends on: FindRoom, FindRoomByID and FindPropertyByRoom.
type PropertyRepo struct{ DB *sql.DB }

// NewPropertyRepo returns a new PropertyRepo bound to the given database.
func NewPropertyRepo(db *sql.DB) *PropertyRepo { return &PropertyRepo{DB: db} }

const propertyCols = `id, manager_id, name, description, address, city, region, country, email,
	latitude, longitude, amenities, photos, pois, rating_avg, rating_count, created_at, updated_at`

const roomCols = `id, property_id, name, room_type, beds, status, capacity_adults, capacity_children,
	price_adults, price_children, amenities, photos, created_at, updated_at`

func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	b, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(raw sql.NullString) []string {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil
	}
	return out
}

func encodePois(pois []model.PointOfInterest) string {
	if len(pois) == 0 {
		return "[]"
	}
	b, err := json.Marshal(pois)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodePois(raw sql.NullString) []model.PointOfInterest {
	if !raw.Valid || raw.String == "" {
		return nil
	}
	var out []model.PointOfInterest
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil
	}
	return out
}

func scanProperty(scan func(...any) error) (*model.Property, error) {
	var p model.Property
	var amenities, photos, pois sql.NullString
	err := scan(&p.ID, &p.ManagerID, &p.Name, &p.Description, &p.Address, &p.City, &p.Region, &p.Country,
		&p.Email, &p.Latitude, &p.Longitude, &amenities, &photos, &pois, &p.RatingAvg, &p.RatingCount,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Amenities = decodeList(amenities)
	p.Photos = decodeList(photos)
	p.Pois = decodePois(pois)
	return &p, nil
}

func scanRoom(scan func(...any) error) (*model.Room, error) {
	var rm model.Room
	var amenities, photos sql.NullString
	err := scan(&rm.ID, &rm.PropertyID, &rm.Name, &rm.RoomType, &rm.Beds, &rm.Status,
		&rm.CapacityAdults, &rm.CapacityChildren, &rm.PricePerNightAdults, &rm.PricePerNightChildren,
		&amenities, &photos, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rm.Amenities = decodeList(amenities)
	rm.Photos = decodeList(photos)
	return &rm, nil
}

// Create inserts a property and populates its generated ID.
func (r *PropertyRepo) Create(ctx context.Context, p *model.Property) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO properties (manager_id, name, description, address, city, region, country, email,
		 latitude, longitude, amenities, photos, pois) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ManagerID, p.Name, p.Description, p.Address, p.City, p.Region, p.Country, p.Email,
		p.Latitude, p.Longitude, encodeList(p.Amenities), encodeList(p.Photos), encodePois(p.Pois))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// Update rewrites the mutable fields of a property after verifying the
// caller manages it. Returns ErrForbidden on a manager mismatch.
func (r *PropertyRepo) Update(ctx context.Context, managerID uint64, p *model.Property) error {
	if err := r.ensureManaged(ctx, p.ID, managerID); err != nil {
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		`UPDATE properties SET name=?, description=?, address=?, city=?, region=?, country=?, email=?,
		 latitude=?, longitude=?, amenities=?, photos=?, pois=? WHERE id=?`,
		p.Name, p.Description, p.Address, p.City, p.Region, p.Country, p.Email,
		p.Latitude, p.Longitude, encodeList(p.Amenities), encodeList(p.Photos), encodePois(p.Pois), p.ID)
	return err
}

// Delete removes a property and its rooms. It refuses with ErrConflict
// while any non-cancelled reservation exists for one of its rooms.
func (r *PropertyRepo) Delete(ctx context.Context, managerID, propertyID uint64) error {
	if err := r.ensureManaged(ctx, propertyID, managerID); err != nil {
		return err
	}
	var active int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations res JOIN rooms rm ON rm.id = res.room_id
		 WHERE rm.property_id=? AND res.status <> ?`, propertyID, model.StatusCancelled).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM rooms WHERE property_id=?`, propertyID); err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `DELETE FROM properties WHERE id=?`, propertyID)
	return err
}

// GetByID returns a property with its rooms loaded.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (*model.Property, []model.Room, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+propertyCols+` FROM properties WHERE id=? LIMIT 1`, id)
	p, err := scanProperty(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	rooms, err := r.ListRooms(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return p, rooms, nil
}

// ListByManager returns every property owned by the manager.
func (r *PropertyRepo) ListByManager(ctx context.Context, managerID uint64) ([]model.Property, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+propertyCols+` FROM properties WHERE manager_id=? ORDER BY created_at DESC`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

// SearchFilter narrows the public property search. Zero values mean
// "no constraint".
type SearchFilter struct {
	City          string
	Country       string
	Adults        int
	Children      int
	MaxAdultPrice float64
}

// Search returns properties matching the filter. Capacity and price
// constraints apply to the rooms: a property matches when at least one
// of its rooms satisfies them.
func (r *PropertyRepo) Search(ctx context.Context, f SearchFilter) ([]model.Property, error) {
	q := `SELECT DISTINCT p.id, p.manager_id, p.name, p.description, p.address, p.city, p.region, p.country,
	       p.email, p.latitude, p.longitude, p.amenities, p.photos, p.rating_avg, p.rating_count,
	       p.created_at, p.updated_at
	      FROM properties p JOIN rooms rm ON rm.property_id = p.id
	      WHERE rm.status = ?`
	args := []any{model.RoomAvailable}
	if f.City != "" {
		q += ` AND LOWER(p.city) = ?`
		args = append(args, strings.ToLower(strings.TrimSpace(f.City)))
	}
	if f.Country != "" {
		q += ` AND LOWER(p.country) = ?`
		args = append(args, strings.ToLower(strings.TrimSpace(f.Country)))
	}
	if f.Adults > 0 {
		q += ` AND rm.capacity_adults >= ?`
		args = append(args, f.Adults)
	}
	if f.Children > 0 {
		q += ` AND rm.capacity_children >= ?`
		args = append(args, f.Children)
	}
	if f.MaxAdultPrice > 0 {
		q += ` AND rm.price_adults <= ?`
		args = append(args, f.MaxAdultPrice)
	}
	q += ` ORDER BY p.rating_avg DESC LIMIT 50`
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProperties(rows)
}

// GetManyByID hydrates a list of property IDs, preserving the input
// order. Unknown IDs are skipped.
func (r *PropertyRepo) GetManyByID(ctx context.Context, ids []uint64) ([]model.Property, error) {
	if len(ids) == 0 {
		return []model.Property{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+propertyCols+` FROM properties WHERE id IN (`+strings.Join(placeholders, ",")+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found, err := collectProperties(rows)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Property, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]model.Property, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// rooms ---------------------------------------------------------------

// CreateRoom inserts a room under a property owned by the manager.
func (r *PropertyRepo) CreateRoom(ctx context.Context, managerID uint64, rm *model.Room) error {
	if err := r.ensureManaged(ctx, rm.PropertyID, managerID); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO rooms (property_id, name, room_type, beds, status, capacity_adults, capacity_children,
		 price_adults, price_children, amenities, photos) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		rm.PropertyID, rm.Name, rm.RoomType, rm.Beds, rm.Status, rm.CapacityAdults, rm.CapacityChildren,
		rm.PricePerNightAdults, rm.PricePerNightChildren, encodeList(rm.Amenities), encodeList(rm.Photos))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// UpdateRoom rewrites a room's mutable fields, including its status
// (available/maintenance) and nightly rates.
func (r *PropertyRepo) UpdateRoom(ctx context.Context, managerID uint64, rm *model.Room) error {
	if err := r.ensureManaged(ctx, rm.PropertyID, managerID); err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE rooms SET name=?, room_type=?, beds=?, status=?, capacity_adults=?, capacity_children=?,
		 price_adults=?, price_children=?, amenities=?, photos=? WHERE id=? AND property_id=?`,
		rm.Name, rm.RoomType, rm.Beds, rm.Status, rm.CapacityAdults, rm.CapacityChildren,
		rm.PricePerNightAdults, rm.PricePerNightChildren, encodeList(rm.Amenities), encodeList(rm.Photos),
		rm.ID, rm.PropertyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRoom removes a room, refusing while non-cancelled reservations
// reference it.
func (r *PropertyRepo) DeleteRoom(ctx context.Context, managerID, propertyID, roomID uint64) error {
	if err := r.ensureManaged(ctx, propertyID, managerID); err != nil {
		return err
	}
	var active int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reservations WHERE room_id=? AND status <> ?`,
		roomID, model.StatusCancelled).Scan(&active)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM rooms WHERE id=? AND property_id=?`, roomID, propertyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRooms returns all rooms of a property.
func (r *PropertyRepo) ListRooms(ctx context.Context, propertyID uint64) ([]model.Room, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+roomCols+` FROM rooms WHERE property_id=? ORDER BY id`, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows.Scan)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *rm)
	}
	return rooms, rows.Err()
}

// ListRoomIDsByManager returns every room id across the manager's
// properties, used by the manager reservation views.
func (r *PropertyRepo) ListRoomIDsByManager(ctx context.Context, managerID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT rm.id FROM rooms rm JOIN properties p ON p.id = rm.property_id WHERE p.manager_id=?`, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// engine lookups ------------------------------------------------------

// FindRoom returns the room only when it belongs to the given property.
func (r *PropertyRepo) FindRoom(ctx context.Context, propertyID, roomID uint64) (*model.Room, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+roomCols+` FROM rooms WHERE id=? AND property_id=? LIMIT 1`, roomID, propertyID)
	rm, err := scanRoom(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: room %d in property %d", ErrNotFound, roomID, propertyID)
	}
	return rm, err
}

// FindRoomByID returns a room regardless of property.
func (r *PropertyRepo) FindRoomByID(ctx context.Context, roomID uint64) (*model.Room, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+roomCols+` FROM rooms WHERE id=? LIMIT 1`, roomID)
	rm, err := scanRoom(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: room %d", ErrNotFound, roomID)
	}
	return rm, err
}

// FindPropertyByRoom returns the property containing the room.
func (r *PropertyRepo) FindPropertyByRoom(ctx context.Context, roomID uint64) (*model.Property, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT p.id, p.manager_id, p.name, p.description, p.address, p.city, p.region, p.country, p.email,
		 p.latitude, p.longitude, p.amenities, p.photos, p.rating_avg, p.rating_count, p.created_at, p.updated_at
		 FROM properties p JOIN rooms rm ON rm.property_id = p.id WHERE rm.id=? LIMIT 1`, roomID)
	p, err := scanProperty(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: property for room %d", ErrNotFound, roomID)
	}
	return p, err
}

// UpdateRatingStats recomputes and stores the property's aggregate
// rating from its reviews.
func (r *PropertyRepo) UpdateRatingStats(ctx context.Context, propertyID uint64, avg float64, count uint32) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE properties SET rating_avg=?, rating_count=? WHERE id=?`, avg, count, propertyID)
	return err
}

func (r *PropertyRepo) ensureManaged(ctx context.Context, propertyID, managerID uint64) error {
	var owner uint64
	err := r.DB.QueryRowContext(ctx, `SELECT manager_id FROM properties WHERE id=? LIMIT 1`, propertyID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != managerID {
		return ErrForbidden
	}
	return nil
}

func collectProperties(rows *sql.Rows) ([]model.Property, error) {
	out := make([]model.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
