package model

import "time"

// Room status values.  Only available rooms can receive new holds; a
// room under maintenance is invisible to the booking flow.
const (
	RoomAvailable   = "available"
	RoomMaintenance = "maintenance"
)

// PointOfInterest is a nearby attraction attached to a property, shown
// on the detail page. Stored inline as JSON on the property row.
type PointOfInterest struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"` // museum, park, beach, ...
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Property represents a listing in the `properties` table.  A property
// belongs to exactly one manager and contains one or more rooms, stored
// in the `rooms` table.
//
// Fields:
//  ID          – primary key identifier.
//  ManagerID   – owning manager.
//  Name        – display name of the property.
//  Description – free-text description.
//  Address     – street address.
//  City        – city, used by search and content-based recommendations.
//  Region      – region or state.
//  Country     – country.
//  Email       – contact email for the property.
//  Latitude    – WGS84 latitude.
//  Longitude   – WGS84 longitude.
//  Amenities   – property-level amenity labels.
//  Photos      – photo URLs.
//  Pois        – nearby points of interest.
//  RatingAvg   – average review rating, derived from reviews.
//  RatingCount – number of reviews contributing to the average.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Property struct {
	ID          uint64            // properties.id
	ManagerID   uint64            // properties.manager_id
	Name        string            // properties.name
	Description string            // properties.description
	Address     string            // properties.address
	City        string            // properties.city
	Region      string            // properties.region
	Country     string            // properties.country
	Email       string            // properties.email
	Latitude    float64           // properties.latitude
	Longitude   float64           // properties.longitude
	Amenities   []string          // properties.amenities (JSON)
	Photos      []string          // properties.photos (JSON)
	Pois        []PointOfInterest // properties.pois (JSON)
	RatingAvg   float64           // properties.rating_avg
	RatingCount uint32            // properties.rating_count
	CreatedAt   time.Time         // properties.created_at
	UpdatedAt   time.Time         // properties.updated_at
}

// Room describes a bookable unit inside a property.  Capacity and the
// two nightly rates are the inputs to the pricing function; they are
// read fresh at hold creation and again at confirmation, so prices may
// drift between the two reads.
//
// Fields:
//  ID                    – primary key identifier.
//  PropertyID            – property this room belongs to.
//  Name                  – display name, e.g. "Sea View Double".
//  RoomType              – e.g. "double", "suite".
//  Beds                  – number of beds.
//  Status                – RoomAvailable or RoomMaintenance.
//  CapacityAdults        – maximum adults.
//  CapacityChildren      – maximum children.
//  PricePerNightAdults   – nightly rate per adult.
//  PricePerNightChildren – nightly rate per child.
//  Amenities             – room-level amenity labels.
//  Photos                – photo URLs.
//  CreatedAt             – creation timestamp.
//  UpdatedAt             – last update timestamp.
type Room struct {
	ID                    uint64    // rooms.id
	PropertyID            uint64    // rooms.property_id
	Name                  string    // rooms.name
	RoomType              string    // rooms.room_type
	Beds                  uint16    // rooms.beds
	Status                string    // rooms.status
	CapacityAdults        int       // rooms.capacity_adults
	CapacityChildren      int       // rooms.capacity_children
	PricePerNightAdults   float64   // rooms.price_adults
	PricePerNightChildren float64   // rooms.price_children
	Amenities             []string  // rooms.amenities (JSON)
	Photos                []string  // rooms.photos (JSON)
	CreatedAt             time.Time // rooms.created_at
	UpdatedAt             time.Time // rooms.updated_at
}
