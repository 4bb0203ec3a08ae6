package domain

import "time"

// Attraction is a point of interest with an entrance fee and a click counter.
type Attraction struct {
	ID               int64
	Name             string
	ShortDescription string
	EntranceFee      float64
	Photos           []string
	TrafficCount     int64
}

// AttractionUpdate carries a partial attraction change. Nil fields are left untouched.
type AttractionUpdate struct {
	Name             *string
	ShortDescription *string
	EntranceFee      *float64
	Photos           []string
}

// IsEmpty reports whether no field was supplied.
func (u AttractionUpdate) IsEmpty() bool {
	return u.Name == nil && u.ShortDescription == nil && u.EntranceFee == nil && u.Photos == nil
}

// Apply merges the update into the attraction.
func (u AttractionUpdate) Apply(a *Attraction) {
	if u.Name != nil {
		a.Name = *u.Name
	}
	if u.ShortDescription != nil {
		a.ShortDescription = *u.ShortDescription
	}
	if u.EntranceFee != nil {
		a.EntranceFee = *u.EntranceFee
	}
	if u.Photos != nil {
		a.Photos = append([]string(nil), u.Photos...)
	}
}

// Trip is a named itinerary spanning a list of days and visiting attractions in order.
type Trip struct {
	ID          int64
	Name        string
	Days        []string
	Attractions []Attraction
}

// TripDraft is the input used to create or replace a trip.
type TripDraft struct {
	Name          string
	Days          []string
	AttractionIDs []int64
}

// Review is a user's rating of an attraction.
type Review struct {
	ID           int64
	AttractionID int64
	UserID       int64
	UserName     string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

// TrafficAnalytics summarises attraction click counts.
type TrafficAnalytics struct {
	TotalClicks            int64
	MostVisitedAttractions []string
}
