package parking

import (
	"time"
)

// Account summarises the active permit-media
type Account struct {
	ID                     int64 `json:"id"`
	RemainingTime          int64 `json:"remaining_time"`
	ActiveReservationCount int   `json:"active_reservation_count"`
}

// Zone is the paid parking block for the current day
type Zone struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Reservation is a parking reservation for a license plate
type Reservation struct {
	ID           int64     `json:"id"`
	LicensePlate string    `json:"license_plate"`
	Name         string    `json:"name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
}

// IsActive reports whether the reservation covers t
func (r *Reservation) IsActive(t time.Time) bool {
	return !t.Before(r.StartTime) && t.Before(r.EndTime)
}

// Favorite is a saved license plate
type Favorite struct {
	LicensePlate string  `json:"license_plate"`
	Name         *string `json:"name"`
}

// DisplayName returns the favorite's name, falling back to the plate
func (f *Favorite) DisplayName() string {
	if f.Name != nil && *f.Name != "" {
		return *f.Name
	}
	return f.LicensePlate
}

func parseAccount(media map[string]any) (*Account, error) {
	reservations, err := optionalArray(media, "ActiveReservations", "permit_media.ActiveReservations")
	if err != nil {
		return nil, err
	}
	id, err := intField(media, "Code", "permit_media.Code")
	if err != nil {
		return nil, err
	}
	balance, err := intField(media, "Balance", "permit_media.Balance")
	if err != nil {
		return nil, err
	}

	return &Account{
		ID:                     id,
		RemainingTime:          balance,
		ActiveReservationCount: len(reservations),
	}, nil
}

// parseZone selects the earliest non-free block starting today. "Today" is
// evaluated in each block's own offset, not the caller's.
func parseZone(permit map[string]any, now time.Time) (*Zone, error) {
	zoneCode, err := stringField(permit, "ZoneCode", "permit.ZoneCode")
	if err != nil {
		return nil, err
	}
	blocks, err := asArray(permit["BlockTimes"], "permit.BlockTimes")
	if err != nil {
		return nil, err
	}

	var best *Zone
	for _, raw := range blocks {
		block, err := asObject(raw, "permit.BlockTimes item")
		if err != nil {
			return nil, err
		}
		if free, _ := block["IsFree"].(bool); free {
			continue
		}

		start, err := timeField(block, "ValidFrom", "block.ValidFrom")
		if err != nil {
			return nil, err
		}
		end, err := timeField(block, "ValidUntil", "block.ValidUntil")
		if err != nil {
			return nil, err
		}
		if !sameDay(start, now.In(start.Location())) {
			continue
		}

		if best == nil || start.Before(best.StartTime) {
			best = &Zone{ID: zoneCode, StartTime: start, EndTime: end}
		}
	}

	if best == nil {
		return nil, nil
	}
	best.StartTime = NormalizeTime(best.StartTime)
	best.EndTime = NormalizeTime(best.EndTime)
	return best, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func parseReservation(obj map[string]any) (*Reservation, error) {
	id, err := intField(obj, "ReservationID", "reservation.ReservationID")
	if err != nil {
		return nil, err
	}
	plate, err := asObject(obj["LicensePlate"], "reservation.LicensePlate")
	if err != nil {
		return nil, err
	}
	value, err := stringField(plate, "Value", "reservation.LicensePlate.Value")
	if err != nil {
		return nil, err
	}
	display, err := stringField(plate, "DisplayValue", "reservation.LicensePlate.DisplayValue")
	if err != nil {
		return nil, err
	}
	start, err := timeField(obj, "ValidFrom", "reservation.ValidFrom")
	if err != nil {
		return nil, err
	}
	end, err := timeField(obj, "ValidUntil", "reservation.ValidUntil")
	if err != nil {
		return nil, err
	}

	return &Reservation{
		ID:           id,
		LicensePlate: value,
		Name:         display,
		StartTime:    NormalizeTime(start),
		EndTime:      NormalizeTime(end),
	}, nil
}

func parseReservations(media map[string]any) ([]Reservation, error) {
	items, err := optionalArray(media, "ActiveReservations", "permit_media.ActiveReservations")
	if err != nil {
		return nil, err
	}
	reservations := make([]Reservation, 0, len(items))
	for _, item := range items {
		obj, err := asObject(item, "reservation")
		if err != nil {
			return nil, err
		}
		r, err := parseReservation(obj)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *r)
	}
	return reservations, nil
}

func parseFavorite(obj map[string]any) (*Favorite, error) {
	plate, err := stringField(obj, "Value", "favorite.Value")
	if err != nil {
		return nil, err
	}
	name, err := optionalStringField(obj, "Name", "favorite.Name")
	if err != nil {
		return nil, err
	}
	return &Favorite{LicensePlate: plate, Name: name}, nil
}

func parseFavorites(media map[string]any) ([]Favorite, error) {
	items, err := optionalArray(media, "LicensePlates", "permit_media.LicensePlates")
	if err != nil {
		return nil, err
	}
	favorites := make([]Favorite, 0, len(items))
	for _, item := range items {
		obj, err := asObject(item, "favorite")
		if err != nil {
			return nil, err
		}
		f, err := parseFavorite(obj)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, *f)
	}
	return favorites, nil
}
