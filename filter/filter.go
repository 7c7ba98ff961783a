package filter

import (
	"strings"
	"time"

	"github.com/s0up4200/parkctl/parking"
)

// record is the common shape reservations and favorites are evaluated as
type record struct {
	id     int64
	plate  string
	name   string
	start  time.Time
	end    time.Time
	active func(time.Time) bool
}

func reservationRecord(r *parking.Reservation) record {
	return record{
		id:     r.ID,
		plate:  r.LicensePlate,
		name:   r.Name,
		start:  r.StartTime,
		end:    r.EndTime,
		active: r.IsActive,
	}
}

func favoriteRecord(f *parking.Favorite) record {
	rec := record{plate: f.LicensePlate}
	if f.Name != nil {
		rec.name = *f.Name
	}
	return rec
}

// MatchReservation reports whether the reservation satisfies the program
func (p *Program) MatchReservation(r parking.Reservation) (bool, error) {
	return p.run(reservationRecord(&r))
}

// MatchFavorite reports whether the favorite satisfies the program.
// Favorites have no id or time window; those fields are zero.
func (p *Program) MatchFavorite(f parking.Favorite) (bool, error) {
	return p.run(favoriteRecord(&f))
}

// Reservations returns the reservations matching p, in input order
func Reservations(p *Program, reservations []parking.Reservation) ([]parking.Reservation, error) {
	var matches []parking.Reservation
	for _, r := range reservations {
		ok, err := p.MatchReservation(r)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, r)
		}
	}
	return matches, nil
}

// Favorites returns the favorites matching p, in input order
func Favorites(p *Program, favorites []parking.Favorite) ([]parking.Favorite, error) {
	var matches []parking.Favorite
	for _, f := range favorites {
		ok, err := p.MatchFavorite(f)
		if err != nil {
			return nil, err
		}
		if ok {
			matches = append(matches, f)
		}
	}
	return matches, nil
}

// environment builds the variables and helpers visible to an expression.
// Compile uses the zero record, so every entry must keep the same type.
func environment(rec record, now time.Time) map[string]any {
	env := make(map[string]any, 16)

	env["id"] = rec.id
	env["plate"] = rec.plate
	env["name"] = rec.name
	env["start"] = rec.start
	env["end"] = rec.end
	env["now"] = now

	// Case-insensitive string helpers. The contains and startsWith
	// operators are case-sensitive; lower and upper are expr builtins.
	env["containsFold"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	env["startsWithFold"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}

	// Time helpers
	env["hoursUntil"] = func(t time.Time) float64 {
		return t.Sub(now).Hours()
	}
	env["minutesLeft"] = func() int {
		if rec.end.IsZero() || !rec.end.After(now) {
			return 0
		}
		return int(rec.end.Sub(now).Minutes())
	}
	env["isActive"] = func() bool {
		return rec.active != nil && rec.active(now)
	}

	return env
}
