package parking

import (
	"context"
)

// API defines the parking operations exposed by Client
type API interface {
	GetAccount(ctx context.Context) (*Account, error)
	GetZone(ctx context.Context) (*Zone, error)

	ListReservations(ctx context.Context) ([]Reservation, error)
	CreateReservation(ctx context.Context, req CreateReservationRequest, opts ...MediaOption) (*Reservation, error)
	EndReservation(ctx context.Context, reservationID int64, opts ...MediaOption) error
	DeleteReservation(ctx context.Context, reservationID int64) error

	ListFavorites(ctx context.Context) ([]Favorite, error)
	CreateFavorite(ctx context.Context, licensePlate string, name *string) (*Favorite, error)
	UpdateFavorite(ctx context.Context, licensePlate string, name *string) (*Favorite, error)
	DeleteFavorite(ctx context.Context, licensePlate string, name *string) error
}

var _ API = (*Client)(nil)
