package parking

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Client exposes the parking operations on top of a shared session
type Client struct {
	auth   *Auth
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a client for one account. No network call is made until the
// first operation.
func New(cfg Config, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	auth, err := newAuth(cfg, o)
	if err != nil {
		return nil, err
	}

	return &Client{
		auth:   auth,
		logger: o.logger,
		now:    o.now,
	}, nil
}

// Auth returns the session used by the client
func (c *Client) Auth() *Auth {
	return c.auth
}

// GetAccount returns the balance summary of the active permit-media
func (c *Client) GetAccount(ctx context.Context) (*Account, error) {
	rec, err := c.fetchPermit(ctx)
	if err != nil {
		return nil, err
	}
	return parseAccount(rec.media)
}

// GetZone returns today's paid block for the permit zone, or nil when
// parking is free all day.
func (c *Client) GetZone(ctx context.Context) (*Zone, error) {
	rec, err := c.fetchPermit(ctx)
	if err != nil {
		return nil, err
	}
	return parseZone(rec.permit, c.now())
}

// ListReservations returns the active reservations
func (c *Client) ListReservations(ctx context.Context) ([]Reservation, error) {
	rec, err := c.fetchPermit(ctx)
	if err != nil {
		return nil, err
	}
	return parseReservations(rec.media)
}

// CreateReservationRequest describes a new reservation.
type CreateReservationRequest struct {
	LicensePlate string
	// Name is the plate's display name; empty sends null.
	Name string
	// DateFrom defaults to now when zero.
	DateFrom time.Time
	// DateUntil is omitted when zero and the API picks the end.
	DateUntil time.Time
}

// CreateReservation books parking for a plate and returns the reservation
// as echoed in the response.
func (c *Client) CreateReservation(ctx context.Context, req CreateReservationRequest, opts ...MediaOption) (*Reservation, error) {
	typeID, code, err := c.resolveMedia(ctx, opts)
	if err != nil {
		return nil, err
	}

	from := req.DateFrom
	if from.IsZero() {
		from = c.now()
	}

	payload := createReservationPayload{
		PermitMediaTypeID: typeID,
		PermitMediaCode:   code,
		DateFrom:          formatAPITime(from),
		LicensePlate: licensePlatePayload{
			Value: req.LicensePlate,
			Name:  optionalString(req.Name),
		},
	}
	if !req.DateUntil.IsZero() {
		payload.DateUntil = formatAPITime(req.DateUntil)
	}

	data, err := c.post(ctx, pathReservationCreate, payload)
	if err != nil {
		return nil, err
	}

	rec, err := extractPermit(data)
	if err != nil {
		return nil, err
	}
	if err := c.adoptDefaults(rec); err != nil {
		return nil, err
	}

	reservation, err := pickReservation(rec, req.LicensePlate, from, req.DateUntil)
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Int64("reservation_id", reservation.ID).
		Str("license_plate", reservation.LicensePlate).
		Msg("Successfully created reservation")
	return reservation, nil
}

// EndReservation stops an active reservation
func (c *Client) EndReservation(ctx context.Context, reservationID int64, opts ...MediaOption) error {
	typeID, code, err := c.resolveMedia(ctx, opts)
	if err != nil {
		return err
	}

	data, err := c.post(ctx, pathReservationEnd, endReservationPayload{
		ReservationID:     reservationID,
		PermitMediaTypeID: typeID,
		PermitMediaCode:   code,
	})
	if err != nil {
		return err
	}
	if err := c.refreshDefaults(data); err != nil {
		return err
	}

	c.logger.Info().Int64("reservation_id", reservationID).Msg("Successfully ended reservation")
	return nil
}

// DeleteReservation ends the reservation; the API has no separate delete
func (c *Client) DeleteReservation(ctx context.Context, reservationID int64) error {
	return c.EndReservation(ctx, reservationID)
}

// ListFavorites returns the saved license plates
func (c *Client) ListFavorites(ctx context.Context) ([]Favorite, error) {
	rec, err := c.fetchPermit(ctx)
	if err != nil {
		return nil, err
	}
	return parseFavorites(rec.media)
}

// CreateFavorite saves a license plate with an optional name
func (c *Client) CreateFavorite(ctx context.Context, licensePlate string, name *string) (*Favorite, error) {
	if err := c.upsertFavorite(ctx, licensePlate, name); err != nil {
		return nil, err
	}
	return &Favorite{LicensePlate: licensePlate, Name: name}, nil
}

// UpdateFavorite renames a favorite. The API has no update call, so an
// existing entry with the same plate is removed before the upsert.
func (c *Client) UpdateFavorite(ctx context.Context, licensePlate string, name *string) (*Favorite, error) {
	favorites, err := c.ListFavorites(ctx)
	if err != nil {
		return nil, err
	}

	for _, f := range favorites {
		if f.LicensePlate != licensePlate {
			continue
		}
		if err := c.DeleteFavorite(ctx, licensePlate, f.Name); err != nil {
			return nil, err
		}
		break
	}

	if err := c.upsertFavorite(ctx, licensePlate, name); err != nil {
		return nil, err
	}
	return &Favorite{LicensePlate: licensePlate, Name: name}, nil
}

// DeleteFavorite removes a saved plate. The API matches on plate and name.
func (c *Client) DeleteFavorite(ctx context.Context, licensePlate string, name *string) error {
	typeID, code, err := c.resolveMedia(ctx, nil)
	if err != nil {
		return err
	}

	data, err := c.post(ctx, pathFavoriteRemove, removeFavoritePayload{
		PermitMediaTypeID: typeID,
		PermitMediaCode:   code,
		LicensePlate:      licensePlate,
		Name:              name,
	})
	if err != nil {
		return err
	}
	if err := c.refreshDefaults(data); err != nil {
		return err
	}

	c.logger.Info().Str("license_plate", licensePlate).Msg("Successfully removed favorite")
	return nil
}

func (c *Client) upsertFavorite(ctx context.Context, licensePlate string, name *string) error {
	typeID, code, err := c.resolveMedia(ctx, nil)
	if err != nil {
		return err
	}

	data, err := c.post(ctx, pathFavoriteUpsert, upsertFavoritePayload{
		PermitMediaTypeID: typeID,
		PermitMediaCode:   code,
		LicensePlate:      licensePlatePayload{Value: licensePlate, Name: name},
	})
	if err != nil {
		return err
	}
	if err := c.refreshDefaults(data); err != nil {
		return err
	}

	c.logger.Info().Str("license_plate", licensePlate).Msg("Successfully saved favorite")
	return nil
}

func (c *Client) fetchPermit(ctx context.Context) (*permitRecord, error) {
	data, err := c.post(ctx, pathPermit, nil)
	if err != nil {
		return nil, err
	}
	rec, err := extractPermit(data)
	if err != nil {
		return nil, err
	}
	if err := c.adoptDefaults(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// resolveMedia fills in the permit-media type id and code for a mutation,
// fetching permit data once if the session does not know them yet.
func (c *Client) resolveMedia(ctx context.Context, opts []MediaOption) (int64, string, error) {
	var o mediaOverride
	for _, opt := range opts {
		opt(&o)
	}

	typeID, code := o.typeID, o.code
	if typeID == nil || code == nil {
		defType, defCode := c.auth.MediaDefaults()
		if defType == nil || defCode == nil {
			if _, err := c.fetchPermit(ctx); err != nil {
				return 0, "", err
			}
			defType, defCode = c.auth.MediaDefaults()
		}
		if typeID == nil {
			typeID = defType
		}
		if code == nil {
			code = defCode
		}
	}

	if typeID == nil || code == nil {
		return 0, "", parseErrorf("permit_media", "missing permit media defaults")
	}
	return *typeID, *code, nil
}

func (c *Client) adoptDefaults(rec *permitRecord) error {
	typeID, code, err := rec.mediaDefaults()
	if err != nil {
		return err
	}
	c.auth.setMediaDefaults(typeID, code)
	return nil
}

// refreshDefaults adopts permit-media defaults from a mutation response
// when it carries permit data.
func (c *Client) refreshDefaults(data any) error {
	if !hasPermitData(data) {
		return nil
	}
	rec, err := extractPermit(data)
	if err != nil {
		return err
	}
	return c.adoptDefaults(rec)
}

// post sends an authenticated POST and decodes the response body.
func (c *Client) post(ctx context.Context, path string, body any) (any, error) {
	resp, err := c.auth.Request(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		closeBody(resp)
		return nil, &ConnectionError{Op: "POST " + path, StatusCode: resp.StatusCode}
	}

	raw, err := readBody(resp, "POST "+path)
	if err != nil {
		return nil, err
	}
	return DecodeBody(raw)
}

// pickReservation finds the reservation just created. The response does not
// identify it, so match on plate and normalized times, else take the first.
func pickReservation(rec *permitRecord, licensePlate string, from, until time.Time) (*Reservation, error) {
	reservations, err := parseReservations(rec.media)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return nil, parseErrorf("permit_media.ActiveReservations", "no active reservations in response")
	}

	wantStart := NormalizeTime(from)
	for i := range reservations {
		r := &reservations[i]
		if r.LicensePlate != licensePlate {
			continue
		}
		if !r.StartTime.Equal(wantStart) {
			continue
		}
		if !until.IsZero() && !r.EndTime.Equal(NormalizeTime(until)) {
			continue
		}
		return r, nil
	}
	return &reservations[0], nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
