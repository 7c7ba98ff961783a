package parking

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAccount(t *testing.T) {
	p := defaultPermit()
	p.reservations = []any{reservationItem()}
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, p.payload())

	account, err := api.newClient().GetAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(32600), account.ID)
	assert.Equal(t, int64(6996), account.RemainingTime)
	assert.Equal(t, 1, account.ActiveReservationCount)
}

func TestGetAccountPluralPermits(t *testing.T) {
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, map[string]any{
		"Permits": []any{defaultPermit().permit()},
	})
	client := api.newClient()

	account, err := client.GetAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(32600), account.ID)

	typeID, code := client.Auth().MediaDefaults()
	require.NotNil(t, typeID)
	require.NotNil(t, code)
	assert.Equal(t, int64(1), *typeID)
	assert.Equal(t, "32600", *code)
}

func TestGetAccountBadResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr error
	}{
		{name: "invalid JSON", status: http.StatusOK, body: "not-json", wantErr: ErrParse},
		{name: "empty body", status: http.StatusOK, body: "", wantErr: ErrParse},
		{name: "empty permits", status: http.StatusOK, body: map[string]any{"Permits": []any{}}, wantErr: ErrParse},
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantErr: ErrConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI(t).withLogin()
			api.on(http.MethodPost, "/login/getbase", tt.status, tt.body)

			_, err := api.newClient().GetAccount(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("status is reported", func(t *testing.T) {
		api := newFakeAPI(t).withLogin()
		api.on(http.MethodPost, "/login/getbase", http.StatusBadGateway, nil)

		_, err := api.newClient().GetAccount(context.Background())
		var connErr *ConnectionError
		require.True(t, errors.As(err, &connErr))
		assert.Equal(t, http.StatusBadGateway, connErr.StatusCode)
	})
}

func TestListReservationsReauthRetry(t *testing.T) {
	p := defaultPermit()
	p.reservations = []any{reservationItem()}
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusUnauthorized, nil)
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, p.payload())

	reservations, err := api.newClient().ListReservations(context.Background())
	require.NoError(t, err)
	require.Len(t, reservations, 1)

	r := reservations[0]
	assert.Equal(t, int64(1844553), r.ID)
	assert.Equal(t, "AA11BB", r.Name)
	assert.Equal(t, "2025-12-23T00:47:00+00:00", FormatTime(r.StartTime))
	assert.Equal(t, "2025-12-23T23:59:00+00:00", FormatTime(r.EndTime))
	assert.Equal(t, 2, api.count(http.MethodPost, "/login"))
}

func TestGetZone(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	p := defaultPermit()
	p.blockTimes = []any{
		map[string]any{"ValidFrom": "2025-06-01T18:00:00+00:00", "ValidUntil": "2025-06-01T23:00:00+00:00", "IsFree": false},
	}
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, p.payload())

	zone, err := api.newClient(WithClock(func() time.Time { return now })).GetZone(context.Background())
	require.NoError(t, err)
	require.NotNil(t, zone)
	assert.Equal(t, "zone 4", zone.ID)
	assert.Equal(t, "2025-06-01T18:00:00+00:00", FormatTime(zone.StartTime))
	assert.Equal(t, "2025-06-01T23:00:00+00:00", FormatTime(zone.EndTime))

	later := now.AddDate(0, 0, 1)
	zone, err = api.newClient(WithClock(func() time.Time { return later })).GetZone(context.Background())
	require.NoError(t, err)
	assert.Nil(t, zone)
}

func TestListFavorites(t *testing.T) {
	p := defaultPermit()
	p.plates = []any{favoriteItem()}
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, p.payload())

	favorites, err := api.newClient().ListFavorites(context.Background())
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, "AA11BBCC", favorites[0].LicensePlate)
	assert.Equal(t, strPtr("Test"), favorites[0].Name)
}

func TestUpdateFavoriteRemovesThenUpserts(t *testing.T) {
	p := defaultPermit()
	p.plates = []any{favoriteItem()}
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, p.payload())
	api.on(http.MethodPost, "/permitmedialicenseplate/remove", http.StatusOK, map[string]any{})
	api.on(http.MethodPost, "/permitmedialicenseplate/upsert", http.StatusOK, map[string]any{})

	favorite, err := api.newClient().UpdateFavorite(context.Background(), "AA11BBCC", strPtr("New Name"))
	require.NoError(t, err)
	assert.Equal(t, "AA11BBCC", favorite.LicensePlate)
	assert.Equal(t, strPtr("New Name"), favorite.Name)

	remove := api.request(http.MethodPost, "/permitmedialicenseplate/remove", 0).body
	assert.EqualValues(t, 1, remove["permitMediaTypeID"])
	assert.Equal(t, "32600", remove["permitMediaCode"])
	assert.Equal(t, "AA11BBCC", remove["licensePlate"])
	assert.Equal(t, "Test", remove["name"])

	upsert := api.request(http.MethodPost, "/permitmedialicenseplate/upsert", 0).body
	assert.EqualValues(t, 1, upsert["permitMediaTypeID"])
	assert.Equal(t, "32600", upsert["permitMediaCode"])
	plate, ok := upsert["licensePlate"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AA11BBCC", plate["Value"])
	assert.Equal(t, "New Name", plate["Name"])
	assert.Contains(t, upsert, "updateLicensePlate")
	assert.Nil(t, upsert["updateLicensePlate"])

	// Defaults came from the listing; no second permit fetch.
	assert.Equal(t, 1, api.count(http.MethodPost, "/login/getbase"))
}

func TestUpdateFavoriteWithoutExisting(t *testing.T) {
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, defaultPermit().payload())
	api.on(http.MethodPost, "/permitmedialicenseplate/upsert", http.StatusOK, nil)

	favorite, err := api.newClient().UpdateFavorite(context.Background(), "ZZ00ZZ", nil)
	require.NoError(t, err)
	assert.Nil(t, favorite.Name)
	assert.Equal(t, 0, api.count(http.MethodPost, "/permitmedialicenseplate/remove"))
	assert.Equal(t, 1, api.count(http.MethodPost, "/permitmedialicenseplate/upsert"))
}

func TestCreateFavoriteRefreshesDefaults(t *testing.T) {
	p := defaultPermit()
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, p.payload())

	updated := defaultPermit()
	updated.code = "99999"
	updated.typeID = 4
	api.on(http.MethodPost, "/permitmedialicenseplate/upsert", http.StatusOK, updated.payload())
	client := api.newClient()

	favorite, err := client.CreateFavorite(context.Background(), "AB12CD", strPtr("Car"))
	require.NoError(t, err)
	assert.Equal(t, &Favorite{LicensePlate: "AB12CD", Name: strPtr("Car")}, favorite)

	typeID, code := client.Auth().MediaDefaults()
	assert.Equal(t, int64(4), *typeID)
	assert.Equal(t, "99999", *code)
}

func TestCreateReservation(t *testing.T) {
	from := time.Date(2025, 12, 23, 0, 47, 0, 0, time.UTC)
	until := time.Date(2025, 12, 23, 23, 59, 0, 0, time.UTC)

	t.Run("payload and echo", func(t *testing.T) {
		p := defaultPermit()
		p.reservations = []any{reservationItem()}
		api := newFakeAPI(t).withLogin()
		api.on(http.MethodPost, "/reservation/create", http.StatusOK, p.payload())

		reservation, err := api.newClient().CreateReservation(context.Background(), CreateReservationRequest{
			LicensePlate: "AA11BB",
			Name:         "Visitor",
			DateFrom:     from,
			DateUntil:    until,
		}, WithPermitMediaTypeID(1), WithPermitMediaCode("32600"))
		require.NoError(t, err)
		assert.Equal(t, int64(1844553), reservation.ID)

		body := api.request(http.MethodPost, "/reservation/create", 0).body
		assert.Equal(t, "32600", body["permitMediaCode"])
		assert.EqualValues(t, 1, body["permitMediaTypeID"])
		assert.Equal(t, "2025-12-23T00:47:00+00:00", body["DateFrom"])
		assert.Equal(t, "2025-12-23T23:59:00+00:00", body["DateUntil"])
		assert.Equal(t, map[string]any{"Value": "AA11BB", "Name": "Visitor"}, body["LicensePlate"])

		// Overrides given: no permit fetch needed.
		assert.Equal(t, 0, api.count(http.MethodPost, "/login/getbase"))
	})

	t.Run("selects matching entry", func(t *testing.T) {
		other := reservationItem()
		other["ReservationID"] = 1
		other["LicensePlate"] = map[string]any{"Value": "ZZ99ZZ", "DisplayValue": "ZZ99ZZ"}
		earlier := reservationItem()
		earlier["ReservationID"] = 2
		earlier["ValidFrom"] = "2025-12-22T10:00:00"

		p := defaultPermit()
		p.reservations = []any{other, earlier, reservationItem()}
		api := newFakeAPI(t).withLogin()
		api.on(http.MethodPost, "/login/getbase", http.StatusOK, defaultPermit().payload())
		api.on(http.MethodPost, "/reservation/create", http.StatusOK, p.payload())

		reservation, err := api.newClient().CreateReservation(context.Background(), CreateReservationRequest{
			LicensePlate: "AA11BB",
			DateFrom:     from.In(time.FixedZone("", 3600)),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1844553), reservation.ID)

		body := api.request(http.MethodPost, "/reservation/create", 0).body
		assert.Equal(t, "2025-12-23T01:47:00+01:00", body["DateFrom"])
		assert.NotContains(t, body, "DateUntil")
		assert.Equal(t, map[string]any{"Value": "AA11BB", "Name": nil}, body["LicensePlate"])
		assert.Equal(t, 1, api.count(http.MethodPost, "/login/getbase"))
	})

	t.Run("falls back to first entry", func(t *testing.T) {
		first := reservationItem()
		first["ReservationID"] = 10
		first["LicensePlate"] = map[string]any{"Value": "ZZ99ZZ", "DisplayValue": "ZZ99ZZ"}

		p := defaultPermit()
		p.reservations = []any{first}
		api := newFakeAPI(t).withLogin()
		api.on(http.MethodPost, "/reservation/create", http.StatusOK, p.payload())

		reservation, err := api.newClient().CreateReservation(context.Background(), CreateReservationRequest{
			LicensePlate: "AA11BB",
			DateFrom:     from,
		}, WithPermitMediaTypeID(1), WithPermitMediaCode("32600"))
		require.NoError(t, err)
		assert.Equal(t, int64(10), reservation.ID)
	})

	t.Run("defaults to now", func(t *testing.T) {
		p := defaultPermit()
		p.reservations = []any{reservationItem()}
		api := newFakeAPI(t).withLogin()
		api.on(http.MethodPost, "/reservation/create", http.StatusOK, p.payload())
		client := api.newClient(WithClock(func() time.Time { return from.Add(500 * time.Millisecond) }))

		reservation, err := client.CreateReservation(context.Background(), CreateReservationRequest{LicensePlate: "AA11BB"},
			WithPermitMediaTypeID(1), WithPermitMediaCode("32600"))
		require.NoError(t, err)
		assert.Equal(t, int64(1844553), reservation.ID)
		assert.Equal(t, "2025-12-23T00:47:00+00:00", api.request(http.MethodPost, "/reservation/create", 0).body["DateFrom"])
	})

	t.Run("no reservations echoed", func(t *testing.T) {
		api := newFakeAPI(t).withLogin()
		api.on(http.MethodPost, "/reservation/create", http.StatusOK, defaultPermit().payload())

		_, err := api.newClient().CreateReservation(context.Background(), CreateReservationRequest{LicensePlate: "AA11BB"},
			WithPermitMediaTypeID(1), WithPermitMediaCode("32600"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParse)
		assert.Contains(t, err.Error(), "no active reservations")
	})
}

func TestEndReservationResolvesDefaultsOnce(t *testing.T) {
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, defaultPermit().payload())
	api.on(http.MethodPost, "/reservation/end", http.StatusOK, nil)
	client := api.newClient()
	ctx := context.Background()

	require.NoError(t, client.EndReservation(ctx, 1844553))
	require.NoError(t, client.DeleteReservation(ctx, 1844554))

	assert.Equal(t, 1, api.count(http.MethodPost, "/login/getbase"))
	assert.Equal(t, 2, api.count(http.MethodPost, "/reservation/end"))

	first := api.request(http.MethodPost, "/reservation/end", 0).body
	assert.EqualValues(t, 1844553, first["ReservationID"])
	assert.EqualValues(t, 1, first["permitMediaTypeID"])
	assert.Equal(t, "32600", first["permitMediaCode"])
	assert.EqualValues(t, 1844554, api.request(http.MethodPost, "/reservation/end", 1).body["ReservationID"])
}

func TestEndReservationOverrides(t *testing.T) {
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/reservation/end", http.StatusOK, nil)

	err := api.newClient().EndReservation(context.Background(), 5, WithPermitMediaTypeID(9), WithPermitMediaCode("X1"))
	require.NoError(t, err)

	body := api.request(http.MethodPost, "/reservation/end", 0).body
	assert.EqualValues(t, 9, body["permitMediaTypeID"])
	assert.Equal(t, "X1", body["permitMediaCode"])
	assert.Equal(t, 0, api.count(http.MethodPost, "/login/getbase"))
}

func TestMutationMissingDefaults(t *testing.T) {
	p := defaultPermit()
	payload := p.payload()
	media := payload["Permit"].(map[string]any)["PermitMedias"].([]any)[0].(map[string]any)
	delete(media, "Code")

	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/login/getbase", http.StatusOK, payload)

	err := api.newClient().DeleteFavorite(context.Background(), "AA11BB", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.Equal(t, 0, api.count(http.MethodPost, "/permitmedialicenseplate/remove"))
}

func TestMutationWhitespaceBody(t *testing.T) {
	api := newFakeAPI(t).withLogin()
	api.on(http.MethodPost, "/reservation/end", http.StatusOK, " \n\t")

	err := api.newClient().EndReservation(context.Background(), 5, WithPermitMediaTypeID(1), WithPermitMediaCode("32600"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
}
