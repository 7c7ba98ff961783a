package parking

// API paths relative to the base URL
const (
	pathPermit            = "/login/getbase"
	pathReservationCreate = "/reservation/create"
	pathReservationEnd    = "/reservation/end"
	pathFavoriteUpsert    = "/permitmedialicenseplate/upsert"
	pathFavoriteRemove    = "/permitmedialicenseplate/remove"
)

type licensePlatePayload struct {
	Value string  `json:"Value"`
	Name  *string `json:"Name"`
}

type createReservationPayload struct {
	PermitMediaTypeID int64               `json:"permitMediaTypeID"`
	PermitMediaCode   string              `json:"permitMediaCode"`
	DateFrom          string              `json:"DateFrom"`
	DateUntil         string              `json:"DateUntil,omitempty"`
	LicensePlate      licensePlatePayload `json:"LicensePlate"`
}

type endReservationPayload struct {
	ReservationID     int64  `json:"ReservationID"`
	PermitMediaTypeID int64  `json:"permitMediaTypeID"`
	PermitMediaCode   string `json:"permitMediaCode"`
}

type upsertFavoritePayload struct {
	PermitMediaTypeID  int64               `json:"permitMediaTypeID"`
	PermitMediaCode    string              `json:"permitMediaCode"`
	LicensePlate       licensePlatePayload `json:"licensePlate"`
	UpdateLicensePlate *string             `json:"updateLicensePlate"`
}

type removeFavoritePayload struct {
	PermitMediaTypeID int64   `json:"permitMediaTypeID"`
	PermitMediaCode   string  `json:"permitMediaCode"`
	LicensePlate      string  `json:"licensePlate"`
	Name              *string `json:"name"`
}
