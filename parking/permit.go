package parking

// Wire keys for permit data.
const (
	keyPermit       = "Permit"
	keyPermits      = "Permits"
	keyPermitMedias = "PermitMedias"
)

// permitRecord is the active permit and its primary permit-media. Both the
// singular "Permit" and plural "Permits" response shapes resolve to this.
type permitRecord struct {
	permit map[string]any
	media  map[string]any
}

// extractPermit locates the active permit and permit-media in a decoded response.
func extractPermit(data any) (*permitRecord, error) {
	root, err := asObject(data, "response")
	if err != nil {
		return nil, err
	}

	var permit map[string]any
	if raw, ok := root[keyPermit]; ok {
		permit, err = asObject(raw, "permit")
	} else if raw, ok := root[keyPermits]; ok {
		permit, err = firstObject(raw, "permits")
	} else {
		return nil, parseErrorf("response", "expected permit data")
	}
	if err != nil {
		return nil, err
	}

	media, err := firstObject(permit[keyPermitMedias], "permit.PermitMedias")
	if err != nil {
		return nil, err
	}

	return &permitRecord{permit: permit, media: media}, nil
}

// hasPermitData reports whether a decoded response carries permit data at all.
func hasPermitData(data any) bool {
	root, ok := data.(map[string]any)
	if !ok {
		return false
	}
	_, single := root[keyPermit]
	_, plural := root[keyPermits]
	return single || plural
}

// mediaDefaults reads the type id and code that mutation payloads need.
func (p *permitRecord) mediaDefaults() (int64, string, error) {
	typeID, err := intField(p.media, "TypeID", "permit_media.TypeID")
	if err != nil {
		return 0, "", err
	}
	code, err := stringField(p.media, "Code", "permit_media.Code")
	if err != nil {
		return 0, "", err
	}
	return typeID, code, nil
}
