package usecase

import "attrgo/internal/domain"

// defaultMedium labels conversions that arrived without any medium parameter.
const defaultMedium = "form"

// Project formats a record into the payload GoHighLevel expects: one block
// per touch, fixed schema, absent values as explicit nulls. The ip, ga*, ad*
// and utmKeyword/utmMatchtype fields are reserved for server-side enrichment
// and always null here.
func Project(record domain.Record) domain.Payload {
	return domain.Payload{
		AttributionSource:     projectSnapshot(record.FirstTouch),
		LastAttributionSource: projectSnapshot(record.LastTouch),
		VisitCount:            record.VisitCount,
		FirstTouchTimestamp:   record.FirstTouchTimestamp,
		LastTouchTimestamp:    record.LastTouchTimestamp,
	}
}

func projectSnapshot(snapshot domain.Snapshot) domain.SourceBlock {
	medium := snapshot.Medium
	if medium == "" {
		medium = snapshot.UTMMedium
	}
	if medium == "" {
		medium = defaultMedium
	}

	return domain.SourceBlock{
		SessionSource: ClassifySource(snapshot),
		URL:           nullable(snapshot.URL),
		Campaign:      nullable(snapshot.UTMCampaign),
		UTMSource:     nullable(snapshot.UTMSource),
		UTMMedium:     nullable(snapshot.UTMMedium),
		UTMContent:    nullable(snapshot.UTMContent),
		UTMTerm:       nullable(snapshot.UTMTerm),
		Referrer:      nullable(snapshot.Referrer),
		CampaignID:    nullable(snapshot.CampaignID),
		FBCLID:        nullable(snapshot.FBCLID),
		GCLID:         nullable(snapshot.GCLID),
		MSCLIKID:      nullable(snapshot.MSCLIKID),
		DCLID:         nullable(snapshot.DCLID),
		FBC:           nullable(snapshot.FBC),
		FBP:           nullable(snapshot.FBP),
		FBEventID:     nullable(snapshot.FBEventID),
		UserAgent:     nullable(snapshot.UserAgent),
		Medium:        medium,
		MediumID:      nullable(snapshot.MediumID),
		GBRAID:        nullable(snapshot.GBRAID),
		WBRAID:        nullable(snapshot.WBRAID),
	}
}

// nullable turns the empty-string absence sentinel into a JSON null.
func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
