package models

import (
	"encoding/json"
	"time"

	"visit-dashboard/internal/table"
)

// Visit history column names, in display order.
const (
	ColPartySize        = "PartySize"
	ColSpaceID          = "SpaceId"
	ColLastRegisteredAt = "LastRegisteredAt"
	ColLastSeatedAt     = "LastSeatedAt"
	ColLastDepartedAt   = "LastDepartedAt"
	ColLastVisitRating  = "LastVisitRating"
	ColRequestStatus    = "RequestStatus"
	ColGuestTags        = "GuestTags"
	ColNoShowCount      = "NoShowCount"
	ColVisitDuration    = "VisitDuration"
	ColTimeToSeat       = "TimeToSeat"
	ColDaysPassed       = "DaysPassed"
	ColMonthsPassed     = "MonthsPassed"
)

var VisitColumns = []string{
	ColPartySize,
	ColSpaceID,
	ColLastRegisteredAt,
	ColLastSeatedAt,
	ColLastDepartedAt,
	ColLastVisitRating,
	ColRequestStatus,
	ColGuestTags,
	ColNoShowCount,
	ColVisitDuration,
	ColTimeToSeat,
	ColDaysPassed,
	ColMonthsPassed,
}

// Timestamp keeps the text as it appeared in the source file next to its
// parsed value. Time is nil when the cell was empty or unparseable.
type Timestamp struct {
	Raw  string
	Time *time.Time
}

func (t Timestamp) Valid() bool {
	return t.Time != nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.Raw)
}

// VisitRecord is one restaurant visit. Records are immutable once loaded.
type VisitRecord struct {
	RowID            int       `json:"id"`
	PartySize        *int      `json:"PartySize"`
	SpaceID          string    `json:"SpaceId"`
	LastRegisteredAt Timestamp `json:"LastRegisteredAt"`
	LastSeatedAt     Timestamp `json:"LastSeatedAt"`
	LastDepartedAt   Timestamp `json:"LastDepartedAt"`
	LastVisitRating  *float64  `json:"LastVisitRating"`
	RequestStatus    string    `json:"RequestStatus"`
	GuestTags        string    `json:"GuestTags"`
	NoShowCount      *int      `json:"NoShowCount"`
	VisitDuration    string    `json:"VisitDuration"`
	TimeToSeat       string    `json:"TimeToSeat"`
	DaysPassed       int       `json:"DaysPassed"`
	MonthsPassed     int       `json:"MonthsPassed"`
}

func (v VisitRecord) Cell(column string) table.Cell {
	switch column {
	case ColPartySize:
		return table.IntPtr(v.PartySize)
	case ColSpaceID:
		return table.Auto(v.SpaceID)
	case ColLastRegisteredAt:
		return table.Text(v.LastRegisteredAt.Raw)
	case ColLastSeatedAt:
		return table.Text(v.LastSeatedAt.Raw)
	case ColLastDepartedAt:
		return table.Text(v.LastDepartedAt.Raw)
	case ColLastVisitRating:
		return table.FloatPtr(v.LastVisitRating)
	case ColRequestStatus:
		return table.Text(v.RequestStatus)
	case ColGuestTags:
		return table.Text(v.GuestTags)
	case ColNoShowCount:
		return table.IntPtr(v.NoShowCount)
	case ColVisitDuration:
		return table.Auto(v.VisitDuration)
	case ColTimeToSeat:
		return table.Auto(v.TimeToSeat)
	case ColDaysPassed:
		return table.Int(v.DaysPassed)
	case ColMonthsPassed:
		return table.Int(v.MonthsPassed)
	}
	return table.Null()
}

// DateRange bounds the LastDepartedAt filter. A nil bound means the picker
// was cleared.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// Complete reports whether both bounds are set.
func (r DateRange) Complete() bool {
	return r.Start != nil && r.End != nil
}
