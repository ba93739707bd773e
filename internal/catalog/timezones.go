// Package catalog holds the fixed lookup tables shown to operators:
// time zones, suppression modes, schedule labels and entity types.
package catalog

// TimeZone is one selectable time zone.
type TimeZone struct {
	ID      string   `json:"id"`
	Offset  string   `json:"offset"`
	City    string   `json:"city"`
	Aliases []string `json:"aliases,omitempty"`
	Hidden  bool     `json:"-"`
}

// Unknown is returned for offsets and cities of unlisted zones.
const Unknown = "?"

var timeZones = []TimeZone{
	{ID: "Pacific/Honolulu", Offset: "−10:00", City: "Honolulu", Aliases: []string{"US/Hawaii"}},
	{ID: "America/Anchorage", Offset: "−09:00/08:00", City: "Anchorage", Aliases: []string{"US/Alaska"}},
	{ID: "America/Los_Angeles", Offset: "−08:00/07:00", City: "Los Angeles", Aliases: []string{"US/Pacific", "PST8PDT", "America/Vancouver", "Canada/Pacific"}},
	{ID: "America/Phoenix", Offset: "−07:00", City: "Phoenix", Aliases: []string{"US/Arizona"}},
	{ID: "America/Denver", Offset: "−07:00/06:00", City: "Denver", Aliases: []string{"US/Mountain", "MST7MDT", "Canada/Mountain"}},
	{ID: "America/Mexico_City", Offset: "−06:00", City: "Mexico City"},
	{ID: "America/Chicago", Offset: "−06:00/05:00", City: "Chicago", Aliases: []string{"US/Central", "CST6CDT", "Canada/Central"}},
	{ID: "America/Bogota", Offset: "−05:00", City: "Bogotá"},
	{ID: "America/Lima", Offset: "−05:00", City: "Lima", Hidden: true},
	{ID: "America/New_York", Offset: "−05:00/04:00", City: "New York", Aliases: []string{"US/Eastern", "EST5EDT", "America/Toronto", "Canada/Eastern"}},
	{ID: "America/Caracas", Offset: "−04:00", City: "Caracas"},
	{ID: "America/Halifax", Offset: "−04:00/03:00", City: "Halifax", Aliases: []string{"AST4ADT", "Canada/Atlantic"}, Hidden: true},
	{ID: "America/Santiago", Offset: "−04:00/03:00", City: "Santiago"},
	{ID: "America/Sao_Paulo", Offset: "−03:00", City: "São Paulo"},
	{ID: "America/Buenos_Aires", Offset: "−03:00", City: "Buenos Aires", Hidden: true},
	{ID: "UTC", Offset: "+00:00", City: "Accra", Aliases: []string{"Etc/UTC", "Etc/GMT"}},
	{ID: "Europe/London", Offset: "+00:00/01:00", City: "London", Aliases: []string{"Europe/Dublin", "Europe/Lisbon"}},
	{ID: "Africa/Lagos", Offset: "+01:00", City: "Lagos"},
	{ID: "Europe/Paris", Offset: "+01:00/02:00", City: "Paris", Aliases: []string{"Europe/Amsterdam", "Europe/Rome", "Europe/Madrid", "Europe/Stockholm", "Europe/Warsaw"}},
	{ID: "Europe/Berlin", Offset: "+01:00/02:00", City: "Berlin", Hidden: true},
	{ID: "Africa/Johannesburg", Offset: "+02:00", City: "Johannesburg", Hidden: true},
	{ID: "Africa/Cairo", Offset: "+02:00", City: "Cairo"},
	{ID: "Europe/Athens", Offset: "+02:00/03:00", City: "Athens"},
	{ID: "Europe/Helsinki", Offset: "+02:00/03:00", City: "Helsinki", Aliases: []string{"Europe/Bucharest"}, Hidden: true},
	{ID: "Asia/Jerusalem", Offset: "+02:00/03:00", City: "Jerusalem", Hidden: true},
	{ID: "Europe/Moscow", Offset: "+03:00", City: "Moscow", Hidden: true},
	{ID: "Europe/Istanbul", Offset: "+03:00", City: "Istanbul"},
	{ID: "Asia/Riyadh", Offset: "+03:00", City: "Riyadh", Hidden: true},
	{ID: "Asia/Dubai", Offset: "+04:00", City: "Dubai"},
	{ID: "Asia/Karachi", Offset: "+05:00", City: "Karachi"},
	{ID: "Asia/Kolkata", Offset: "+05:30", City: "Kolkata", Aliases: []string{"Asia/Calcutta", "Asia/Mumbai", "Asia/Delhi", "Asia/Chennai", "Asia/Bangalore"}},
	{ID: "Asia/Bangkok", Offset: "+07:00", City: "Bangkok", Aliases: []string{"Asia/Ho_Chi_Minh"}, Hidden: true},
	{ID: "Asia/Jakarta", Offset: "+07:00", City: "Jakarta"},
	{ID: "Asia/Singapore", Offset: "+08:00", City: "Singapore", Aliases: []string{"Asia/Kuala_Lumpur"}, Hidden: true},
	{ID: "Asia/Hong_Kong", Offset: "+08:00", City: "Hong Kong", Hidden: true},
	{ID: "Asia/Shanghai", Offset: "+08:00", City: "Shanghai", Aliases: []string{"Asia/Taipei"}},
	{ID: "Asia/Manila", Offset: "+08:00", City: "Manila", Hidden: true},
	{ID: "Australia/Perth", Offset: "+08:00", City: "Perth", Aliases: []string{"Australia/West"}, Hidden: true},
	{ID: "Asia/Seoul", Offset: "+09:00", City: "Seoul", Hidden: true},
	{ID: "Asia/Tokyo", Offset: "+09:00", City: "Tokyo"},
	{ID: "Australia/Darwin", Offset: "+09:30", City: "Darwin", Aliases: []string{"Australia/North"}},
	{ID: "Australia/Adelaide", Offset: "+09:30/10:30", City: "Adelaide", Aliases: []string{"Australia/South"}},
	{ID: "Australia/Brisbane", Offset: "+10:00", City: "Brisbane", Aliases: []string{"Australia/Queensland"}},
	{ID: "Australia/Sydney", Offset: "+10:00/11:00", City: "Sydney", Aliases: []string{"Australia/Melbourne", "Australia/Victoria", "Australia/NSW"}},
	{ID: "Pacific/Auckland", Offset: "+12:00/13:00", City: "Auckland"},
}

// timeZoneByID maps every ID and alias to its canonical entry.
var timeZoneByID = func() map[string]TimeZone {
	m := make(map[string]TimeZone, len(timeZones)*2)
	for _, tz := range timeZones {
		m[tz.ID] = tz
		for _, alias := range tz.Aliases {
			m[alias] = tz
		}
	}
	return m
}()

// TimeZoneOptions returns the zones offered for selection, in display order.
func TimeZoneOptions() []TimeZone {
	out := make([]TimeZone, 0, len(timeZones))
	for _, tz := range timeZones {
		if !tz.Hidden {
			out = append(out, tz)
		}
	}
	return out
}

// TimeZoneOffset returns the UTC offset label for a zone ID or alias.
func TimeZoneOffset(id string) string {
	if tz, ok := timeZoneByID[id]; ok {
		return tz.Offset
	}
	return Unknown
}

// TimeZoneCity returns the representative city for a zone ID or alias.
func TimeZoneCity(id string) string {
	if tz, ok := timeZoneByID[id]; ok {
		return tz.City
	}
	return Unknown
}

// CanonicalTimeZone maps an ID or alias to its listed zone, defaulting to UTC.
func CanonicalTimeZone(id string) string {
	if tz, ok := timeZoneByID[id]; ok {
		return tz.ID
	}
	return "UTC"
}
