// Package lexeme provides the lexical units of a TAC message and the ordered
// sequences the tokenizer and reconstructor exchange.
package lexeme

// Identity is the token kind a lexeme has been recognised as.
type Identity string

// Report starts and modifiers.
const (
	MetarStart   Identity = "METAR_START"
	SpeciStart   Identity = "SPECI_START"
	TAFStart     Identity = "TAF_START"
	SigmetStart  Identity = "SIGMET_START"
	AirmetStart  Identity = "AIRMET_START"
	Amendment    Identity = "AMENDMENT"
	Correction   Identity = "CORRECTION"
	Cancellation Identity = "CANCELLATION"
	Nil          Identity = "NIL"
	Automated    Identity = "AUTOMATED"
)

// Aerodrome observation and forecast groups.
const (
	AerodromeDesignator   Identity = "AERODROME_DESIGNATOR"
	IssueTime             Identity = "ISSUE_TIME"
	ValidTime             Identity = "VALID_TIME"
	SurfaceWind           Identity = "SURFACE_WIND"
	VariableWindDirection Identity = "VARIABLE_WIND_DIRECTION"
	HorizontalVisibility  Identity = "HORIZONTAL_VISIBILITY"
	CAVOK                 Identity = "CAVOK"
	RunwayVisualRange     Identity = "RUNWAY_VISUAL_RANGE"
	Weather               Identity = "WEATHER"
	RecentWeather         Identity = "RECENT_WEATHER"
	NoSignificantWeather  Identity = "NO_SIGNIFICANT_WEATHER"
	Cloud                 Identity = "CLOUD"
	AirDewpointTemp       Identity = "AIR_DEWPOINT_TEMPERATURE"
	AirPressureQNH        Identity = "AIR_PRESSURE_QNH"
	WindShear             Identity = "WIND_SHEAR"
	SeaState              Identity = "SEA_STATE"
	RunwayState           Identity = "RUNWAY_STATE"
	MinMaxTemperature     Identity = "MIN_MAX_TEMPERATURE"
)

// Trends and change forecasts.
const (
	TrendChangeIndicator    Identity = "TREND_CHANGE_INDICATOR"
	TrendTimeGroup          Identity = "TREND_TIME_GROUP"
	ForecastChangeIndicator Identity = "FORECAST_CHANGE_INDICATOR"
	ChangeForecastTimeGroup Identity = "CHANGE_FORECAST_TIME_GROUP"
)

// SIGMET and AIRMET groups.
const (
	LocationIndicator   Identity = "LOCATION_INDICATOR"
	SequenceDescriptor  Identity = "SEQUENCE_DESCRIPTOR"
	MWODesignator       Identity = "MWO_DESIGNATOR"
	FIRDesignator       Identity = "FIR_DESIGNATOR"
	FIRName             Identity = "FIR_NAME"
	FIRType             Identity = "FIR_TYPE"
	Phenomenon          Identity = "PHENOMENON"
	ObservedOrForecast  Identity = "OBS_OR_FORECAST"
	WithinKeyword       Identity = "WITHIN"
	EntireArea          Identity = "ENTIRE_AREA"
	CoordinatePair      Identity = "COORDINATE_PAIR"
	PolygonSeparator    Identity = "POLYGON_SEPARATOR"
	FlightLevel         Identity = "FLIGHT_LEVEL"
	Movement            Identity = "MOVEMENT"
	IntensityChange     Identity = "INTENSITY_CHANGE"
	CancelledReportRef  Identity = "CANCELLED_REPORT"
)

// Remarks, terminator and the catch-all.
const (
	RemarksStart Identity = "REMARKS_START"
	Remark       Identity = "REMARK"
	EndToken     Identity = "END_TOKEN"
	Unknown      Identity = "UNKNOWN"
)

var knownIdentities = map[Identity]bool{}

func init() {
	for _, id := range []Identity{
		MetarStart, SpeciStart, TAFStart, SigmetStart, AirmetStart, Amendment, Correction,
		Cancellation, Nil, Automated, AerodromeDesignator, IssueTime, ValidTime, SurfaceWind,
		VariableWindDirection, HorizontalVisibility, CAVOK, RunwayVisualRange, Weather,
		RecentWeather, NoSignificantWeather, Cloud, AirDewpointTemp, AirPressureQNH, WindShear,
		SeaState, RunwayState, MinMaxTemperature, TrendChangeIndicator, TrendTimeGroup,
		ForecastChangeIndicator, ChangeForecastTimeGroup, LocationIndicator, SequenceDescriptor,
		MWODesignator, FIRDesignator, FIRName, FIRType, Phenomenon, ObservedOrForecast,
		WithinKeyword, EntireArea, CoordinatePair, PolygonSeparator, FlightLevel, Movement,
		IntensityChange, CancelledReportRef, RemarksStart, Remark, EndToken, Unknown,
	} {
		knownIdentities[id] = true
	}
}

// Valid reports whether id belongs to the closed identity set.
func (id Identity) Valid() bool { return knownIdentities[id] }

func (id Identity) String() string { return string(id) }

// IsReportStart reports whether id opens a message.
func (id Identity) IsReportStart() bool {
	switch id {
	case MetarStart, SpeciStart, TAFStart, SigmetStart, AirmetStart:
		return true
	}
	return false
}
