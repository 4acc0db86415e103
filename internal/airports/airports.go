// Package airports holds static IATA reference data used by provider
// adapters to fill fields their upstreams omit and to derive the
// currency an upstream will quote for a given origin.
package airports

import "strings"

type Info struct {
	Name string
	City string
}

var airportInfo = map[string]Info{
	// North America
	"JFK": {"John F. Kennedy International", "New York"},
	"LGA": {"LaGuardia", "New York"},
	"EWR": {"Newark Liberty International", "Newark"},
	"LAX": {"Los Angeles International", "Los Angeles"},
	"SFO": {"San Francisco International", "San Francisco"},
	"ORD": {"Chicago O'Hare International", "Chicago"},
	"MIA": {"Miami International", "Miami"},
	"LAS": {"Harry Reid International", "Las Vegas"},
	"SEA": {"Seattle-Tacoma International", "Seattle"},
	"DEN": {"Denver International", "Denver"},
	"ATL": {"Hartsfield-Jackson Atlanta International", "Atlanta"},
	"DFW": {"Dallas/Fort Worth International", "Dallas"},
	"BOS": {"Logan International", "Boston"},
	"YYZ": {"Toronto Pearson International", "Toronto"},
	"YVR": {"Vancouver International", "Vancouver"},
	// Europe
	"LHR": {"Heathrow", "London"},
	"LGW": {"Gatwick", "London"},
	"CDG": {"Charles de Gaulle", "Paris"},
	"ORY": {"Orly", "Paris"},
	"FRA": {"Frankfurt am Main", "Frankfurt"},
	"MUC": {"Munich", "Munich"},
	"AMS": {"Schiphol", "Amsterdam"},
	"MAD": {"Adolfo Suarez Madrid-Barajas", "Madrid"},
	"BCN": {"Josep Tarradellas Barcelona-El Prat", "Barcelona"},
	"FCO": {"Leonardo da Vinci-Fiumicino", "Rome"},
	"ZRH": {"Zurich", "Zurich"},
	"VIE": {"Vienna International", "Vienna"},
	"CPH": {"Copenhagen Kastrup", "Copenhagen"},
	"ARN": {"Stockholm Arlanda", "Stockholm"},
	"OSL": {"Oslo Gardermoen", "Oslo"},
	"DUB": {"Dublin", "Dublin"},
	"LIS": {"Humberto Delgado", "Lisbon"},
	"ATH": {"Athens International", "Athens"},
	"IST": {"Istanbul", "Istanbul"},
	// Asia Pacific
	"NRT": {"Narita International", "Tokyo"},
	"HND": {"Haneda", "Tokyo"},
	"ICN": {"Incheon International", "Seoul"},
	"PVG": {"Shanghai Pudong International", "Shanghai"},
	"PEK": {"Beijing Capital International", "Beijing"},
	"HKG": {"Hong Kong International", "Hong Kong"},
	"SIN": {"Changi", "Singapore"},
	"BKK": {"Suvarnabhumi", "Bangkok"},
	"KUL": {"Kuala Lumpur International", "Kuala Lumpur"},
	"CGK": {"Soekarno-Hatta International", "Jakarta"},
	"DPS": {"Ngurah Rai International", "Denpasar"},
	"SYD": {"Sydney Kingsford Smith", "Sydney"},
	"MEL": {"Melbourne Tullamarine", "Melbourne"},
	"AKL": {"Auckland", "Auckland"},
	// Middle East / India
	"DXB": {"Dubai International", "Dubai"},
	"DOH": {"Hamad International", "Doha"},
	"TLV": {"Ben Gurion", "Tel Aviv"},
	"DEL": {"Indira Gandhi International", "Delhi"},
	"BOM": {"Chhatrapati Shivaji Maharaj International", "Mumbai"},
	// South America / Africa
	"GRU": {"Sao Paulo-Guarulhos International", "Sao Paulo"},
	"EZE": {"Ministro Pistarini International", "Buenos Aires"},
	"SCL": {"Arturo Merino Benitez International", "Santiago"},
	"JNB": {"O.R. Tambo International", "Johannesburg"},
	"CPT": {"Cape Town International", "Cape Town"},
	"CAI": {"Cairo International", "Cairo"},
	"NBO": {"Jomo Kenyatta International", "Nairobi"},
}

// Lookup returns reference data for an airport code. Unknown codes get
// the code itself as both name and city so adapters never emit empty
// required fields.
func Lookup(code string) Info {
	code = strings.ToUpper(code)
	if info, ok := airportInfo[code]; ok {
		return info
	}
	return Info{Name: code, City: code}
}

var airportCurrency = map[string]string{
	"LHR": "GBP", "LGW": "GBP",
	"CDG": "EUR", "ORY": "EUR", "FRA": "EUR", "MUC": "EUR", "AMS": "EUR",
	"MAD": "EUR", "BCN": "EUR", "FCO": "EUR", "VIE": "EUR", "DUB": "EUR",
	"LIS": "EUR", "ATH": "EUR",
	"ZRH": "CHF",
	"CPH": "DKK",
	"ARN": "SEK",
	"OSL": "NOK",
	"IST": "TRY",
	"NRT": "JPY", "HND": "JPY",
	"ICN": "KRW",
	"PVG": "CNY", "PEK": "CNY",
	"HKG": "HKD",
	"SIN": "SGD",
	"BKK": "THB",
	"KUL": "MYR",
	"CGK": "IDR", "DPS": "IDR",
	"SYD": "AUD", "MEL": "AUD",
	"AKL": "NZD",
	"DXB": "AED",
	"DOH": "QAR",
	"TLV": "ILS",
	"DEL": "INR", "BOM": "INR",
	"YYZ": "CAD", "YVR": "CAD",
	"GRU": "BRL",
	"EZE": "ARS",
	"SCL": "CLP",
	"JNB": "ZAR", "CPT": "ZAR",
	"CAI": "EGP",
	"NBO": "KES",
}

// Currency returns the currency upstream scrapers quote for searches
// departing the given airport. USD is the fallback for unknown codes.
func Currency(code string) string {
	if cur, ok := airportCurrency[strings.ToUpper(code)]; ok {
		return cur
	}
	return "USD"
}

var airlineNames = map[string]string{
	"AA": "American Airlines",
	"DL": "Delta Air Lines",
	"UA": "United Airlines",
	"WN": "Southwest Airlines",
	"B6": "JetBlue Airways",
	"AS": "Alaska Airlines",
	"F9": "Frontier Airlines",
	"NK": "Spirit Airlines",
	"BA": "British Airways",
	"AF": "Air France",
	"KL": "KLM Royal Dutch Airlines",
	"LH": "Lufthansa",
	"IB": "Iberia",
	"EK": "Emirates",
	"QR": "Qatar Airways",
	"SQ": "Singapore Airlines",
	"CX": "Cathay Pacific",
	"JL": "Japan Airlines",
	"NH": "All Nippon Airways",
	"QF": "Qantas",
}

// AirlineName resolves an IATA airline code to its marketing name,
// falling back to the code when unknown.
func AirlineName(code string) string {
	if name, ok := airlineNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}

// routeHours carries rough great-circle flight times for routes whose
// upstream omits schedule data entirely (Travelpayouts price feeds).
var routeHours = map[[2]string]int{
	{"JFK", "LAX"}: 6, {"LAX", "JFK"}: 5,
	{"JFK", "MIA"}: 3, {"MIA", "JFK"}: 3,
	{"JFK", "ORD"}: 2, {"ORD", "JFK"}: 2,
	{"JFK", "LHR"}: 7, {"LHR", "JFK"}: 8,
	{"JFK", "CDG"}: 7, {"CDG", "JFK"}: 8,
	{"LAX", "SFO"}: 1, {"SFO", "LAX"}: 1,
	{"LAX", "NRT"}: 11, {"NRT", "LAX"}: 10,
	{"LHR", "DXB"}: 7, {"DXB", "LHR"}: 8,
	{"SIN", "SYD"}: 8, {"SYD", "SIN"}: 8,
}

const defaultRouteHours = 4

// EstimateDurationMinutes estimates flight time for a route. This is a
// documented approximation used only when an upstream provides prices
// without schedules; unknown routes get a 4 hour estimate.
func EstimateDurationMinutes(origin, destination string) int {
	key := [2]string{strings.ToUpper(origin), strings.ToUpper(destination)}
	if hours, ok := routeHours[key]; ok {
		return hours * 60
	}
	return defaultRouteHours * 60
}
