package model

// LocationOther is the catch-all sub-county.
const LocationOther = "Other"

// Locations are the Kisii County sub-counties items and users are placed in.
var Locations = []string{
	"Bomachoge Borabu",
	"Bomachoge Chache",
	"Bobasi",
	"Bonchari",
	"Kitutu Chache North",
	"Kitutu Chache South",
	"Nyaribari Chache",
	"Nyaribari Masaba",
	"South Mugirango",
	"Ogembo",
	LocationOther,
}

// KnownLocation reports whether loc is one of Locations.
func KnownLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// DefaultAddresses are the suggested pickup points per sub-county.
var DefaultAddresses = map[string][]string{
	"Bomachoge Borabu": {
		"Nyabiomi Trading Center", "Nyamache Town", "Kegogi Market", "Nyamarambe Trading Center",
		"Bomorenda Shopping Center", "Mokomoni Market", "Borabu Corner", "Nyansakia Trading Center",
		"Nyamongo Market", "Rigoma Junction",
	},
	"Bomachoge Chache": {
		"Nyatieko Market", "Kisii University Campus Area", "Nyakoe Center", "Riana Shopping Center",
		"Egetuki Market", "Nyamage Trading Center", "Bokimonge Market", "Kionganyo Shopping Center",
		"Mogonga Center", "Nyanturago Trading Center",
	},
	"Bobasi": {
		"Nyamache Town", "Manga Market", "Nyamarambe Trading Center", "Getenga Shopping Center",
		"Boikanga Center", "Bokimonge Market", "Itierio Market", "Nyaisa Trading Center",
		"Mochenwa Market", "Bomorenda Shopping Center",
	},
	"Bonchari": {
		"Suneka Town", "Rongo University Campus Area", "Ogembo Town", "Kenyenya Market",
		"Kegogi Shopping Center", "Nyangiti Trading Center", "Bokimonge Market", "Nyaisa Market",
		"Bomorenda Center", "Rigoma Junction",
	},
	"Kitutu Chache North": {
		"Kisii Town Central", "Jogoo Road Area", "Mwembe Area", "Nyanchwa Estate",
		"Egesa Estate", "Daraja Mbili Area", "Mwembe TTI Area", "Nyamage Area",
		"Nyakoe Center", "Kisii Hospital Area",
	},
	"Kitutu Chache South": {
		"Daraja Mbili Area", "Egesa Estate", "Nyamataro Area", "Kegochi Market",
		"Nyakoe Center", "Mogonga Area", "Bokimonge Market", "Nyaisa Trading Center",
		"Riana Shopping Center", "Nyatieko Market",
	},
	"Nyaribari Chache": {
		"Itierio Market", "Kionganyo Area", "Riomega Shopping Center", "Kiamokama Market",
		"Nyakoe Center", "Mogonga Area", "Nyatieko Market", "Riana Shopping Center",
		"Egetuki Market", "Nyamage Trading Center",
	},
	"Nyaribari Masaba": {
		"Marani Market", "Keroka Town", "Magena Market", "Ekerenyo Shopping Center",
		"Nyamira Town", "Ikonge Market", "Rigoma Junction", "Bomorenda Shopping Center",
		"Nyansakia Trading Center", "Borabu Corner",
	},
	"South Mugirango": {
		"Nyamarambe Trading Center", "Ogembo Town", "Nyabigege Market", "Bokeira Market",
		"Kegogi Shopping Center", "Nyangiti Trading Center", "Bokimonge Market", "Nyaisa Market",
		"Bomorenda Center", "Rigoma Junction",
	},
	"Ogembo": {
		"Ogembo Town Center", "Rigoma Market", "Bonyamatuta Area", "Gesusu Shopping Center",
		"Nyabigege Market", "Bokeira Market", "Kegogi Shopping Center", "Nyangiti Trading Center",
		"Bokimonge Market", "Nyaisa Market",
	},
}
