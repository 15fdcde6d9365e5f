package currency

import "github.com/gramistella/yfin/pkg/models"

// countryToCurrency maps normalized country names to ISO 4217 codes. Keys
// are the output of normalizeCountry: uppercase ASCII, punctuation and
// accents folded away.
var countryToCurrency = map[string]models.Currency{
	// North America
	"UNITED STATES":            "USD",
	"UNITED STATES OF AMERICA": "USD",
	"USA":                      "USD",
	"CANADA":                   "CAD",
	"MEXICO":                   "MXN",

	// Eurozone
	"AUSTRIA":     "EUR",
	"BELGIUM":     "EUR",
	"CROATIA":     "EUR",
	"CYPRUS":      "EUR",
	"ESTONIA":     "EUR",
	"FINLAND":     "EUR",
	"FRANCE":      "EUR",
	"GERMANY":     "EUR",
	"GREECE":      "EUR",
	"IRELAND":     "EUR",
	"ITALY":       "EUR",
	"LATVIA":      "EUR",
	"LITHUANIA":   "EUR",
	"LUXEMBOURG":  "EUR",
	"MALTA":       "EUR",
	"MONACO":      "EUR",
	"MONTENEGRO":  "EUR",
	"NETHERLANDS": "EUR",
	"PORTUGAL":    "EUR",
	"SAN MARINO":  "EUR",
	"SLOVAKIA":    "EUR",
	"SLOVENIA":    "EUR",
	"SPAIN":       "EUR",
	"ANDORRA":     "EUR",
	"KOSOVO":      "EUR",
	"VATICAN CITY": "EUR",

	// Rest of Europe
	"UNITED KINGDOM":         "GBP",
	"GREAT BRITAIN":          "GBP",
	"ENGLAND":                "GBP",
	"SCOTLAND":               "GBP",
	"WALES":                  "GBP",
	"NORTHERN IRELAND":       "GBP",
	"ISLE OF MAN":            "GBP",
	"JERSEY":                 "GBP",
	"GUERNSEY":               "GBP",
	"GIBRALTAR":              "GIP",
	"SWITZERLAND":            "CHF",
	"LIECHTENSTEIN":          "CHF",
	"NORWAY":                 "NOK",
	"SWEDEN":                 "SEK",
	"DENMARK":                "DKK",
	"GREENLAND":              "DKK",
	"FAROE ISLANDS":          "DKK",
	"ICELAND":                "ISK",
	"POLAND":                 "PLN",
	"CZECH REPUBLIC":         "CZK",
	"CZECHIA":                "CZK",
	"HUNGARY":                "HUF",
	"ROMANIA":                "RON",
	"BULGARIA":               "BGN",
	"SERBIA":                 "RSD",
	"BOSNIA AND HERZEGOVINA": "BAM",
	"NORTH MACEDONIA":        "MKD",
	"MACEDONIA":              "MKD",
	"ALBANIA":                "ALL",
	"MOLDOVA":                "MDL",
	"UKRAINE":                "UAH",
	"BELARUS":                "BYN",
	"RUSSIA":                 "RUB",
	"RUSSIAN FEDERATION":     "RUB",
	"TURKEY":                 "TRY",
	"TURKIYE":                "TRY",

	// Asia-Pacific
	"JAPAN":                    "JPY",
	"CHINA":                    "CNY",
	"PEOPLES REPUBLIC OF CHINA": "CNY",
	"HONG KONG":                "HKD",
	"MACAU":                    "MOP",
	"MACAO":                    "MOP",
	"TAIWAN":                   "TWD",
	"SOUTH KOREA":              "KRW",
	"KOREA":                    "KRW",
	"REPUBLIC OF KOREA":        "KRW",
	"NORTH KOREA":              "KPW",
	"INDIA":                    "INR",
	"PAKISTAN":                 "PKR",
	"BANGLADESH":               "BDT",
	"SRI LANKA":                "LKR",
	"NEPAL":                    "NPR",
	"BHUTAN":                   "BTN",
	"MALDIVES":                 "MVR",
	"SINGAPORE":                "SGD",
	"MALAYSIA":                 "MYR",
	"INDONESIA":                "IDR",
	"THAILAND":                 "THB",
	"VIETNAM":                  "VND",
	"VIET NAM":                 "VND",
	"PHILIPPINES":              "PHP",
	"CAMBODIA":                 "KHR",
	"LAOS":                     "LAK",
	"MYANMAR":                  "MMK",
	"BRUNEI":                   "BND",
	"MONGOLIA":                 "MNT",
	"AUSTRALIA":                "AUD",
	"NEW ZEALAND":              "NZD",
	"FIJI":                     "FJD",
	"PAPUA NEW GUINEA":         "PGK",
	"SOLOMON ISLANDS":          "SBD",
	"VANUATU":                  "VUV",
	"SAMOA":                    "WST",
	"TONGA":                    "TOP",
	"KIRIBATI":                 "AUD",
	"TUVALU":                   "AUD",
	"NAURU":                    "AUD",
	"PALAU":                    "USD",
	"MICRONESIA":               "USD",
	"MARSHALL ISLANDS":         "USD",

	// Middle East & Central Asia
	"ISRAEL":               "ILS",
	"SAUDI ARABIA":         "SAR",
	"UNITED ARAB EMIRATES": "AED",
	"QATAR":                "QAR",
	"KUWAIT":               "KWD",
	"BAHRAIN":              "BHD",
	"OMAN":                 "OMR",
	"JORDAN":               "JOD",
	"LEBANON":              "LBP",
	"IRAQ":                 "IQD",
	"IRAN":                 "IRR",
	"SYRIA":                "SYP",
	"YEMEN":                "YER",
	"AFGHANISTAN":          "AFN",
	"KAZAKHSTAN":           "KZT",
	"UZBEKISTAN":           "UZS",
	"TURKMENISTAN":         "TMT",
	"KYRGYZSTAN":           "KGS",
	"TAJIKISTAN":           "TJS",
	"AZERBAIJAN":           "AZN",
	"ARMENIA":              "AMD",
	"GEORGIA":              "GEL",

	// South & Central America, Caribbean
	"BRAZIL":              "BRL",
	"ARGENTINA":           "ARS",
	"CHILE":               "CLP",
	"COLOMBIA":            "COP",
	"PERU":                "PEN",
	"VENEZUELA":           "VES",
	"URUGUAY":             "UYU",
	"PARAGUAY":            "PYG",
	"BOLIVIA":             "BOB",
	"ECUADOR":             "USD",
	"GUYANA":              "GYD",
	"SURINAME":            "SRD",
	"PANAMA":              "USD",
	"EL SALVADOR":         "USD",
	"COSTA RICA":          "CRC",
	"GUATEMALA":           "GTQ",
	"HONDURAS":            "HNL",
	"NICARAGUA":           "NIO",
	"BELIZE":              "BZD",
	"CUBA":                "CUP",
	"JAMAICA":             "JMD",
	"HAITI":               "HTG",
	"DOMINICAN REPUBLIC":  "DOP",
	"TRINIDAD AND TOBAGO": "TTD",
	"BARBADOS":            "BBD",
	"BAHAMAS":             "BSD",
	"BERMUDA":             "BMD",
	"CAYMAN ISLANDS":      "KYD",
	"ARUBA":               "AWG",
	"CURACAO":             "ANG",
	"PUERTO RICO":         "USD",
	// Eastern Caribbean dollar zone
	"ANTIGUA AND BARBUDA":              "XCD",
	"DOMINICA":                         "XCD",
	"GRENADA":                          "XCD",
	"SAINT KITTS AND NEVIS":            "XCD",
	"SAINT LUCIA":                      "XCD",
	"SAINT VINCENT AND THE GRENADINES": "XCD",
	"ANGUILLA":                         "XCD",
	"MONTSERRAT":                       "XCD",

	// Africa
	"SOUTH AFRICA": "ZAR",
	"NIGERIA":      "NGN",
	"EGYPT":        "EGP",
	"KENYA":        "KES",
	"ETHIOPIA":     "ETB",
	"GHANA":        "GHS",
	"TANZANIA":     "TZS",
	"UGANDA":       "UGX",
	"MOROCCO":      "MAD",
	"ALGERIA":      "DZD",
	"TUNISIA":      "TND",
	"LIBYA":        "LYD",
	"SUDAN":        "SDG",
	"ANGOLA":       "AOA",
	"MOZAMBIQUE":   "MZN",
	"ZAMBIA":       "ZMW",
	"ZIMBABWE":     "ZWL",
	"BOTSWANA":     "BWP",
	"NAMIBIA":      "NAD",
	"LESOTHO":      "LSL",
	"ESWATINI":     "SZL",
	"SWAZILAND":    "SZL",
	"MALAWI":       "MWK",
	"RWANDA":       "RWF",
	"BURUNDI":      "BIF",
	"SOMALIA":      "SOS",
	"DJIBOUTI":     "DJF",
	"ERITREA":      "ERN",
	"MAURITIUS":    "MUR",
	"SEYCHELLES":   "SCR",
	"MADAGASCAR":   "MGA",
	"COMOROS":      "KMF",
	"CAPE VERDE":   "CVE",
	"CABO VERDE":   "CVE",
	"GAMBIA":       "GMD",
	"GUINEA":       "GNF",
	"LIBERIA":      "LRD",
	"SIERRA LEONE": "SLE",
	"MAURITANIA":   "MRU",
	"SAO TOME AND PRINCIPE": "STN",
	"DEMOCRATIC REPUBLIC OF THE CONGO": "CDF",
	"CONGO": "XAF",
	// West African CFA franc zone
	"BENIN":         "XOF",
	"BURKINA FASO":  "XOF",
	"COTE D IVOIRE": "XOF",
	"IVORY COAST":   "XOF",
	"GUINEA BISSAU": "XOF",
	"MALI":          "XOF",
	"NIGER":         "XOF",
	"SENEGAL":       "XOF",
	"TOGO":          "XOF",
	// Central African CFA franc zone
	"CAMEROON":                 "XAF",
	"CENTRAL AFRICAN REPUBLIC": "XAF",
	"CHAD":                     "XAF",
	"EQUATORIAL GUINEA":        "XAF",
	"GABON":                    "XAF",
}

// regionHints drives the substring matcher used when the exact lookup
// misses: the first hint found anywhere in the normalized country wins.
var regionHints = []struct {
	substr string
	cur    models.Currency
}{
	{"UNITED STATES", "USD"},
	{"AMERICA", "USD"},
	{"UNITED KINGDOM", "GBP"},
	{"BRITAIN", "GBP"},
	{"KOREA", "KRW"},
	{"CHINA", "CNY"},
	{"HONG KONG", "HKD"},
	{"RUSSIA", "RUB"},
	{"CONGO", "CDF"},
	{"EMIRATES", "AED"},
	{"CZECH", "CZK"},
	{"NETHERLAND", "EUR"},
	{"GERMAN", "EUR"},
	{"FRANCE", "EUR"},
	{"FRENCH", "EUR"},
	{"IRELAND", "EUR"},
	{"VIRGIN ISLANDS", "USD"},
}
