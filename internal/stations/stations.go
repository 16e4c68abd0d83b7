package stations

import (
	"sort"
	"strings"
)

// searchLimit — максимум результатов одного поиска.
const searchLimit = 20

// Station — станция справочника.
type Station struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Search ищет станции по коду или названию.
//
// Пустой запрос возвращает nil. Совпадения по префиксу кода идут
// первыми, внутри групп — по алфавиту названия.
func Search(query string) []Station {
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var byCode, byName []Station
	for _, s := range dataset {
		switch {
		case strings.HasPrefix(s.Code, query):
			byCode = append(byCode, s)
		case strings.HasPrefix(s.Name, query) || strings.Contains(s.Name, query):
			byName = append(byName, s)
		}
	}

	sort.Slice(byCode, func(i, j int) bool { return byCode[i].Name < byCode[j].Name })
	sort.Slice(byName, func(i, j int) bool { return byName[i].Name < byName[j].Name })

	out := append(byCode, byName...)
	if len(out) > searchLimit {
		out = out[:searchLimit]
	}
	return out
}

// ByCode возвращает станцию по точному коду. Второй результат false,
// когда код неизвестен.
func ByCode(code string) (Station, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, s := range dataset {
		if s.Code == code {
			return s, true
		}
	}
	return Station{}, false
}

// All возвращает копию всего справочника.
func All() []Station {
	out := make([]Station, len(dataset))
	copy(out, dataset)
	return out
}

// dataset — основные станции сети. Код уникален в пределах набора.
var dataset = []Station{
	{"NDLS", "NEW DELHI"},
	{"NZM", "H NIZAMUDDIN"},
	{"ANVT", "ANAND VIHAR TERMINAL"},
	{"DEE", "DELHI S ROHILLA"},
	{"DLI", "OLD DELHI"},
	{"BSB", "VARANASI JN"},
	{"ST", "SURAT"},
	{"MMCT", "MUMBAI CENTRAL"},
	{"CSTM", "CSMT MUMBAI"},
	{"BCT", "MUMBAI BANDRA TERMINUS"},
	{"BDTS", "BANDRA TERMINUS"},
	{"BVI", "BORIVALI"},
	{"PNBE", "PATNA JN"},
	{"HWH", "HOWRAH JN"},
	{"KGP", "KHARAGPUR JN"},
	{"MAS", "CHENNAI CENTRAL"},
	{"CNO", "CHENNAI EGMORE"},
	{"SBC", "BANGALORE CITY JN"},
	{"YPR", "YESVANTPUR JN"},
	{"BNC", "BANGALORE CANT"},
	{"KJM", "KRISHNARAJAPURAM"},
	{"YNK", "YELAHANKA JN"},
	{"MYS", "MYSORE JN"},
	{"ADI", "AHMEDABAD JN"},
	{"JP", "JAIPUR"},
	{"LKO", "LUCKNOW NR"},
	{"ALD", "ALLAHABAD JN"},
	{"CNB", "KANPUR CENTRAL"},
	{"PUNE", "PUNE JN"},
	{"HYB", "HYDERABAD DECAN"},
	{"SC", "SECUNDERABAD JN"},
	{"BZA", "VIJAYAWADA JN"},
	{"VSKP", "VISAKHAPATNAM"},
	{"BBS", "BHUBANESWAR"},
	{"CTC", "CUTTACK"},
	{"RNC", "RANCHI"},
	{"JHS", "JHANSI JN"},
	{"GWL", "GWALIOR JN"},
	{"AGC", "AGRA CANTT"},
	{"MTJ", "MATHURA JN"},
	{"JAT", "JAMMU TAWI"},
	{"UHP", "UDHAMPUR"},
	{"JRC", "JALANDHAR CITY"},
	{"ASR", "AMRITSAR JN"},
	{"LDH", "LUDHIANA JN"},
	{"CDG", "CHANDIGARH"},
	{"UMB", "AMBALA CANT JN"},
	{"KOTA", "KOTA JN"},
	{"RTM", "RATLAM JN"},
	{"INDB", "INDORE JN BG"},
	{"UJN", "UJJAIN JN"},
	{"BPL", "BHOPAL JN"},
	{"JBP", "JABALPUR"},
	{"NGP", "NAGPUR"},
	{"WR", "WARDHA JN"},
	{"AK", "AKOLA JN"},
	{"BSL", "BHUSAVAL JN"},
	{"NK", "NASIK ROAD"},
	{"MMR", "MANMAD JN"},
	{"JN", "JALGAON JN"},
	{"KOP", "KOLHAPUR"},
	{"MRJ", "MIRAJ JN"},
	{"SUR", "SOLAPUR JN"},
	{"GTL", "GUNTAKAL JN"},
	{"TVC", "TRIVANDRUM CNTL"},
	{"KCVL", "KOCHUVELI"},
	{"ERS", "ERNAKULAM JN"},
	{"CLT", "KOZHIKODE"},
	{"CAN", "KANNUR"},
	{"MAQ", "MANGALORE CNTL"},
	{"MAO", "MADGAON"},
	{"VSG", "VASCO DA GAMA"},
	{"TCR", "THRISUR"},
	{"SRR", "SHORANUR JN"},
	{"QLN", "QUILON JN"},
	{"ALLP", "ALLEPPEY"},
	{"KTYM", "KOTTAYAM"},
	{"TBM", "TAMBARAM"},
	{"CGL", "CHENGALPATTU"},
	{"VM", "VILLUPURAM JN"},
	{"PDY", "PUDUCHERRY"},
	{"TPJ", "TIRUCHIRAPALLI"},
	{"MDU", "MADURAI JN"},
	{"DG", "DINDIGUL JN"},
	{"CAPE", "KANYAKUMARI"},
	{"NCJ", "NAGERCOIL JN"},
	{"TEN", "TIRUNELVELI"},
	{"VPT", "VIRUDUNAGAR JN"},
	{"SRT", "SALEM JN"},
	{"ED", "ERODE JN"},
	{"CBE", "COIMBATORE JN"},
	{"PGT", "PALAKKAD"},
}
