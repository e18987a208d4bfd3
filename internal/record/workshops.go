package record

import (
	"fmt"
	"sort"
)

// Workshop is one entry of the workshop-type catalog
type Workshop struct {
	Code int    `json:"code"`
	Name string `json:"name"`
}

var workshops = map[int]string{
	0:   "FresqueNouveauxRecits",
	1:   "FresqueOceane",
	2:   "FresqueBiodiversite",
	3:   "FresqueNumerique",
	4:   "FresqueAgriAlim",
	5:   "FresqueAlimentation",
	6:   "FresqueConstruction",
	7:   "FresqueMobilite",
	8:   "FresqueSexisme",
	9:   "OGRE",
	10:  "AtelierInventonsNosViesBasCarbone",
	11:  "FresqueDeLeau",
	12:  "FutursProches",
	13:  "FresqueDiversite",
	14:  "FresqueDuTextile",
	15:  "FresqueDesDechets",
	16:  "PuzzleClimat",
	17:  "FresqueDeLaFinance",
	18:  "FresqueDeLaRSE",
	100: "2tonnes",
	101: "CompteGouttes",
	102: "FresqueDuBénévolat",
	103: "FresqueDuPlastique",
	200: "FresqueClimat",
	300: "FresqueEcoCirculaire",
	500: "FresqueFrontieresPlanetaires",
	501: "HorizonsDecarbones",
	600: "2030Glorieuses",
	700: "FresqueDeLaRénovation",
	701: "FresqueDeLEnergie",
	702: "FresqueDesPossibles",
	703: "FresqueDeLaCommunication",
	704: "Zoofresque",
}

// WorkshopName returns the program name for a workshop code. Unknown codes
// render as "Workshop<code>" so reports never drop a row.
func WorkshopName(code int) string {
	if name, ok := workshops[code]; ok {
		return name
	}
	return fmt.Sprintf("Workshop%d", code)
}

// KnownWorkshop reports whether code is in the catalog
func KnownWorkshop(code int) bool {
	_, ok := workshops[code]
	return ok
}

// Workshops returns the catalog sorted by code
func Workshops() []Workshop {
	out := make([]Workshop, 0, len(workshops))
	for code, name := range workshops {
		out = append(out, Workshop{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
