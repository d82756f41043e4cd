package models

// Species values accepted by report and pet listings, matching the
// options the app presents.
var Species = []string{
	"Cachorro",
	"Gato",
	"Ave/Pássaro",
	"Equino",
	"Bovino",
	"Suíno",
	"Caprino",
}

func IsValidSpecies(s string) bool {
	for _, v := range Species {
		if v == s {
			return true
		}
	}
	return false
}
