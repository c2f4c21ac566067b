package domain

// Analysis es el reporte textual derivado de unos Scores. Nunca se persiste.
type Analysis struct {
	General         string `json:"general"`
	Strengths       string `json:"strengths"`
	Weaknesses      string `json:"weaknesses"`
	Recommendations string `json:"recommendations"`
}
