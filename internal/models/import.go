package models

// ImportRowError reports one CSV row that was not stored. Row counts the
// header as row 1.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult is the outcome of a bulk CSV import. Valid rows are stored even
// when others are rejected.
type ImportResult struct {
	Imported     int              `json:"imported"`
	Transactions []Transaction    `json:"transactions"`
	Errors       []ImportRowError `json:"errors"`
}
