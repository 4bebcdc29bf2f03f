package models

// Pokemon is the display entry sent to clients.
type Pokemon struct {
	ID       int    `json:"identificador"`
	Name     string `json:"nombre"`
	ImageURL string `json:"imagenUrl"`
}
