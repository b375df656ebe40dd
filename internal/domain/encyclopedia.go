package domain

// EncyclopediaSummary is the lead section of an encyclopedia article
type EncyclopediaSummary struct {
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Extract      string       `json:"extract"`
	ThumbnailURL string       `json:"thumbnailUrl"`
	PageURL      string       `json:"pageUrl"`
	Coordinates  *Coordinates `json:"coordinates,omitempty"`
}
