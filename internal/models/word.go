package models

// WordEntry is one vocabulary item: every accepted spelling, primary first
type WordEntry struct {
	Primary   string   `json:"word"`
	Spellings []string `json:"spellings"`
}
