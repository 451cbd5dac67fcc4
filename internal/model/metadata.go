package model

// GeneratedMetadata is the triple the generation job returns for one record.
type GeneratedMetadata struct {
	StoryTitle      string `json:"storytitle"`
	MetaDescription string `json:"metadescription"`
	MetaKeywords    string `json:"metakeywords"`
}
