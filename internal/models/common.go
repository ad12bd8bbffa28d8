package models

// Address is a structured object holding a user's pickup/delivery address.
type Address struct {
	FullText  string  `bson:"fullText" json:"fullText"`
	City      string  `bson:"city,omitempty" json:"city,omitempty"`
	Pincode   string  `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Latitude  float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// MediaPointer represents a media file stored on S3 or a similar service.
type MediaPointer struct {
	ID       string `bson:"id" json:"id"`
	URL      string `bson:"url" json:"url"`
	FileName string `bson:"fileName" json:"fileName"`
	FileType string `bson:"fileType" json:"fileType"` // e.g. "image/png", "image/jpeg"
}
