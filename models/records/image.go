package records

import (
	"encoding/json"
	"path"
	"time"
)

// Image describes one stored meal image, attributed to a user through
// the object key path and timestamped by upload time. Images are
// immutable once fetched from the object store.
type Image struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size,omitempty"`
}

// ImageFromJSON converts a JSON representation of an Image to
// an Image object.
func ImageFromJSON(jsonData []byte) (*Image, error) {
	img := &Image{}
	err := json.Unmarshal(jsonData, img)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// ToJSON converts an Image to its JSON representation.
func (img *Image) ToJSON() ([]byte, error) {
	return json.Marshal(img)
}

// FileName returns the last path component of the object key,
// e.g. "lunch.jpg" for "meal-images/user-1/lunch.jpg".
func (img *Image) FileName() string {
	return path.Base(img.ObjectKey)
}
