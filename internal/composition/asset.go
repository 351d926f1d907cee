package composition

import (
	"io"

	"github.com/go-playground/validator/v10"
)

// AssetKind identifies which upload an Asset came from.
type AssetKind string

const (
	// AssetAudio is the soundtrack upload (form field "audio_file").
	AssetAudio AssetKind = "audio"
	// AssetImage is the still-frame upload (form field "image_file").
	AssetImage AssetKind = "image"
)

// Validation messages returned to clients verbatim.
const (
	MsgInvalidAudio = "Invalid audio file format. Only MP3 is allowed."
	MsgInvalidImage = "Invalid image file format. Allowed formats: JPG, JPEG, PNG, GIF, WEBP."
)

// Content-type rules. Audio is exactly audio/mpeg; other audio/* types are rejected.
const (
	audioRule = "eq=audio/mpeg"
	imageRule = "oneof=image/jpeg image/jpg image/png image/gif image/webp"
)

// Staging suffixes. The image suffix is fixed whatever the real subtype;
// the compositor detects the format from content.
const (
	audioSuffix = ".mp3"
	imageSuffix = ".jpg"
)

// Asset is one received upload.
type Asset struct {
	Kind        AssetKind
	Filename    string
	ContentType string
	Size        int64
	// Data is read once, during staging. The caller owns closing it.
	Data io.Reader
}

// validate is safe for concurrent use and caches rule parsing.
var validate = validator.New()

// ValidateAudio accepts only a declared content type of exactly audio/mpeg.
func ValidateAudio(contentType string) error {
	if err := validate.Var(contentType, audioRule); err != nil {
		return &ValidationError{Kind: AssetAudio, ContentType: contentType, Message: MsgInvalidAudio}
	}
	return nil
}

// ValidateImage accepts JPEG, PNG, GIF and WEBP declared content types.
func ValidateImage(contentType string) error {
	if err := validate.Var(contentType, imageRule); err != nil {
		return &ValidationError{Kind: AssetImage, ContentType: contentType, Message: MsgInvalidImage}
	}
	return nil
}
