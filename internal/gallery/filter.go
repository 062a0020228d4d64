package gallery

import (
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/templui/imagehost/internal/model"
)

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// Filter returns the images whose filename or description contains term,
// ignoring case. A blank term returns images itself. The result shares the
// record pointers of images.
func Filter(images []*model.Image, term string) []*model.Image {
	if strings.TrimSpace(term) == "" {
		return images
	}

	needle := lower(term)
	return lo.Filter(images, func(image *model.Image, _ int) bool {
		return matches(image, needle)
	})
}

// Matches reports whether image matches a search term
func Matches(image *model.Image, term string) bool {
	if strings.TrimSpace(term) == "" {
		return true
	}
	return matches(image, lower(term))
}

func matches(image *model.Image, needle string) bool {
	if strings.Contains(lower(image.OriginalFilename), needle) {
		return true
	}
	return image.HasDescription() && strings.Contains(lower(image.Description), needle)
}
