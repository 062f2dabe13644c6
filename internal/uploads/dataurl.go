package uploads

import "regexp"

var dataURLRe = regexp.MustCompile(`^data:image/(png|jpe?g|webp);base64,(.+)$`)

func validDataURL(payload string) bool {
	return dataURLRe.MatchString(payload)
}

// parseDataURL splits an inline image payload into its declared subtype and the
// raw base64 body. ok is false when the payload is not an inline image.
func parseDataURL(payload string) (subtype, b64 string, ok bool) {
	m := dataURLRe.FindStringSubmatch(payload)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// fileExt maps a data URL subtype to the on-disk extension. jpeg and jpg both
// collapse to jpg, as does anything else that slipped through the pattern.
func fileExt(subtype string) string {
	switch subtype {
	case "png":
		return "png"
	case "webp":
		return "webp"
	default:
		return "jpg"
	}
}
