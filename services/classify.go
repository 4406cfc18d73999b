package services

import (
	"chat-desk/domain"
	"chat-desk/domain/mimetypes"
	"chat-desk/errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abadojack/whatlanggo"
	"github.com/rivo/uniseg"
	"github.com/samber/lo"
)

const (
	MetaMimeType = "mimeType"
	MetaMime     = "mime"
	MetaURL      = "url"
	MetaFileName = "fileName"
	MetaFileSize = "fileSize"
	MetaLanguage = "language"
)

// Shorter texts do not carry enough trigrams for a useful guess.
const minLanguageRunes = 20

// Draft is an unsent message as the caller described it.
type Draft struct {
	Content  string         `json:"content"`
	Type     string         `json:"type,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Classifier resolves the type of a draft and checks it against the rules of
// that type.
type Classifier struct {
	maxContentLength int
}

func NewClassifier(maxContentLength int) Classifier {
	return Classifier{maxContentLength: maxContentLength}
}

// Classify returns the final type and the metadata to store. A declared type
// always wins over inference.
func (c Classifier) Classify(sender domain.Role, draft Draft) (domain.MessageType, map[string]any, error) {
	declared, ok := domain.ParseMessageType(draft.Type)
	if !ok {
		return "", nil, errors.Invalid(errors.ErrInvalidMessageType, "type", draft.Type)
	}
	metadata := lo.Assign(draft.Metadata)
	mime := declaredMime(metadata)

	msgType := declared
	if msgType == "" {
		msgType = infer(draft.Content, metadata, mime)
	}

	switch msgType {
	case domain.MessageText, domain.MessageEmoji:
		if err := c.checkContent(draft.Content, true); err != nil {
			return "", nil, err
		}
		if msgType == domain.MessageText && stringMeta(metadata, MetaLanguage) == "" {
			if lang, ok := DetectLanguage(draft.Content); ok {
				metadata[MetaLanguage] = lang
			}
		}
	case domain.MessageSystem:
		if sender != domain.RoleAdmin {
			return "", nil, errors.ErrForbidden
		}
		if err := c.checkContent(draft.Content, true); err != nil {
			return "", nil, err
		}
	case domain.MessageImage:
		normalized := mimetypes.Normalize(mime)
		if !mimetypes.IsAllowedImage(normalized) {
			return "", nil, errors.Invalid(errors.ErrUnsupportedMediaType, MetaMimeType, mime)
		}
		if err := c.checkContent(draft.Content, false); err != nil {
			return "", nil, err
		}
		metadata[MetaMimeType] = string(normalized)
		delete(metadata, MetaMime)
	case domain.MessageFile:
		if stringMeta(metadata, MetaURL) == "" && stringMeta(metadata, MetaFileName) == "" {
			return "", nil, errors.Invalid(errors.ErrMalformedPayload, "metadata", "url or fileName required")
		}
		if mime != "" {
			normalized := mimetypes.Normalize(mime)
			if !mimetypes.Known(normalized) {
				return "", nil, errors.Invalid(errors.ErrUnsupportedMediaType, MetaMimeType, mime)
			}
			metadata[MetaMimeType] = string(normalized)
			delete(metadata, MetaMime)
		}
		if err := c.checkContent(draft.Content, false); err != nil {
			return "", nil, err
		}
	}

	if len(metadata) == 0 {
		metadata = nil
	}
	return msgType, metadata, nil
}

func (c Classifier) checkContent(content string, required bool) error {
	if required && strings.TrimSpace(content) == "" {
		return errors.ErrContentEmpty
	}
	if utf8.RuneCountInString(content) > c.maxContentLength {
		return errors.ErrContentTooLong
	}
	return nil
}

func infer(content string, metadata map[string]any, mime string) domain.MessageType {
	switch {
	case mime != "" && mimetypes.IsImage(mimetypes.Normalize(mime)):
		return domain.MessageImage
	case mime != "", stringMeta(metadata, MetaURL) != "", stringMeta(metadata, MetaFileName) != "":
		return domain.MessageFile
	case IsEmojiOnly(content):
		return domain.MessageEmoji
	default:
		return domain.MessageText
	}
}

func declaredMime(metadata map[string]any) string {
	if m := stringMeta(metadata, MetaMimeType); m != "" {
		return m
	}
	return stringMeta(metadata, MetaMime)
}

func stringMeta(metadata map[string]any, key string) string {
	s, _ := metadata[key].(string)
	return strings.TrimSpace(s)
}

// DetectLanguage returns the ISO 639-1 code of the language s is written in.
// It gives up on short texts and on languages without a two letter code.
func DetectLanguage(s string) (string, bool) {
	if utf8.RuneCountInString(strings.TrimSpace(s)) < minLanguageRunes {
		return "", false
	}
	code := whatlanggo.Detect(s).Lang.Iso6391()
	return code, code != ""
}

// IsEmojiOnly reports whether every non blank grapheme of s is an emoji.
// Sequences joined with ZWJ, skin tones, flags and keycaps count as one.
func IsEmojiOnly(s string) bool {
	seen := false
	graphemes := uniseg.NewGraphemes(s)
	for graphemes.Next() {
		runes := graphemes.Runes()
		if lo.EveryBy(runes, unicode.IsSpace) {
			continue
		}
		if !isEmojiCluster(runes) {
			return false
		}
		seen = true
	}
	return seen
}

func isEmojiCluster(runes []rune) bool {
	if lo.Contains(runes, keycap) {
		return true
	}
	first := runes[0]
	if isPictographic(first) {
		return true
	}
	// Text presentation symbols become emoji with a variation selector
	return unicode.Is(unicode.So, first) && lo.Contains(runes, variationSelector16)
}

const (
	keycap              = '\u20E3'
	variationSelector16 = '\uFE0F'
)

var pictographic = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x203C, Hi: 0x203C, Stride: 1},
		{Lo: 0x2049, Hi: 0x2049, Stride: 1},
		{Lo: 0x231A, Hi: 0x231B, Stride: 1},
		{Lo: 0x23E9, Hi: 0x23F3, Stride: 1},
		{Lo: 0x23F8, Hi: 0x23FA, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2B05, Hi: 0x2B07, Stride: 1},
		{Lo: 0x2B1B, Hi: 0x2B1C, Stride: 1},
		{Lo: 0x2B50, Hi: 0x2B55, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1},
	},
}

func isPictographic(r rune) bool {
	return unicode.Is(pictographic, r)
}
