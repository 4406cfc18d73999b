package services

import (
	"chat-desk/domain"
	"chat-desk/errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifier_Classify(t *testing.T) {
	classifier := NewClassifier(1000)

	tests := []struct {
		name     string
		sender   domain.Role
		draft    Draft
		wantType domain.MessageType
		wantErr  error
	}{
		{
			name:     "should infer text from plain content",
			sender:   domain.RoleParticipant,
			draft:    Draft{Content: "hello there"},
			wantType: domain.MessageText,
		},
		{
			name:     "should infer emoji when every grapheme is an emoji",
			sender:   domain.RoleParticipant,
			draft:    Draft{Content: "👍🏽 🇫🇷 👨‍👩‍👧"},
			wantType: domain.MessageEmoji,
		},
		{
			name:     "should keep text when emoji are mixed with words",
			sender:   domain.RoleParticipant,
			draft:    Draft{Content: "nice 👍"},
			wantType: domain.MessageText,
		},
		{
			name:     "should infer image from an image mime type",
			sender:   domain.RoleParticipant,
			draft:    Draft{Metadata: map[string]any{"mimeType": "image/png", "url": "https://cdn/x.png"}},
			wantType: domain.MessageImage,
		},
		{
			name:     "should infer file from other file metadata",
			sender:   domain.RoleAdmin,
			draft:    Draft{Metadata: map[string]any{"fileName": "invoice.pdf", "url": "https://cdn/invoice.pdf"}},
			wantType: domain.MessageFile,
		},
		{
			name:     "should let an explicit type win over inference",
			sender:   domain.RoleAdmin,
			draft:    Draft{Content: "😀", Type: "text"},
			wantType: domain.MessageText,
		},
		{
			name:    "should reject a disallowed image type",
			sender:  domain.RoleParticipant,
			draft:   Draft{Metadata: map[string]any{"mimeType": "image/tiff"}},
			wantErr: errors.ErrUnsupportedMediaType,
		},
		{
			name:    "should reject an explicit image without mime type",
			sender:  domain.RoleParticipant,
			draft:   Draft{Type: "IMAGE", Metadata: map[string]any{"url": "https://cdn/x"}},
			wantErr: errors.ErrUnsupportedMediaType,
		},
		{
			name:    "should reject a file without location",
			sender:  domain.RoleParticipant,
			draft:   Draft{Type: "FILE"},
			wantErr: errors.ErrMalformedPayload,
		},
		{
			name:    "should reject empty text",
			sender:  domain.RoleParticipant,
			draft:   Draft{Content: "   "},
			wantErr: errors.ErrContentEmpty,
		},
		{
			name:    "should reject 1001 characters",
			sender:  domain.RoleParticipant,
			draft:   Draft{Content: strings.Repeat("a", 1001)},
			wantErr: errors.ErrContentTooLong,
		},
		{
			name:    "should reject an unknown declared type",
			sender:  domain.RoleAdmin,
			draft:   Draft{Content: "hi", Type: "VIDEO"},
			wantErr: errors.ErrInvalidMessageType,
		},
		{
			name:    "should forbid system messages from participants",
			sender:  domain.RoleParticipant,
			draft:   Draft{Content: "hi", Type: "SYSTEM"},
			wantErr: errors.ErrForbidden,
		},
		{
			name:     "should accept system messages from admins",
			sender:   domain.RoleAdmin,
			draft:    Draft{Content: "chat closed", Type: "SYSTEM"},
			wantType: domain.MessageSystem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			msgType, _, err := classifier.Classify(tt.sender, tt.draft)
			if tt.wantErr != nil {
				req.ErrorIs(err, tt.wantErr)
				return
			}
			req.NoError(err)
			req.Equal(tt.wantType, msgType)
		})
	}
}

func TestClassifier_Accepts_Exactly_Max_Length(t *testing.T) {
	req := require.New(t)
	_, _, err := NewClassifier(1000).Classify(domain.RoleAdmin, Draft{Content: strings.Repeat("é", 1000)})
	req.NoError(err)
}

func TestClassifier_Normalizes_Image_Metadata(t *testing.T) {
	req := require.New(t)
	draft := Draft{Metadata: map[string]any{"mime": "image/JPG; q=1", "url": "https://cdn/a.jpg"}}

	msgType, metadata, err := NewClassifier(1000).Classify(domain.RoleParticipant, draft)

	req.NoError(err)
	req.Equal(domain.MessageImage, msgType)
	req.Equal("image/jpeg", metadata["mimeType"])
	req.NotContains(metadata, "mime")
	// The caller's map is left untouched
	req.Equal("image/JPG; q=1", draft.Metadata["mime"])
}

func TestClassifier_Language_Hint(t *testing.T) {
	classifier := NewClassifier(1000)

	t.Run("should tag long enough text with its language", func(t *testing.T) {
		// Given
		draft := Draft{Content: "Bonjour, je voudrais savoir quand ma commande sera livrée chez moi, merci beaucoup pour votre aide"}

		// When
		msgType, metadata, err := classifier.Classify(domain.RoleParticipant, draft)

		// Then
		require.NoError(t, err)
		require.Equal(t, domain.MessageText, msgType)
		require.Equal(t, "fr", metadata[MetaLanguage])
	})

	t.Run("should leave short text untagged", func(t *testing.T) {
		_, metadata, err := classifier.Classify(domain.RoleParticipant, Draft{Content: "hello there"})
		require.NoError(t, err)
		require.NotContains(t, metadata, MetaLanguage)
	})

	t.Run("should keep a language given by the sender", func(t *testing.T) {
		draft := Draft{
			Content:  "The package was delivered to the wrong address yesterday evening",
			Metadata: map[string]any{MetaLanguage: "de"},
		}
		_, metadata, err := classifier.Classify(domain.RoleAdmin, draft)
		require.NoError(t, err)
		require.Equal(t, "de", metadata[MetaLanguage])
	})

	t.Run("should not tag emoji or files", func(t *testing.T) {
		_, metadata, err := classifier.Classify(domain.RoleParticipant, Draft{Content: "👍🏽 🇫🇷 👨‍👩‍👧 👍🏽 🇫🇷 👨‍👩‍👧 👍🏽 🇫🇷 👨‍👩‍👧"})
		require.NoError(t, err)
		require.NotContains(t, metadata, MetaLanguage)

		_, metadata, err = classifier.Classify(domain.RoleParticipant, Draft{
			Content:  "Here is the signed contract for the new warehouse lease",
			Metadata: map[string]any{"fileName": "lease.pdf"},
		})
		require.NoError(t, err)
		require.NotContains(t, metadata, MetaLanguage)
	})
}

func TestDetectLanguage(t *testing.T) {
	code, ok := DetectLanguage("Ceci est une phrase écrite en français pour tester la détection de la langue")
	require.True(t, ok)
	require.Equal(t, "fr", code)

	_, ok = DetectLanguage("ok")
	require.False(t, ok)
}

func TestIsEmojiOnly(t *testing.T) {
	req := require.New(t)
	req.True(IsEmojiOnly("1️⃣"))
	req.True(IsEmojiOnly("❤️"))
	req.False(IsEmojiOnly(""))
	req.False(IsEmojiOnly("   "))
	req.False(IsEmojiOnly("123"))
}
