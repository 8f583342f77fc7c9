package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendMessageRequest_Validate(t *testing.T) {
	req := require.New(t)

	// Text yeterli
	r := &SendMessageRequest{Text: "merhaba"}
	req.NoError(r.Validate())

	// Image yeterli
	r = &SendMessageRequest{Image: "data:image/png;base64,iVBOR"}
	req.NoError(r.Validate())

	// İkisi de boş — hata
	r = &SendMessageRequest{}
	req.Error(r.Validate())

	// Sadece whitespace text boş sayılır
	r = &SendMessageRequest{Text: "   \t  "}
	req.Error(r.Validate())
	req.Empty(r.Text, "validate text'i trim etmeli")

	// Uzunluk sınırı
	r = &SendMessageRequest{Text: strings.Repeat("a", MaxMessageTextLen)}
	req.NoError(r.Validate())
	r = &SendMessageRequest{Text: strings.Repeat("a", MaxMessageTextLen+1)}
	req.Error(r.Validate())
}

func TestMessage_JSONShape(t *testing.T) {
	req := require.New(t)

	text := "selam"
	msg := Message{
		ID:         "m1",
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       &text,
	}

	data, err := json.Marshal(msg)
	req.NoError(err)

	raw := string(data)
	req.Contains(raw, `"_id":"m1"`)
	req.Contains(raw, `"senderId":"alice"`)
	req.Contains(raw, `"receiverId":"bob"`)
	req.Contains(raw, `"text":"selam"`)
	// ImageURL nil — field hiç görünmemeli
	req.NotContains(raw, `"image"`)
}
