package whatsapp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const textEnvelope = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "123",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [{
          "id": "wamid.ABC",
          "from": "15551234567",
          "timestamp": "1726000000",
          "type": "text",
          "text": {"body": "SITE:GITA Oil leakage near machine"}
        }]
      }
    }]
  }]
}`

const imageEnvelope = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "123",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [{
          "id": "wamid.IMG",
          "from": "15551234567",
          "timestamp": "1726000000",
          "type": "image",
          "image": {"id": "media-9", "mime_type": "image/jpeg", "caption": "SITE:GITA broken ladder"}
        }]
      }
    }]
  }]
}`

func TestFirstMessage(t *testing.T) {
	t.Run("extracts the text message", func(t *testing.T) {
		var payload WebhookPayload
		require.NoError(t, json.Unmarshal([]byte(textEnvelope), &payload))

		msg := payload.FirstMessage()
		require.NotNil(t, msg)
		assert.Equal(t, "wamid.ABC", msg.ID)
		assert.Equal(t, "15551234567", msg.From)
		assert.Equal(t, "text", msg.Type)
		assert.Equal(t, "SITE:GITA Oil leakage near machine", msg.Body())
		assert.Nil(t, msg.Media())
	})

	t.Run("extracts the image message", func(t *testing.T) {
		var payload WebhookPayload
		require.NoError(t, json.Unmarshal([]byte(imageEnvelope), &payload))

		msg := payload.FirstMessage()
		require.NotNil(t, msg)
		assert.Equal(t, "SITE:GITA broken ladder", msg.Body(), "caption doubles as the body")
		ref := msg.Media()
		require.NotNil(t, ref)
		assert.Equal(t, "media-9", ref.ID)
		assert.Equal(t, "image/jpeg", ref.MimeType)
	})

	t.Run("nil for status-only notifications", func(t *testing.T) {
		var payload WebhookPayload
		require.NoError(t, json.Unmarshal([]byte(`{"object":"whatsapp_business_account","entry":[{"id":"1","changes":[{"field":"messages","value":{"messaging_product":"whatsapp"}}]}]}`), &payload))
		assert.Nil(t, payload.FirstMessage())
	})

	t.Run("nil for an empty envelope", func(t *testing.T) {
		payload := WebhookPayload{}
		assert.Nil(t, payload.FirstMessage())
	})
}
