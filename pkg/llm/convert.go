package llm

import (
	"encoding/base64"
	"fmt"

	"aurelia/pkg/message"
)

// convertMessages turns the running transcript plus system prompts
// into provider-facing turns. Every ProviderMessage role is one of
// "system", "user", "assistant" — the adapters built against this
// package never see a "tool" role, so tool messages are always
// down-converted to a prefixed system turn, rather than only for
// providers that happen to lack a tool role.
func convertMessages(systemPrompts []string, msgs []message.Message, files []message.FileDescriptor) []ProviderMessage {
	out := make([]ProviderMessage, 0, len(systemPrompts)+len(msgs))
	for _, p := range systemPrompts {
		if p == "" {
			continue
		}
		out = append(out, ProviderMessage{Role: "system", Text: p})
	}

	lastHuman := -1
	for i, m := range msgs {
		if m.Kind == message.KindHuman {
			lastHuman = i
		}
	}

	for i, m := range msgs {
		switch m.Kind {
		case message.KindHuman:
			pm := ProviderMessage{Role: "user", Text: m.GetText()}
			if i == lastHuman {
				pm.Images = imagesFromFiles(files)
			}
			out = append(out, pm)
		case message.KindAssistant:
			out = append(out, ProviderMessage{Role: "assistant", Text: m.Text})
		case message.KindSystem:
			out = append(out, ProviderMessage{Role: "system", Text: m.Text})
		case message.KindTool:
			out = append(out, ProviderMessage{
				Role: "system",
				Text: fmt.Sprintf("Tool %q result:\n%s", m.ToolName, m.Text),
			})
		}
	}
	return out
}

func imagesFromFiles(files []message.FileDescriptor) []ImageAttachment {
	var imgs []ImageAttachment
	for _, f := range files {
		if f.Kind != message.FileKindImage || len(f.Bytes) == 0 {
			continue
		}
		imgs = append(imgs, ImageAttachment{MimeType: f.Mime, Data: f.Bytes})
	}
	return imgs
}

// DataURI renders an image attachment as an inline base64 data URI,
// the shape the adapters use for providers that accept images only as
// text-adjacent URIs rather than a structured image part.
func DataURI(img ImageAttachment) string {
	return fmt.Sprintf("data:%s;base64,%s", img.MimeType, base64.StdEncoding.EncodeToString(img.Data))
}
